package entities

import (
	"strings"
	"time"

	"github.com/bizfinder/discovery/pkg/geo"
)

// BusinessStatus is the lifecycle status of a listing
type BusinessStatus string

const (
	BusinessStatusActive   BusinessStatus = "active"
	BusinessStatusDisabled BusinessStatus = "disabled"
)

// Valid reports whether s is a known status
func (s BusinessStatus) Valid() bool {
	return s == BusinessStatusActive || s == BusinessStatusDisabled
}

// PaymentOption is an accepted payment method
type PaymentOption string

const (
	PaymentOptionCash         PaymentOption = "cash"
	PaymentOptionBankTransfer PaymentOption = "bank_transfer"
)

// Valid reports whether p is a known payment option
func (p PaymentOption) Valid() bool {
	return p == PaymentOptionCash || p == PaymentOptionBankTransfer
}

// Business represents a listing in the directory
type Business struct {
	ID             string          `json:"id" db:"id"`
	OwnerID        string          `json:"owner_id" db:"owner_id"`
	Name           string          `json:"name" db:"name"`
	About          string          `json:"about" db:"about"`
	Categories     []string        `json:"categories" db:"categories"`
	Services       []string        `json:"services" db:"services"`
	Address        Address         `json:"address" db:"-"`
	Phone          string          `json:"phone,omitempty" db:"phone"`
	PaymentOptions []PaymentOption `json:"payment_options" db:"payment_options"`
	PriceIndicator string          `json:"price_indicator,omitempty" db:"price_indicator"`
	MaxPrice       *float64        `json:"max_price,omitempty" db:"max_price"`
	OnSiteParking  bool            `json:"on_site_parking" db:"on_site_parking"`
	GarageParking  bool            `json:"garage_parking" db:"garage_parking"`
	Wifi           bool            `json:"wifi" db:"wifi"`
	Status         BusinessStatus  `json:"status" db:"status"`
	// Coordinates holds the serialized {"latitude":..,"longitude":..} pair.
	// Nil when geocoding failed or was never attempted.
	Coordinates *string   `json:"coordinates,omitempty" db:"coordinates"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	Version     int64     `json:"version" db:"version"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Address represents a postal address
type Address struct {
	Line1      string `json:"line1" db:"address_line1"`
	Line2      string `json:"line2,omitempty" db:"address_line2"`
	City       string `json:"city" db:"city"`
	State      string `json:"state" db:"state"`
	Country    string `json:"country" db:"country"`
	PostalCode string `json:"postal_code" db:"postal_code"`
}

// FullText joins the non-empty address parts into a single lookup string.
func (a Address) FullText() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// Location decodes the stored coordinates. ok is false when they are absent or unparseable.
func (b *Business) Location() (coords geo.Coordinates, ok bool, err error) {
	if b.Coordinates == nil {
		return geo.Coordinates{}, false, nil
	}
	coords, err = geo.ParseCoordinates(*b.Coordinates)
	if err != nil {
		return geo.Coordinates{}, false, err
	}
	return coords, true, nil
}

// SetLocation stores coords in serialized form.
func (b *Business) SetLocation(coords geo.Coordinates) {
	serialized := coords.String()
	b.Coordinates = &serialized
}

// AcceptsPayment reports whether option is in the payment set.
func (b *Business) AcceptsPayment(option PaymentOption) bool {
	for _, p := range b.PaymentOptions {
		if p == option {
			return true
		}
	}
	return false
}

// IsActive reports whether the business can be returned by discovery.
func (b *Business) IsActive() bool {
	return b.Status == BusinessStatusActive
}
