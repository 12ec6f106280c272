package search

import (
	"time"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/pkg/geo"
)

// BusinessDocument flattens a business into a search document. Fields outside
// the collection schema are stored unindexed so hits hydrate a full business.
func BusinessDocument(b *entities.Business) map[string]interface{} {
	doc := map[string]interface{}{
		"id":              b.ID,
		"owner_id":        b.OwnerID,
		"name":            b.Name,
		"about":           b.About,
		"categories":      nonNil(b.Categories),
		"services":        nonNil(b.Services),
		"address":         b.Address.FullText(),
		"address_line1":   b.Address.Line1,
		"address_line2":   b.Address.Line2,
		"city":            b.Address.City,
		"state":           b.Address.State,
		"country":         b.Address.Country,
		"postal_code":     b.Address.PostalCode,
		"phone":           b.Phone,
		"payment_options": paymentStrings(b.PaymentOptions),
		"price_indicator": b.PriceIndicator,
		"on_site_parking": b.OnSiteParking,
		"garage_parking":  b.GarageParking,
		"wifi":            b.Wifi,
		"status":          string(b.Status),
		"rating":          b.Rating,
		"review_count":    b.ReviewCount,
		"version":         b.Version,
		"created_at":      b.CreatedAt.Unix(),
		"updated_at":      b.UpdatedAt.Unix(),
	}
	if b.MaxPrice != nil {
		doc["max_price"] = *b.MaxPrice
	}
	if coords, ok, err := b.Location(); ok && err == nil {
		doc["location"] = []float64{coords.Latitude, coords.Longitude}
	}
	return doc
}

// BusinessFromDocument rebuilds a business from a search hit
func BusinessFromDocument(doc map[string]interface{}) *entities.Business {
	b := &entities.Business{
		ID:             str(doc, "id"),
		OwnerID:        str(doc, "owner_id"),
		Name:           str(doc, "name"),
		About:          str(doc, "about"),
		Categories:     strs(doc, "categories"),
		Services:       strs(doc, "services"),
		Phone:          str(doc, "phone"),
		PriceIndicator: str(doc, "price_indicator"),
		OnSiteParking:  boolean(doc, "on_site_parking"),
		GarageParking:  boolean(doc, "garage_parking"),
		Wifi:           boolean(doc, "wifi"),
		Status:         entities.BusinessStatus(str(doc, "status")),
		Rating:         num(doc, "rating"),
		ReviewCount:    int(num(doc, "review_count")),
		Version:        int64(num(doc, "version")),
		CreatedAt:      time.Unix(int64(num(doc, "created_at")), 0).UTC(),
		UpdatedAt:      time.Unix(int64(num(doc, "updated_at")), 0).UTC(),
		Address: entities.Address{
			Line1:      str(doc, "address_line1"),
			Line2:      str(doc, "address_line2"),
			City:       str(doc, "city"),
			State:      str(doc, "state"),
			Country:    str(doc, "country"),
			PostalCode: str(doc, "postal_code"),
		},
	}

	for _, p := range strs(doc, "payment_options") {
		b.PaymentOptions = append(b.PaymentOptions, entities.PaymentOption(p))
	}
	if v, ok := doc["max_price"].(float64); ok {
		b.MaxPrice = &v
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		lat, latOK := loc[0].(float64)
		lon, lonOK := loc[1].(float64)
		if latOK && lonOK {
			b.SetLocation(geo.Coordinates{Latitude: lat, Longitude: lon})
		}
	}
	return b
}

func paymentStrings(options []entities.PaymentOption) []string {
	out := make([]string, 0, len(options))
	for _, p := range options {
		out = append(out, string(p))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func str(doc map[string]interface{}, key string) string {
	v, _ := doc[key].(string)
	return v
}

func strs(doc map[string]interface{}, key string) []string {
	raw, ok := doc[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func boolean(doc map[string]interface{}, key string) bool {
	v, _ := doc[key].(bool)
	return v
}

func num(doc map[string]interface{}, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
