package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/bizfinder/discovery/pkg/errors"
	"github.com/bizfinder/discovery/pkg/geo"
)

// Feature is a closed set of amenity and payment filters
type Feature string

const (
	FeatureOnSiteParking Feature = "on_site_parking"
	FeatureGarageParking Feature = "garage_parking"
	FeatureWifi          Feature = "wifi"
	FeatureBankTransfers Feature = "bank_transfers"
	FeatureCash          Feature = "cash"
)

// ParseFeature accepts a feature name in any case
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FeatureOnSiteParking, FeatureGarageParking, FeatureWifi, FeatureBankTransfers, FeatureCash:
		return f, nil
	}
	return "", apperrors.NewValidationErrorf("unknown feature %q", s)
}

// Sort fields accepted from clients
const (
	SortByCreatedAt   = "createdAt"
	SortByUpdatedAt   = "updatedAt"
	SortByRating      = "rating"
	SortByReviewCount = "reviewCount"
	SortByName        = "name"
	SortByPrice       = "price"
	SortByDistance    = "distance"
)

// DiscoveryCriteria is a business listing request
type DiscoveryCriteria struct {
	Category string
	Query    string
	Location string
	// Price is a numeric ceiling ("25") or a bucket of dollar signs ("$$")
	Price    string
	Features []Feature
	OpenNow  bool

	UserLatitude  *float64
	UserLongitude *float64
	MaxDistanceKm *float64

	SortBy        string
	SortDirection string
	Limit         int
	Offset        int

	// ExactTotal filters the whole matching set before paginating so Total
	// is exact when open-now or distance filters apply.
	ExactTotal bool
}

// HasUserLocation reports whether both user coordinates are set
func (c DiscoveryCriteria) HasUserLocation() bool {
	return c.UserLatitude != nil && c.UserLongitude != nil
}

// HasGeoFilter reports whether distance filtering applies
func (c DiscoveryCriteria) HasGeoFilter() bool {
	return c.HasUserLocation() && c.MaxDistanceKm != nil
}

// SortsByDistance reports whether results are ordered by distance from the user
func (c DiscoveryCriteria) SortsByDistance() bool {
	return c.SortBy == SortByDistance && c.HasUserLocation()
}

// NeedsPostFilter reports whether any filter runs after the storage query
func (c DiscoveryCriteria) NeedsPostFilter() bool {
	return c.OpenNow || c.HasGeoFilter()
}

// Validate checks coordinate ranges and pagination bounds
func (c DiscoveryCriteria) Validate() error {
	if (c.UserLatitude == nil) != (c.UserLongitude == nil) {
		return apperrors.NewValidationError("userLatitude and userLongitude must be given together")
	}
	if c.HasUserLocation() {
		user := geo.Coordinates{Latitude: *c.UserLatitude, Longitude: *c.UserLongitude}
		if err := user.Validate(); err != nil {
			return validationError(err)
		}
	}
	if c.MaxDistanceKm != nil && (math.IsNaN(*c.MaxDistanceKm) || *c.MaxDistanceKm < 0) {
		return apperrors.NewValidationErrorf("maxDistanceKm %v must be a non-negative number", *c.MaxDistanceKm)
	}
	if c.Limit < 0 {
		return apperrors.NewValidationError("limit must not be negative")
	}
	if c.Offset < 0 {
		return apperrors.NewValidationError("offset must not be negative")
	}
	return nil
}

// ParsePriceCeiling reads a price filter or indicator. Plain numbers are taken
// as is; a run of dollar signs counts as its length, so "$$" is 2.
func ParsePriceCeiling(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty price")
	}
	if strings.Trim(trimmed, "$") == "" {
		return float64(len(trimmed)), nil
	}
	n, err := strconv.ParseFloat(strings.TrimPrefix(trimmed, "$"), 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	return n, nil
}

func validationError(err error) error {
	return apperrors.NewValidationError(err.Error())
}
