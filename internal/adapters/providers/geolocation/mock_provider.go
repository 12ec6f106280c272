package geolocation

import (
	"context"
	"strings"

	"github.com/bizfinder/discovery/pkg/geo"
)

// MockGeolocationProvider resolves a handful of known city names offline.
// Unknown addresses yield no results.
type MockGeolocationProvider struct {
	cities map[string]geo.Coordinates
}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() *MockGeolocationProvider {
	return &MockGeolocationProvider{
		cities: map[string]geo.Coordinates{
			"lagos":         {Latitude: 6.5244, Longitude: 3.3792},
			"abuja":         {Latitude: 9.0765, Longitude: 7.3986},
			"port harcourt": {Latitude: 4.8156, Longitude: 7.0498},
			"new york":      {Latitude: 40.7128, Longitude: -74.0060},
			"london":        {Latitude: 51.5074, Longitude: -0.1278},
			"nairobi":       {Latitude: -1.2921, Longitude: 36.8219},
		},
	}
}

// Lookup returns the coordinates of the first known city mentioned in address
func (m *MockGeolocationProvider) Lookup(ctx context.Context, address string) ([]geo.Coordinates, error) {
	lower := strings.ToLower(address)
	for city, coords := range m.cities {
		if strings.Contains(lower, city) {
			return []geo.Coordinates{coords}, nil
		}
	}
	return nil, nil
}
