package providers

import (
	"context"

	"github.com/bizfinder/discovery/pkg/geo"
)

// GeolocationProvider defines the interface for geocoding services
type GeolocationProvider interface {
	// Lookup resolves a free-text address to candidate coordinates, best match first.
	// An empty slice with a nil error means the address was not found.
	Lookup(ctx context.Context, address string) ([]geo.Coordinates, error)
}
