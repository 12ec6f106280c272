// Package geo holds coordinate helpers shared by discovery and storage code.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistanceTo returns the distance in kilometres from c to other.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	return DistanceKm(c.Latitude, c.Longitude, other.Latitude, other.Longitude)
}

// Validate checks the pair is within the WGS84 range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", c.Longitude)
	}
	return nil
}

// String serializes the pair into the stored {"latitude":..,"longitude":..} form.
func (c Coordinates) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParseCoordinates decodes the stored serialized form. Empty input, malformed
// JSON, missing keys and out-of-range values are all errors.
func ParseCoordinates(raw string) (Coordinates, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Coordinates{}, fmt.Errorf("coordinates are empty")
	}

	var payload struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return Coordinates{}, fmt.Errorf("failed to decode coordinates: %w", err)
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		return Coordinates{}, fmt.Errorf("coordinates missing latitude or longitude")
	}

	coords := Coordinates{Latitude: *payload.Latitude, Longitude: *payload.Longitude}
	if err := coords.Validate(); err != nil {
		return Coordinates{}, err
	}
	return coords, nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
