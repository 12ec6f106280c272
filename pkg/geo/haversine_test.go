package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_IdenticalPointsIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {6.5244, 3.3792}, {-33.8688, 151.2093}, {89.9, -179.9}}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceKm(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceKm_QuarterGreatCircle(t *testing.T) {
	expected := EarthRadiusKm * math.Pi / 2
	assert.InDelta(t, expected, DistanceKm(0, 0, 0, 90), 1e-6)
	assert.InDelta(t, 10007.5, DistanceKm(0, 0, 0, 90), 0.1)
}

func TestDistanceKm_Antipodal(t *testing.T) {
	assert.InDelta(t, 20015.0, DistanceKm(0, 0, 0, 180), 1.0)
	assert.InDelta(t, 20015.0, DistanceKm(90, 0, -90, 0), 1.0)
}

func TestDistanceKm_IsSymmetric(t *testing.T) {
	lagos := Coordinates{Latitude: 6.5244, Longitude: 3.3792}
	abuja := Coordinates{Latitude: 9.0765, Longitude: 7.3986}

	assert.InDelta(t, lagos.DistanceTo(abuja), abuja.DistanceTo(lagos), 1e-9)
	assert.InDelta(t, 525, lagos.DistanceTo(abuja), 10)
}

func TestParseCoordinates(t *testing.T) {
	coords, err := ParseCoordinates(`{"latitude": 6.5, "longitude": 3.4}`)
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Latitude: 6.5, Longitude: 3.4}, coords)

	roundTrip, err := ParseCoordinates(coords.String())
	require.NoError(t, err)
	assert.Equal(t, coords, roundTrip)

	invalid := []string{
		"",
		"   ",
		"not-json",
		`{"latitude": 6.5}`,
		`{"longitude": 3.4}`,
		`{"latitude": 95, "longitude": 3.4}`,
		`{"latitude": 6.5, "longitude": -181}`,
		`[6.5, 3.4]`,
	}
	for _, raw := range invalid {
		_, err := ParseCoordinates(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
