package geo

import (
	"errors"
	"testing"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	assert.Zero(t, DistanceKm(12.97, 77.59, 12.97, 77.59))
	assert.Zero(t, DistanceKm(0, 0, 0, 0))
	assert.Zero(t, DistanceKm(-90, 180, -90, 180))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1 := DistanceKm(12.97, 77.59, 51.5, -0.12)
	d2 := DistanceKm(51.5, -0.12, 12.97, 77.59)
	assert.Equal(t, d1, d2)
}

func TestDistanceKm_OneDegreeOfLatitude(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	d := DistanceKm(12.0, 77.0, 13.0, 77.0)
	assert.InDelta(t, 111.19, d, 111.19*0.01)
}

func TestDistanceKm_KnownPair(t *testing.T) {
	// ~1.5 km between the two reference points used across the feed tests.
	d := DistanceKm(12.97, 77.59, 12.98, 77.60)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 2.0)
}

func TestParsePoint_Valid(t *testing.T) {
	p, err := ParsePoint(&domain.RawCoordinates{Lat: "12.97", Lng: "77.59"})
	require.NoError(t, err)
	assert.Equal(t, 12.97, p.Lat)
	assert.Equal(t, 77.59, p.Lng)
}

func TestParsePoint_Malformed(t *testing.T) {
	cases := []*domain.RawCoordinates{
		nil,
		{Lat: "abc", Lng: "77.59"},
		{Lat: "12.97", Lng: ""},
		{Lat: "91", Lng: "0"},    // out of range
		{Lat: "0", Lng: "-181"},  // out of range
		{Lat: "NaN", Lng: "0.0"}, // parses but is NaN
	}
	for _, raw := range cases {
		_, err := ParsePoint(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMalformedCoordinates))
	}
}

func TestPointValidate(t *testing.T) {
	assert.NoError(t, Point{Lat: 90, Lng: -180}.Validate())
	assert.Error(t, Point{Lat: 90.1, Lng: 0}.Validate())
	assert.Error(t, Point{Lat: 0, Lng: 180.1}.Validate())
}

func TestPointRaw_RoundTrip(t *testing.T) {
	p := Point{Lat: 12.97, Lng: -77.5}
	back, err := ParsePoint(p.Raw())
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
