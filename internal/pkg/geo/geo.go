package geo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/neighbourlink-api/internal/domain"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Point is a validated lat/lng pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies inside the valid coordinate ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90: %w", domain.ErrBadRequest)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("lng must be between -180 and 180: %w", domain.ErrBadRequest)
	}
	return nil
}

// ParsePoint parses legacy string-typed coordinates into a Point.
// Non-numeric or out-of-range values fail with ErrMalformedCoordinates;
// callers iterating a collection skip the record rather than abort.
func ParsePoint(raw *domain.RawCoordinates) (Point, error) {
	if raw == nil {
		return Point{}, fmt.Errorf("coordinates missing: %w", domain.ErrMalformedCoordinates)
	}
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("lat %q: %w", raw.Lat, domain.ErrMalformedCoordinates)
	}
	lng, err := strconv.ParseFloat(raw.Lng, 64)
	if err != nil {
		return Point{}, fmt.Errorf("lng %q: %w", raw.Lng, domain.ErrMalformedCoordinates)
	}
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Point{}, fmt.Errorf("NaN coordinate: %w", domain.ErrMalformedCoordinates)
	}
	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, fmt.Errorf("out of range: %w", domain.ErrMalformedCoordinates)
	}
	return p, nil
}

// Raw converts a Point back to its stored string representation.
func (p Point) Raw() *domain.RawCoordinates {
	return &domain.RawCoordinates{
		Lat: strconv.FormatFloat(p.Lat, 'f', -1, 64),
		Lng: strconv.FormatFloat(p.Lng, 'f', -1, 64),
	}
}

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the Haversine formula.
//
// Precondition: inputs are valid coordinates (lat in [-90,90], lng in
// [-180,180]). Out-of-range input is not clamped; NaN propagates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Distance is DistanceKm over two Points.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
