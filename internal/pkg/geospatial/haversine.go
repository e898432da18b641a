package geospatial

import (
	"math"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

// RingBounds returns the bounding box of a ring. An empty ring yields the
// zero value.
func RingBounds(ring domain.Ring) domain.Bounds {
	if len(ring) == 0 {
		return domain.Bounds{}
	}
	b := domain.Bounds{MinLat: ring[0].Lat, MaxLat: ring[0].Lat, MinLng: ring[0].Lng, MaxLng: ring[0].Lng}
	for _, p := range ring[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
