package geospatial

import "github.com/samirrijal/mietradar/internal/core/domain"

// ContainsPoint applies the even-odd ray casting rule: a horizontal ray from
// pt towards +inf longitude is intersected with every edge (i, i-1), and the
// point is inside iff the number of crossings is odd. The closing edge is
// implicit.
//
// Points lying exactly on an edge or vertex get whatever the crossing test
// yields for that edge; no boundary rule is applied on top. Rings with fewer
// than three points are not rejected.
func ContainsPoint(pt domain.GeoPoint, ring domain.Ring) bool {
	x, y := pt.Lng, pt.Lat
	inside := false

	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// RingCentroid returns the arithmetic mean of the ring's vertices. It is not
// the area centroid and is only meant for centring a map.
func RingCentroid(ring domain.Ring) (domain.GeoPoint, bool) {
	if len(ring) == 0 {
		return domain.GeoPoint{}, false
	}
	var sumLat, sumLng float64
	for _, p := range ring {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(ring))
	return domain.GeoPoint{Lat: sumLat / n, Lng: sumLng / n}, true
}
