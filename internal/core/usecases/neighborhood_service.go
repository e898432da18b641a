package usecases

import (
	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/pkg/geospatial"
	"github.com/samirrijal/mietradar/internal/pkg/metrics"
)

// NeighborhoodService resolves coordinates to neighborhoods. The set of
// neighborhoods is fixed at construction.
//
// Resolution is a linear scan in load order; with tens of neighborhoods this
// is fast enough and keeps the "first loaded wins" rule for overlapping
// geometries trivially true.
type NeighborhoodService struct {
	neighborhoods []domain.Neighborhood
	byID          map[string]int
}

// NewNeighborhoodService creates a NeighborhoodService over ns. The slice is
// copied; later changes by the caller are not observed.
func NewNeighborhoodService(ns []domain.Neighborhood) *NeighborhoodService {
	s := &NeighborhoodService{
		neighborhoods: append([]domain.Neighborhood(nil), ns...),
		byID:          make(map[string]int, len(ns)),
	}
	for i, n := range s.neighborhoods {
		if _, dup := s.byID[n.ID]; !dup {
			s.byID[n.ID] = i
		}
	}
	return s
}

// Resolve returns the id of the first neighborhood (in load order) with a ring
// containing the point. ok is false when no neighborhood matches.
func (s *NeighborhoodService) Resolve(lng, lat float64) (id string, ok bool) {
	pt := domain.GeoPoint{Lat: lat, Lng: lng}
	for i := range s.neighborhoods {
		n := &s.neighborhoods[i]
		if n.IsMulti() {
			for _, polygon := range n.MultiRings {
				if anyRingContains(pt, polygon) {
					return n.ID, true
				}
			}
			continue
		}
		if anyRingContains(pt, n.Rings) {
			return n.ID, true
		}
	}
	metrics.ResolveMisses.Inc()
	return "", false
}

func anyRingContains(pt domain.GeoPoint, rings []domain.Ring) bool {
	for _, ring := range rings {
		if geospatial.ContainsPoint(pt, ring) {
			return true
		}
	}
	return false
}

// Center returns the vertex mean of the neighborhood's first ring. For
// multi-polygons only the first ring of the first polygon is used.
func (s *NeighborhoodService) Center(id string) (domain.GeoPoint, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.GeoPoint{}, false
	}
	return geospatial.RingCentroid(s.neighborhoods[i].FirstRing())
}

// Get returns the neighborhood with the given id.
func (s *NeighborhoodService) Get(id string) (*domain.Neighborhood, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	n := s.neighborhoods[i]
	return &n, true
}

// Exists reports whether id is a known neighborhood.
func (s *NeighborhoodService) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// List returns all neighborhoods with their centers, in load order.
func (s *NeighborhoodService) List() []domain.NeighborhoodSummary {
	out := make([]domain.NeighborhoodSummary, 0, len(s.neighborhoods))
	for _, n := range s.neighborhoods {
		sum := domain.NeighborhoodSummary{ID: n.ID, Name: n.Name}
		if c, ok := geospatial.RingCentroid(n.FirstRing()); ok {
			sum.Center = &c
		}
		sum.Bounds = neighborhoodBounds(&n)
		out = append(out, sum)
	}
	return out
}

// neighborhoodBounds covers the outer ring of every polygon, or nil when the
// neighborhood has no vertices.
func neighborhoodBounds(n *domain.Neighborhood) *domain.Bounds {
	polygons := n.MultiRings
	if !n.IsMulti() {
		polygons = [][]domain.Ring{n.Rings}
	}
	var out *domain.Bounds
	for _, rings := range polygons {
		if len(rings) == 0 || len(rings[0]) == 0 {
			continue
		}
		b := geospatial.RingBounds(rings[0])
		if out != nil {
			b = out.Extend(b)
		}
		out = &b
	}
	return out
}

// Len returns the number of loaded neighborhoods.
func (s *NeighborhoodService) Len() int {
	return len(s.neighborhoods)
}

// DistanceToCenter returns the great-circle distance in meters from pt to the
// center of neighborhood id.
func (s *NeighborhoodService) DistanceToCenter(id string, pt domain.GeoPoint) (float64, bool) {
	c, ok := s.Center(id)
	if !ok {
		return 0, false
	}
	return geospatial.Haversine(pt, c), true
}
