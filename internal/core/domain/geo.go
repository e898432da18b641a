package domain

// GeoPoint represents a geographic coordinate (WGS 84, degrees).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ring is a closed loop of coordinates. The closing edge from the last
// vertex back to the first is implicit.
type Ring []GeoPoint

// Neighborhood is a named administrative area (Stadtviertel). Exactly one of
// Rings or MultiRings is populated.
type Neighborhood struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Rings      []Ring   `json:"rings,omitempty"`
	MultiRings [][]Ring `json:"multi_rings,omitempty"`
}

// IsMulti reports whether the neighborhood is a multi-polygon.
func (n *Neighborhood) IsMulti() bool {
	return len(n.MultiRings) > 0
}

// FirstRing returns the first ring of the first polygon, or nil.
func (n *Neighborhood) FirstRing() Ring {
	if n.IsMulti() {
		if len(n.MultiRings[0]) > 0 {
			return n.MultiRings[0][0]
		}
		return nil
	}
	if len(n.Rings) > 0 {
		return n.Rings[0]
	}
	return nil
}

// NeighborhoodSummary is the list view of a neighborhood.
type NeighborhoodSummary struct {
	ID     string    `json:"id"`
	Name   string    `json:"name,omitempty"`
	Center *GeoPoint `json:"center,omitempty"`
	Bounds *Bounds   `json:"bounds,omitempty"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Extend grows b to cover o.
func (b Bounds) Extend(o Bounds) Bounds {
	return Bounds{
		MinLat: min(b.MinLat, o.MinLat),
		MinLng: min(b.MinLng, o.MinLng),
		MaxLat: max(b.MaxLat, o.MaxLat),
		MaxLng: max(b.MaxLng, o.MaxLng),
	}
}
