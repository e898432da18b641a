package geospatial

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// idProperties are checked in order for the neighborhood identifier before
// falling back to the feature id.
var idProperties = []string{"vi_nummer", "id"}

// LoadNeighborhoodsFile reads a GeoJSON FeatureCollection from path.
func LoadNeighborhoodsFile(path string) ([]domain.Neighborhood, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open neighborhoods: %w", err)
	}
	defer f.Close()
	return LoadNeighborhoods(f)
}

// LoadNeighborhoods decodes a GeoJSON FeatureCollection of Polygon and
// MultiPolygon features. Feature order is preserved. Features without an
// identifier or with another geometry type are skipped.
func LoadNeighborhoods(r io.Reader) ([]domain.Neighborhood, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read neighborhoods: %w", err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	out := make([]domain.Neighborhood, 0, len(fc.Features))
	for i, f := range fc.Features {
		id := featureID(f)
		if id == "" {
			slog.Warn("skipping neighborhood without id", "index", i)
			continue
		}
		n := domain.Neighborhood{ID: id}
		if name, ok := f.Properties["name"].(string); ok {
			n.Name = name
		}

		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			n.Rings = polygonRings(g)
		case *geom.MultiPolygon:
			for p := 0; p < g.NumPolygons(); p++ {
				n.MultiRings = append(n.MultiRings, polygonRings(g.Polygon(p)))
			}
		default:
			slog.Warn("skipping neighborhood with unsupported geometry", "id", id, "type", fmt.Sprintf("%T", f.Geometry))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func featureID(f *geojson.Feature) string {
	for _, key := range idProperties {
		switch v := f.Properties[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return f.ID
}

func polygonRings(p *geom.Polygon) []domain.Ring {
	rings := make([]domain.Ring, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		ring := make(domain.Ring, len(coords))
		for j, c := range coords {
			ring[j] = domain.GeoPoint{Lng: c.X(), Lat: c.Y()}
		}
		rings = append(rings, ring)
	}
	return rings
}
