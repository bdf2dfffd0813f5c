package store

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/openurban/quarterhour/internal/zone"
)

// FileStore reads the zone collection from a GeoJSON FeatureCollection on
// disk, the format the upstream pipeline produces (final_result.geojson).
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) LoadZones(ctx context.Context) (zone.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMissingDataSource, s.path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrMissingDataSource, s.path, err)
	}

	coll := make(zone.Collection, 0, len(fc.Features))
	for i, f := range fc.Features {
		title, _ := f.Properties["title"].(string)

		geom, err := featureGeometry(f)
		if err != nil {
			return nil, fmt.Errorf("zone %d (%q): %w", i, title, err)
		}

		raw := make(map[zone.Metric]float64)
		for _, m := range append(zone.ScoredMetrics(), zone.MetricGreenery) {
			if v, ok := numericProperty(f.Properties, string(m)); ok {
				raw[m] = v
			}
		}

		coll = append(coll, &zone.Record{
			Title:    title,
			Geometry: geom,
			Raw:      raw,
		})
	}

	if err := coll.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDataSource, err)
	}
	return coll, nil
}

func (s *FileStore) Close() error { return nil }

// featureGeometry returns the feature's polygonal geometry, coercing from a
// well-known-text "geometry" property when the file carries geometry as a
// string column instead of a GeoJSON geometry object.
func featureGeometry(f *geojson.Feature) (orb.Geometry, error) {
	geom := f.Geometry
	if geom == nil {
		raw, ok := f.Properties["geometry"].(string)
		if !ok {
			return nil, ErrMalformedGeometry
		}
		parsed, err := wkt.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		geom = parsed
	}
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geom, nil
	}
	return nil, fmt.Errorf("%w: got %s, want Polygon or MultiPolygon", ErrMalformedGeometry, geom.GeoJSONType())
}

// numericProperty reads a metric column, accepting the numeric types the
// JSON decoder can hand back.
func numericProperty(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
