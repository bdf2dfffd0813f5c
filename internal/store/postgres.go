package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/openurban/quarterhour/internal/zone"
)

// PostgresStore loads the zone collection from a Postgres table populated by
// the upstream pipeline. Geometry is stored as well-known-text.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrMissingDataSource, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrMissingDataSource, err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadZones(ctx context.Context) (zone.Collection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT title, ST_AsText(geometry),
			amenity, bank, food, health, shop, sport, transport, greenery
		FROM zones
		ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("%w: query zones: %v", ErrMissingDataSource, err)
	}
	defer rows.Close()

	var coll zone.Collection
	for rows.Next() {
		var (
			title   string
			geomWKT string
			vals    [8]float64
		)
		if err := rows.Scan(&title, &geomWKT,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7]); err != nil {
			return nil, fmt.Errorf("%w: scan zone: %v", ErrMissingDataSource, err)
		}

		geom, err := wkt.Unmarshal(geomWKT)
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w: %v", title, ErrMalformedGeometry, err)
		}
		switch geom.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("zone %q: %w: got %s", title, ErrMalformedGeometry, geom.GeoJSONType())
		}

		coll = append(coll, &zone.Record{
			Title:    title,
			Geometry: geom,
			Raw: map[zone.Metric]float64{
				zone.MetricAmenity:   vals[0],
				zone.MetricBank:      vals[1],
				zone.MetricFood:      vals[2],
				zone.MetricHealth:    vals[3],
				zone.MetricShop:      vals[4],
				zone.MetricSport:     vals[5],
				zone.MetricTransport: vals[6],
				zone.MetricGreenery:  vals[7],
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate zones: %v", ErrMissingDataSource, err)
	}

	if err := coll.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDataSource, err)
	}
	return coll, nil
}
