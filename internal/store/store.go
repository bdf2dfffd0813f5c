package store

import (
	"context"
	"errors"

	"github.com/openurban/quarterhour/internal/zone"
)

// Store supplies the zone collection. Loading happens once at startup (and
// again on an explicit admin reload); the scoring engine never touches the
// source directly.
type Store interface {
	LoadZones(ctx context.Context) (zone.Collection, error)
	Close() error
}

// ErrMissingDataSource wraps any failure to obtain the zone collection.
// It is fatal: no scores are computed and no map data is served.
var ErrMissingDataSource = errors.New("zone data source unavailable")

// ErrMalformedGeometry marks a zone whose geometry could not be parsed as a
// polygon or multi-polygon, directly or via well-known-text coercion.
var ErrMalformedGeometry = errors.New("malformed zone geometry")
