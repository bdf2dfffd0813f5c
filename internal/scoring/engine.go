package scoring

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openurban/quarterhour/internal/zone"
)

// extent is one metric's observed min/max across the whole collection.
// Normalization is a collection-wide transform: the denominator is
// max-min over every zone, never per record.
type extent struct {
	min float64
	max float64
}

// RunSummary describes one completed scoring run.
type RunSummary struct {
	RunID      uuid.UUID `json:"run_id"`
	Weights    WeightSet `json:"weights"`
	ZoneCount  int       `json:"zone_count"`
	Degenerate bool      `json:"degenerate_weights"`
	MinScore   float64   `json:"min_score"`
	MaxScore   float64   `json:"max_score"`
	ComputedAt time.Time `json:"computed_at"`
}

// MetricContribution is one metric's share of a zone's score, for the
// explain endpoint.
type MetricContribution struct {
	Metric     zone.Metric `json:"metric"`
	Raw        float64     `json:"raw"`
	Normalized float64     `json:"normalized"`
	Weight     float64     `json:"weight"`
	Weighted   float64     `json:"weighted"`
}

// Engine computes accessibility scores for one fixed zone collection.
// Per-metric extents depend only on raw metrics, so they are computed once
// when the engine is bound to the collection and reused across weight
// changes. Score mutates only the derived fields of the records.
type Engine struct {
	coll    zone.Collection
	extents map[zone.Metric]extent
	logger  *slog.Logger
}

// NewEngine binds an engine to a validated, non-empty collection and
// precomputes the per-metric extents.
func NewEngine(coll zone.Collection, logger *slog.Logger) *Engine {
	e := &Engine{
		coll:    coll,
		extents: make(map[zone.Metric]extent, len(zone.ScoredMetrics())),
		logger:  logger,
	}
	for _, m := range zone.ScoredMetrics() {
		ext := extent{min: coll[0].Raw[m], max: coll[0].Raw[m]}
		for _, r := range coll[1:] {
			v := r.Raw[m]
			if v < ext.min {
				ext.min = v
			}
			if v > ext.max {
				ext.max = v
			}
		}
		e.extents[m] = ext
	}
	return e
}

// Collection returns the bound zone collection.
func (e *Engine) Collection() zone.Collection {
	return e.coll
}

// Score runs one full recomputation with the given weight set and overwrites
// every record's normalized metrics and accessibility score.
//
// The score is 100 times a convex combination of min-max normalized metrics,
// so it lands in [0,100]. Two degenerate cases have defined fallbacks rather
// than errors: a zero weight total sets every score to 0, and a metric whose
// values are tied across the collection normalizes to 0 everywhere (it
// contributes nothing to differentiation).
func (e *Engine) Score(w WeightSet) RunSummary {
	summary := RunSummary{
		RunID:      uuid.New(),
		Weights:    w,
		ZoneCount:  len(e.coll),
		ComputedAt: time.Now().UTC(),
	}

	norm, ok := w.Normalized()
	if !ok {
		summary.Degenerate = true
		for _, r := range e.coll {
			r.Normalized = zeroMetrics()
			r.AccessibilityScore = 0.0
		}
		e.logger.Warn("all scored weights are zero, every zone scores 0",
			"run_id", summary.RunID)
		return summary
	}

	for i, r := range e.coll {
		r.Normalized = make(map[zone.Metric]float64, len(zone.ScoredMetrics()))
		var score float64
		for _, m := range zone.ScoredMetrics() {
			n := e.normalize(m, r.Raw[m])
			r.Normalized[m] = n
			score += n * norm[m]
		}
		r.AccessibilityScore = score * 100
		if i == 0 || r.AccessibilityScore < summary.MinScore {
			summary.MinScore = r.AccessibilityScore
		}
		if i == 0 || r.AccessibilityScore > summary.MaxScore {
			summary.MaxScore = r.AccessibilityScore
		}
	}

	e.logger.Info("scores recomputed",
		"run_id", summary.RunID,
		"zones", summary.ZoneCount,
		"min_score", summary.MinScore,
		"max_score", summary.MaxScore,
	)
	return summary
}

// Explain returns the per-metric contribution breakdown for one zone under
// the given weight set, without mutating any record.
func (e *Engine) Explain(r *zone.Record, w WeightSet) []MetricContribution {
	norm, ok := w.Normalized()
	out := make([]MetricContribution, 0, len(zone.ScoredMetrics()))
	for _, m := range zone.ScoredMetrics() {
		c := MetricContribution{Metric: m, Raw: r.Raw[m]}
		if ok {
			c.Normalized = e.normalize(m, r.Raw[m])
			c.Weight = norm[m]
			c.Weighted = c.Normalized * c.Weight * 100
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) normalize(m zone.Metric, v float64) float64 {
	ext := e.extents[m]
	if ext.max == ext.min {
		return 0.0
	}
	return (v - ext.min) / (ext.max - ext.min)
}

func zeroMetrics() map[zone.Metric]float64 {
	z := make(map[zone.Metric]float64, len(zone.ScoredMetrics()))
	for _, m := range zone.ScoredMetrics() {
		z[m] = 0.0
	}
	return z
}
