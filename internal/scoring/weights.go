package scoring

import (
	"fmt"

	"github.com/openurban/quarterhour/internal/zone"
)

// WeightSet is one user-supplied importance assignment, in the conventional
// UI range [0,100] per metric. It is an immutable input to a scoring run; the
// engine never mutates it. Values outside [0,100] are not rejected — they are
// treated as plain numbers and skew the normalized weights proportionally.
//
// Greenery is accepted for forward compatibility but has no effect on the
// score; it is not in zone.ScoredMetrics.
type WeightSet struct {
	Amenity   float64 `json:"amenity" yaml:"amenity"`
	Bank      float64 `json:"bank" yaml:"bank"`
	Food      float64 `json:"food" yaml:"food"`
	Health    float64 `json:"health" yaml:"health"`
	Shop      float64 `json:"shop" yaml:"shop"`
	Sport     float64 `json:"sport" yaml:"sport"`
	Transport float64 `json:"transport" yaml:"transport"`
	Greenery  float64 `json:"greenery" yaml:"greenery"`
}

// DefaultWeights returns the equal-importance default: 20 for every scored
// metric, 0 for greenery.
func DefaultWeights() WeightSet {
	return WeightSet{
		Amenity:   20,
		Bank:      20,
		Food:      20,
		Health:    20,
		Shop:      20,
		Sport:     20,
		Transport: 20,
		Greenery:  0,
	}
}

// Value returns the weight for one metric.
func (w WeightSet) Value(m zone.Metric) float64 {
	switch m {
	case zone.MetricAmenity:
		return w.Amenity
	case zone.MetricBank:
		return w.Bank
	case zone.MetricFood:
		return w.Food
	case zone.MetricHealth:
		return w.Health
	case zone.MetricShop:
		return w.Shop
	case zone.MetricSport:
		return w.Sport
	case zone.MetricTransport:
		return w.Transport
	case zone.MetricGreenery:
		return w.Greenery
	}
	return 0
}

// Total sums the weights of the scored metrics only. Greenery never counts.
func (w WeightSet) Total() float64 {
	var total float64
	for _, m := range zone.ScoredMetrics() {
		total += w.Value(m)
	}
	return total
}

// Normalized returns per-metric fractions summing to 1 across the scored
// metrics, and ok=false when the total is zero (the degenerate-weights
// fallback: every zone scores 0).
func (w WeightSet) Normalized() (map[zone.Metric]float64, bool) {
	total := w.Total()
	if total == 0 {
		return nil, false
	}
	norm := make(map[zone.Metric]float64, len(zone.ScoredMetrics()))
	for _, m := range zone.ScoredMetrics() {
		norm[m] = w.Value(m) / total
	}
	return norm, true
}

// Validate rejects negative weights. A zero total is not an error — it is the
// documented all-zeros fallback.
func (w WeightSet) Validate() error {
	for _, m := range zone.ScoredMetrics() {
		if w.Value(m) < 0 {
			return fmt.Errorf("negative weight for %s: %f", m, w.Value(m))
		}
	}
	if w.Greenery < 0 {
		return fmt.Errorf("negative weight for %s: %f", zone.MetricGreenery, w.Greenery)
	}
	return nil
}
