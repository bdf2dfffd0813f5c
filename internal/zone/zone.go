package zone

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Metric names one amenity category counted within a zone's 15-minute radius.
type Metric string

const (
	MetricAmenity   Metric = "amenity"
	MetricBank      Metric = "bank"
	MetricFood      Metric = "food"
	MetricHealth    Metric = "health"
	MetricShop      Metric = "shop"
	MetricSport     Metric = "sport"
	MetricTransport Metric = "transport"

	// MetricGreenery is present in the dataset and accepted as a weight input,
	// but does not enter the score formula. Folding it in is deferred until the
	// upstream dataset settles on a greenery measure.
	MetricGreenery Metric = "greenery"
)

// scoredMetrics is the single declared list of metrics that enter the score.
// Weight normalization, min-max normalization and aggregation all iterate this
// list, so adding or removing a metric is a one-place change.
var scoredMetrics = []Metric{
	MetricAmenity,
	MetricBank,
	MetricFood,
	MetricHealth,
	MetricShop,
	MetricSport,
	MetricTransport,
}

// ScoredMetrics returns the metrics that participate in the accessibility
// score, in stable order. The returned slice must not be modified.
func ScoredMetrics() []Metric {
	return scoredMetrics
}

// IsScored reports whether m participates in the score formula.
func IsScored(m Metric) bool {
	for _, s := range scoredMetrics {
		if s == m {
			return true
		}
	}
	return false
}

// Record is one geographic zone (a senior-housing catchment area). Title and
// Raw are immutable input; Normalized and AccessibilityScore are derived and
// overwritten on every scoring run. Geometry is opaque to the scoring engine
// and passed through unchanged for the rendering layer.
type Record struct {
	Title    string       `json:"title"`
	Geometry orb.Geometry `json:"-"`

	Raw                map[Metric]float64 `json:"raw_metrics"`
	Normalized         map[Metric]float64 `json:"normalized_metrics,omitempty"`
	AccessibilityScore float64            `json:"accessibility_score"`
}

// Collection is an ordered set of zone records loaded once per run.
type Collection []*Record

var (
	ErrEmptyCollection = errors.New("zone collection is empty")
)

// Validate enforces the loader-side preconditions: a non-empty collection,
// unique titles, and a non-negative value for every scored metric. The scoring
// engine assumes these hold and never re-checks them.
func (c Collection) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCollection
	}
	seen := make(map[string]bool, len(c))
	for i, r := range c {
		if r.Title == "" {
			return fmt.Errorf("zone %d: missing title", i)
		}
		if seen[r.Title] {
			return fmt.Errorf("zone %q: duplicate title", r.Title)
		}
		seen[r.Title] = true
		for _, m := range scoredMetrics {
			v, ok := r.Raw[m]
			if !ok {
				return fmt.Errorf("zone %q: missing metric %q", r.Title, m)
			}
			if v < 0 {
				return fmt.Errorf("zone %q: metric %q is negative (%f)", r.Title, m, v)
			}
		}
	}
	return nil
}

// ByTitle returns the record with the given title, or nil.
func (c Collection) ByTitle(title string) *Record {
	for _, r := range c {
		if r.Title == title {
			return r
		}
	}
	return nil
}
