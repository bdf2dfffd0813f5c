package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openurban/quarterhour/internal/scoring"
)

var (
	recomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quarterhour_scoring_runs_total",
		Help: "Completed scoring runs.",
	})
	degenerateRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quarterhour_scoring_degenerate_runs_total",
		Help: "Scoring runs where all scored weights were zero.",
	})
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quarterhour_scoring_run_duration_seconds",
		Help:    "Wall time of one full scoring recomputation.",
		Buckets: prometheus.DefBuckets,
	})
)

func observeRun(run scoring.RunSummary) {
	recomputeTotal.Inc()
	if run.Degenerate {
		degenerateRunsTotal.Inc()
	}
}
