package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openurban/quarterhour/internal/events"
	"github.com/openurban/quarterhour/internal/scoring"
)

type ApplyWeightsRequest struct {
	Weights scoring.WeightSet `json:"weights"`
}

type ApplyWeightsResponse struct {
	Run     scoring.RunSummary `json:"run"`
	Warning string             `json:"warning,omitempty"`
}

// ApplyWeights handles POST /api/v1/scores. One request is one discrete
// weight-change event: a full synchronous recomputation under the new set.
// Out-of-range weights are not rejected — they act as plain numbers and skew
// the normalized weights proportionally.
func (a *App) ApplyWeights(w http.ResponseWriter, r *http.Request) {
	var req ApplyWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	a.mu.Lock()
	a.weights = req.Weights
	start := time.Now()
	a.lastRun = a.engine.Score(req.Weights)
	duration := time.Since(start)
	run := a.lastRun
	a.mu.Unlock()

	observeRun(run)
	recomputeDuration.Observe(duration.Seconds())
	a.publish(events.SubjectScoresRecomputed, run)

	resp := ApplyWeightsResponse{Run: run}
	if run.Degenerate {
		resp.Warning = "all scored weights are 0; every zone scores 0"
	}
	writeJSON(w, http.StatusOK, resp)
}

// LatestRun handles GET /api/v1/scores.
func (a *App) LatestRun(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	run := a.lastRun
	a.mu.RUnlock()
	writeJSON(w, http.StatusOK, run)
}

// DefaultWeights handles GET /api/v1/weights/defaults.
func (a *App) DefaultWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.DefaultWeights())
}

type ExplainResponse struct {
	Title              string                       `json:"title"`
	AccessibilityScore float64                      `json:"accessibility_score"`
	Contributions      []scoring.MetricContribution `json:"contributions"`
}

// Explain handles GET /api/v1/scores/explain/{title}: the per-metric
// breakdown of one zone's score under the latest weight set.
func (a *App) Explain(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	a.mu.RLock()
	defer a.mu.RUnlock()

	rec := a.engine.Collection().ByTitle(title)
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown zone"})
		return
	}
	writeJSON(w, http.StatusOK, ExplainResponse{
		Title:              rec.Title,
		AccessibilityScore: rec.AccessibilityScore,
		Contributions:      a.engine.Explain(rec, a.weights),
	})
}
