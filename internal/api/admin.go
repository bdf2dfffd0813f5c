package api

import (
	"net/http"

	"github.com/openurban/quarterhour/internal/events"
	"github.com/openurban/quarterhour/internal/scoring"
)

type ReloadResponse struct {
	ZoneCount int                `json:"zone_count"`
	Run       scoring.RunSummary `json:"run"`
}

// Reload handles POST /api/v1/admin/reload: re-reads the zone source, binds a
// fresh engine to the new collection and rescores it with the current weight
// set. A failed load leaves the previous collection serving.
func (a *App) Reload(w http.ResponseWriter, r *http.Request) {
	coll, err := a.src.LoadZones(r.Context())
	if err != nil {
		a.logger.Error("zone reload failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	a.mu.Lock()
	a.engine = scoring.NewEngine(coll, a.logger)
	a.lastRun = a.engine.Score(a.weights)
	run := a.lastRun
	a.mu.Unlock()

	observeRun(run)
	a.logger.Info("zones reloaded", "zones", len(coll))
	a.publish(events.SubjectZonesReloaded, run)

	writeJSON(w, http.StatusOK, ReloadResponse{ZoneCount: len(coll), Run: run})
}
