package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/openurban/quarterhour/internal/events"
	"github.com/openurban/quarterhour/internal/scoring"
	"github.com/openurban/quarterhour/internal/store"
)

// App holds the process-wide scoring state: the engine bound to the current
// zone collection, the weight set of the latest run, and its summary.
//
// Weight changes and reloads take the write lock, so recomputations are
// serialized and each run uses exactly one weight set end to end. Concurrent
// weight posts resolve last-write-wins. Readers take the read lock because
// the engine rewrites the derived zone fields in place.
type App struct {
	mu      sync.RWMutex
	engine  *scoring.Engine
	weights scoring.WeightSet
	lastRun scoring.RunSummary

	src    store.Store
	events events.Client
	logger *slog.Logger
}

// NewApp computes an initial scoring run with the given weights so the zone
// endpoints serve scored data from the first request.
func NewApp(engine *scoring.Engine, weights scoring.WeightSet, src store.Store, ev events.Client, logger *slog.Logger) *App {
	app := &App{
		engine:  engine,
		weights: weights,
		src:     src,
		events:  ev,
		logger:  logger,
	}
	app.lastRun = engine.Score(weights)
	observeRun(app.lastRun)
	return app
}

func (a *App) publish(subject string, payload interface{}) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(subject, payload); err != nil {
		a.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
