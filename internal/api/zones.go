package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"

	"github.com/openurban/quarterhour/internal/zone"
)

// ListZones handles GET /api/v1/zones: the scored collection as a GeoJSON
// FeatureCollection. The rendering layer joins on the title property to
// color the choropleth and fill hover tooltips.
func (a *App) ListZones(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	for _, rec := range a.engine.Collection() {
		fc.Append(zoneFeature(rec))
	}
	writeJSON(w, http.StatusOK, fc)
}

// GetZone handles GET /api/v1/zones/{title}.
func (a *App) GetZone(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	a.mu.RLock()
	defer a.mu.RUnlock()

	rec := a.engine.Collection().ByTitle(title)
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown zone"})
		return
	}
	writeJSON(w, http.StatusOK, zoneFeature(rec))
}

func zoneFeature(rec *zone.Record) *geojson.Feature {
	f := geojson.NewFeature(rec.Geometry)
	f.Properties = geojson.Properties{
		"title":               rec.Title,
		"accessibility_score": rec.AccessibilityScore,
	}
	for m, v := range rec.Raw {
		f.Properties[string(m)] = v
	}
	for m, v := range rec.Normalized {
		f.Properties[string(m)+"_norm"] = v
	}
	return f
}
