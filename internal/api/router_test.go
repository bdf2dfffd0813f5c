package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openurban/quarterhour/internal/scoring"
	"github.com/openurban/quarterhour/internal/zone"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolygon() orb.Polygon {
	return orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
}

func testRecord(title string, food float64) *zone.Record {
	raw := make(map[zone.Metric]float64)
	for _, m := range zone.ScoredMetrics() {
		raw[m] = 5
	}
	raw[zone.MetricFood] = food
	return &zone.Record{Title: title, Geometry: testPolygon(), Raw: raw}
}

func testCollection() zone.Collection {
	return zone.Collection{testRecord("alpha", 2), testRecord("beta", 8)}
}

// stubStore returns a fixed collection, or an error when set.
type stubStore struct {
	coll zone.Collection
	err  error
}

func (s *stubStore) LoadZones(_ context.Context) (zone.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coll, nil
}
func (s *stubStore) Close() error { return nil }

func newTestServer(t *testing.T, src *stubStore, adminToken string) (*App, http.Handler) {
	t.Helper()
	engine := scoring.NewEngine(testCollection(), discardLogger())
	app := NewApp(engine, scoring.DefaultWeights(), src, nil, discardLogger())
	return app, NewRouter(app, adminToken, discardLogger())
}

func TestListZonesServesScoredGeoJSON(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	for _, f := range fc.Features {
		title, _ := f.Properties["title"].(string)
		assert.Contains(t, []string{"alpha", "beta"}, title)
		_, ok := f.Properties["accessibility_score"].(float64)
		assert.True(t, ok, "accessibility_score missing for %s", title)
		_, ok = f.Properties["food_norm"].(float64)
		assert.True(t, ok, "food_norm missing for %s", title)
		_, ok = f.Geometry.(orb.Polygon)
		assert.True(t, ok, "geometry not passed through for %s", title)
	}
}

func TestApplyWeightsFoodOnlyScenario(t *testing.T) {
	app, router := newTestServer(t, &stubStore{}, "")

	body := `{"weights":{"food":100}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scores", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ApplyWeightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Run.Degenerate)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, 2, resp.Run.ZoneCount)
	assert.Equal(t, 0.0, resp.Run.MinScore)
	assert.Equal(t, 100.0, resp.Run.MaxScore)

	// Only food differs between the two zones, so the food-only weight set
	// pins alpha to 0 and beta to 100.
	coll := app.engine.Collection()
	assert.Equal(t, 0.0, coll.ByTitle("alpha").AccessibilityScore)
	assert.Equal(t, 100.0, coll.ByTitle("beta").AccessibilityScore)
}

func TestApplyWeightsDegenerateWarning(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	body := `{"weights":{"greenery":80}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scores", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ApplyWeightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Run.Degenerate)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, 0.0, resp.Run.MaxScore)
}

func TestApplyWeightsBadBody(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scores", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExplain(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scores/explain/beta", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "beta", resp.Title)
	assert.Len(t, resp.Contributions, len(zone.ScoredMetrics()))

	var total float64
	for _, c := range resp.Contributions {
		total += c.Weighted
	}
	assert.InDelta(t, resp.AccessibilityScore, total, 1e-9)
}

func TestExplainUnknownZone(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scores/explain/nowhere", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetZone(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones/alpha", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := geojson.UnmarshalFeature(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "alpha", f.Properties["title"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/zones/nowhere", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefaultWeightsEndpoint(t *testing.T) {
	_, router := newTestServer(t, &stubStore{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/defaults", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var w scoring.WeightSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Equal(t, scoring.DefaultWeights(), w)
}

func TestAdminReloadAuth(t *testing.T) {
	newColl := zone.Collection{testRecord("alpha", 2), testRecord("beta", 8), testRecord("gamma", 4)}
	_, router := newTestServer(t, &stubStore{coll: newColl}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ZoneCount)
	assert.Equal(t, 3, resp.Run.ZoneCount)
}

func TestAdminReloadSourceFailureKeepsServing(t *testing.T) {
	src := &stubStore{err: context.DeadlineExceeded}
	_, router := newTestServer(t, src, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// Previous collection still serves.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
