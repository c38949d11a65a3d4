package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/internal/application/panel"
	appviewstate "github.com/docsight/docsight/internal/application/viewstate"
	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	"github.com/docsight/docsight/internal/interfaces/http/handlers"
	"github.com/docsight/docsight/internal/testutil"
)

type routerFixture struct {
	handler http.Handler
	sched   *testutil.ManualScheduler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	sched := testutil.NewManualScheduler()
	log := testutil.NewMockLogger()
	store := appviewstate.NewStore(kvstore.NewMemoryStore(), log,
		appviewstate.WithClock(sched.Now))
	sessions := panel.NewManager(panel.Deps{
		Store:     store,
		Scheduler: sched,
		Logger:    log,
	})
	t.Cleanup(sessions.CloseAll)

	handler := NewRouter(RouterConfig{
		SessionHandler: handlers.NewSessionHandler(sessions, store, log),
		Logger:         log,
		Metrics:        prometheus.NewMetrics("docsight_test"),
		Mode:           gin.TestMode,
	})
	return &routerFixture{handler: handler, sched: sched}
}

func (f *routerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *routerFixture) createSession(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

const fixtureText = "The company reported record revenue. Litigation remains a concern."

func (f *routerFixture) bindDocument(t *testing.T, sessionID, docID string) map[string]interface{} {
	t.Helper()
	analysis := map[string]interface{}{
		"summary": "A solid year with open legal questions.",
		"key_points": []interface{}{
			map[string]interface{}{
				"text":     "Record revenue",
				"quote":    "record revenue",
				"position": map[string]interface{}{"start": 21, "end": 35, "found": true},
			},
			"Margins improved as well",
		},
		"risk_flags": []interface{}{"Litigation remains a concern"},
		"swot": map[string]interface{}{
			"strengths": []interface{}{"Strong brand"},
		},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/document", map[string]interface{}{
		"id":            docID,
		"document_text": fixtureText,
		"analysis":      analysis,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingChecker struct{}

func (failingChecker) HealthCheck(context.Context) error { return errors.New("down") }

type okChecker struct{}

func (okChecker) HealthCheck(context.Context) error { return nil }

func TestRouter_ReadinessReportsFailingChecker(t *testing.T) {
	handler := NewRouter(RouterConfig{
		Mode: gin.TestMode,
		Checkers: map[string]HealthChecker{
			"redis":    failingChecker{},
			"postgres": okChecker{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	checks, _ := body["checks"].(map[string]interface{})
	assert.Equal(t, "down", checks["redis"])
	assert.Equal(t, "ok", checks["postgres"])
}

func TestRouter_SessionLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/annotations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/unknown/annotations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/annotations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DocumentBindingAndSegments(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)

	body := f.bindDocument(t, id, "doc-1")
	assert.Equal(t, "switch", body["change"])
	assert.Equal(t, "doc-1", body["key"])
	assert.Equal(t, float64(3), body["annotations"])

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/segments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	segments, _ := decodeBody(t, rec)["segments"].([]interface{})
	require.NotEmpty(t, segments)

	// Segment contents concatenate back to the document text.
	var rebuilt string
	for _, raw := range segments {
		seg := raw.(map[string]interface{})
		rebuilt += seg["content"].(string)
	}
	assert.Equal(t, fixtureText, rebuilt)

	// Same document again rehydrates instead of resetting.
	body = f.bindDocument(t, id, "doc-1")
	assert.Equal(t, "rehydrate", body["change"])
}

func TestRouter_SelectAndNavigate(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)
	f.bindDocument(t, id, "doc-1")

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/annotations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anns, _ := decodeBody(t, rec)["annotations"].([]interface{})
	require.Len(t, anns, 3)
	annID := anns[0].(map[string]interface{})["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select",
		map[string]interface{}{"annotation_id": annID})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, annID, body["active_id"])

	// Selecting the active annotation again toggles the highlight off.
	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select",
		map[string]interface{}{"annotation_id": annID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeBody(t, rec)["active_id"])

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select",
		map[string]interface{}{"annotation_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/collections/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["total"])

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/collections/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/collections/insights/navigate",
		map[string]interface{}{"delta": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["index"])

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/collections/insights/navigate",
		map[string]interface{}{"delta": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["index"]) // clamped at last card

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/collections/insights/navigate",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Gesture(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)
	f.bindDocument(t, id, "doc-1")

	base := "/api/v1/sessions/" + id + "/collections/insights/gesture"

	rec := f.do(t, http.MethodPost, base, map[string]interface{}{"phase": "begin", "x": 200, "y": 50})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base, map[string]interface{}{"phase": "move", "x": 170, "y": 52})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.6, decodeBody(t, rec)["progress"], 0.001)

	rec = f.do(t, http.MethodPost, base, map[string]interface{}{"phase": "end", "x": 140, "y": 55})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["moved"])

	rec = f.do(t, http.MethodPost, base, map[string]interface{}{"phase": "pinch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StateRoundTrip(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)
	f.bindDocument(t, id, "doc-1")

	base := "/api/v1/sessions/" + id + "/state"

	rec := f.do(t, http.MethodPatch, base, map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{"type": "set_active_tab", "tab": "swot"},
			map[string]interface{}{"type": "set_card_mode", "mode": "compact"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "swot", body["active_tab"])
	assert.Equal(t, "compact", body["card_mode"])

	rec = f.do(t, http.MethodPatch, base, map[string]interface{}{
		"actions": []interface{}{map[string]interface{}{"type": "explode"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "analysis", decodeBody(t, rec)["active_tab"])
}

func TestRouter_ScrollCaptureAndRestore(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)
	f.bindDocument(t, id, "doc-1")

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/scroll/document",
		map[string]interface{}{"top": 300, "content_height": 1100, "viewport_height": 100})
	require.Equal(t, http.StatusAccepted, rec.Code)

	f.sched.Advance(time.Second)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Panels map[string]struct {
			Scroll *struct {
				Top        float64 `json:"top"`
				Percentage float64 `json:"percentage"`
			} `json:"scroll"`
		} `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotNil(t, state.Panels["document"].Scroll)
	assert.Equal(t, float64(300), state.Panels["document"].Scroll.Top)
	assert.InDelta(t, 0.3, state.Panels["document"].Scroll.Percentage, 0.001)

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/scroll/document/restore", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decodeBody(t, rec)["result"])

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/scroll/nowhere", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Feedback(t *testing.T) {
	f := newRouterFixture(t)
	id := f.createSession(t)
	f.bindDocument(t, id, "doc-1")

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/annotations", nil)
	anns, _ := decodeBody(t, rec)["annotations"].([]interface{})
	require.NotEmpty(t, anns)
	annID := anns[0].(map[string]interface{})["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/feedback",
		map[string]interface{}{"annotation_id": annID, "feedback_type": "positive"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	given, _ := decodeBody(t, rec)["given"].(map[string]interface{})
	assert.Equal(t, "positive", given[annID])

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/feedback",
		map[string]interface{}{"annotation_id": annID, "feedback_type": "shrug"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/feedback",
		map[string]interface{}{"annotation_id": "insight-99", "feedback_type": "positive"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MetricsExposition(t *testing.T) {
	f := newRouterFixture(t)
	f.createSession(t)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsight_test_http_requests_total")
}

func TestServer_StartStop(t *testing.T) {
	cfg := config.ServerConfig{Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second}
	srv := NewServer(cfg, http.NewServeMux(), testutil.NewMockLogger())
	require.NotNil(t, srv.Handler())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}
