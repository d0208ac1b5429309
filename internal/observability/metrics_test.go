package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteAndStatus(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/projects/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/projects/alpha", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `lumina_http_requests_total{code="200",route="/api/projects/{slug}"} 1`)
}

func TestObserveAuthzCountsOutcomes(t *testing.T) {
	m := NewMetrics()

	m.ObserveAuthz("allow")
	m.ObserveAuthz("allow")
	m.ObserveAuthz("deny")

	body := scrape(t, m)
	assert.Contains(t, body, `lumina_authz_decisions_total{outcome="allow"} 2`)
	assert.Contains(t, body, `lumina_authz_decisions_total{outcome="deny"} 1`)
	assert.False(t, strings.Contains(body, `outcome="error"`))
}

func TestNilMetricsIsInert(t *testing.T) {
	var m *Metrics

	m.ObserveAuthz("allow")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
