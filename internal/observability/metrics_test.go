package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestRegistryIncludesRuntimeCollectors(t *testing.T) {
	assert.Contains(t, scrape(t, NewMetrics()), "go_goroutines")
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	rc := chi.NewRouteContext()
	rc.RoutePatterns = append(rc.RoutePatterns, "/reports/representatives/{id}")
	req := httptest.NewRequest(http.MethodGet, "/reports/representatives/u1", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/reports/representatives/{id}", "418")))
	assert.Zero(t, testutil.ToFloat64(m.inFlight))
	assert.Contains(t, scrape(t, m), `repdesk_http_request_duration_seconds_bucket{method="GET",route="/reports/representatives/{id}"`)
}

func TestMiddlewareWithoutRoute(t *testing.T) {
	m := NewMetrics()
	m.Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "404")))
}

func TestRecordExportAndCacheLookups(t *testing.T) {
	m := NewMetrics()
	m.RecordExport("csv", nil)
	m.RecordExport("pdf", errors.New("renderer down"))
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	body := scrape(t, m)
	assert.Contains(t, body, `repdesk_report_exports_total{format="csv",status="success"} 1`)
	assert.Contains(t, body, `repdesk_report_exports_total{format="pdf",status="failure"} 1`)
	assert.Contains(t, body, `repdesk_report_cache_lookups_total{result="miss"} 2`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordExport("csv", nil)
	m.RecordCacheLookup(true)
	next := http.NotFoundHandler()
	assert.NotNil(t, m.Middleware(next))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
