package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repdesk/repdesk/internal/observability"
	"github.com/repdesk/repdesk/internal/shared"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "repdesk_session", "secret", time.Hour, false)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:         &Config{AppRequestTimeout: time.Second},
		SessionManager: newSessionManager(t),
		Metrics:        metrics,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Result().Cookies(), "untouched sessions are not stored")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `repdesk_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(RouterParams{Config: &Config{}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/representatives/u1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionMiddlewareCommitsWithoutBody(t *testing.T) {
	sessions := newSessionManager(t)
	mw := SessionMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions)

	var sessionID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		require.NotNil(t, sess)
		shared.StorePrincipal(sess, shared.Principal{UserID: 4, TenantID: 2, RepresentativeID: "u4"})
		sessionID = sess.ID
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/anything", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "repdesk_session", cookies[0].Name)
	signedID, ok := sessions.VerifyCookie(cookies[0].Value)
	require.True(t, ok)
	assert.Equal(t, sessionID, signedID)

	var principal shared.Principal
	follow := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := shared.PrincipalFromContext(r.Context())
		require.NoError(t, err)
		principal = p
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	follow.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, shared.Principal{UserID: 4, TenantID: 2, RepresentativeID: "u4"}, principal)
}
