package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabriq-erp/fabriq/internal/observability"
)

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:  slog.Default(),
		Config:  &Config{AppRequestTimeout: 0, RateLimitPerMinute: 1000},
		Metrics: observability.NewMetrics(),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger: slog.Default(),
		Config: &Config{RateLimitPerMinute: 1000},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
