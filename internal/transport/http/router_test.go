package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	calendarhandler "onboarding/internal/calendar/handler"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/platform/middleware"
	"onboarding/pkg/testutil"
)

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Logger:   logger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Handlers: []Registrar{calendarhandler.New(logger)},
		Checks:   checks,
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := newTestRouter(map[string]HealthCheck{"redis": func(context.Context) error { return nil }})
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("degraded", func(t *testing.T) {
		r := newTestRouter(map[string]HealthCheck{"redis": func(context.Context) error { return errors.New("dial tcp: refused") }})
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
	})
}

func TestRouter_ServesHandlersWithMiddleware(t *testing.T) {
	r := newTestRouter(nil)

	rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/calendar/convert?calendar=BS&date=2080-01-15"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ExposesMetrics(t *testing.T) {
	r := newTestRouter(nil)
	testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/calendar/range"))

	rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/metrics"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `onboarding_http_requests_total{method="GET",route="/calendar/range",status="200"} 1`)
}
