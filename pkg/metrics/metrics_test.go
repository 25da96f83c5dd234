package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New("test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues(http.MethodGet, "/api/health", "200")))
}

func TestHiringTransitionCounter(t *testing.T) {
	m := New("test")
	m.HiringTransition("approved", "ok")
	m.HiringTransition("approved", "EXPIRED")
	m.HiringTransition("approved", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hiringTrans.WithLabelValues("approved", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hiringTrans.WithLabelValues("approved", "EXPIRED")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.HiringTransition("rejected", "ok")
		m.OrderCreated(true)
		m.ExpiredSwept(2)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("test")
	m.OrderCreated(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "test_orders_created_total"))
}
