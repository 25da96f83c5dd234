package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	hiringTrans *prometheus.CounterVec
	ordersCnt   *prometheus.CounterVec
	sweepCnt    prometheus.Counter
}

func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	hiringTrans := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "hiring_transitions_total"}, []string{"to", "result"})
	ordersCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "orders_created_total"}, []string{"with_service"})
	sweepCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "hiring_expired_swept_total"})
	r.MustRegister(hiringTrans, ordersCnt, sweepCnt)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		hiringTrans: hiringTrans,
		ordersCnt:   ordersCnt,
		sweepCnt:    sweepCnt,
	}
}

// HiringTransition учитывает попытку перехода заявки; result - "ok" или тег ошибки.
func (m *Metrics) HiringTransition(to, result string) {
	if m == nil {
		return
	}
	m.hiringTrans.WithLabelValues(to, result).Inc()
}

func (m *Metrics) OrderCreated(withService bool) {
	if m == nil {
		return
	}
	m.ordersCnt.WithLabelValues(strconv.FormatBool(withService)).Inc()
}

func (m *Metrics) ExpiredSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepCnt.Add(float64(n))
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			m.httpInfl.WithLabelValues(route).Inc()
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			code := strconv.Itoa(status)
			m.httpReqCnt.WithLabelValues(c.Request().Method, route, code).Inc()
			m.httpDur.WithLabelValues(c.Request().Method, route, code).Observe(time.Since(start).Seconds())
			m.httpInfl.WithLabelValues(route).Dec()
			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry открыт для тестов.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
