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

const (
	namespace     = "mediaflow"
	MetricsPath   = "/metrics"
	unmatchedPath = "unmatched"
)

// Metrics holds the collectors for one registry. Tests build their own so
// counts never leak between them.
type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	transitions      *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_transitions_total",
			Help:      "Media status transition attempts by source, target and outcome.",
		}, []string{"from", "to", "result"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_token_validations_total",
			Help:      "Share token validations by outcome code.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.inFlight,
		m.transitions,
		m.tokenValidations,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count, latency and in-flight requests. The
// route pattern is used as the path label to keep cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == MetricsPath {
				return next(c)
			}

			m.inFlight.Inc()
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the real status is recorded.
				c.Error(err)
			}

			m.inFlight.Dec()

			path := c.Path()
			if path == "" {
				path = unmatchedPath
			}
			method := c.Request().Method

			m.requests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// ObserveTransition counts one status transition attempt.
func (m *Metrics) ObserveTransition(from, to, result string) {
	m.transitions.WithLabelValues(from, to, result).Inc()
}

// ObserveTokenValidation counts one share token check; result is "ok" or
// the error code.
func (m *Metrics) ObserveTokenValidation(result string) {
	m.tokenValidations.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterMetricsRoute exposes the registry on GET /metrics.
func (m *Metrics) RegisterMetricsRoute(e *echo.Echo) {
	e.GET(MetricsPath, echo.WrapHandler(m.Handler()))
}
