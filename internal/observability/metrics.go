// Package observability wires Prometheus metrics and OpenTelemetry tracing
// into the HTTP stack.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	bulkRowsInserted  prometheus.Counter
	safeDeleteBlocked *prometheus.CounterVec
	upstreamErrors    *prometheus.CounterVec
}

// NewMetrics registers every metric in a private registry, so building
// more than one (as tests do) never collides.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneylens_http_requests_total",
				Help: "Total HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moneylens_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		bulkRowsInserted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moneylens_bulk_rows_inserted_total",
				Help: "Transactions inserted through bulk upload.",
			},
		),
		safeDeleteBlocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneylens_safe_delete_blocked_total",
				Help: "Safe deletes refused because the row was still in use.",
			},
			[]string{"kind"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneylens_upstream_errors_total",
				Help: "Failed calls to external services.",
			},
			[]string{"service"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware counts and times every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// The recorders below are safe on a nil *Metrics so callers can run
// without metrics.

// BulkRowsInserted adds n committed bulk-upload rows.
func (m *Metrics) BulkRowsInserted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bulkRowsInserted.Add(float64(n))
}

// SafeDeleteBlocked counts a refused safe delete of kind.
func (m *Metrics) SafeDeleteBlocked(kind string) {
	if m == nil {
		return
	}
	m.safeDeleteBlocked.WithLabelValues(kind).Inc()
}

// UpstreamError counts a failed call to service.
func (m *Metrics) UpstreamError(service string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(service).Inc()
}
