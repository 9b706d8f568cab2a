package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"headcount/internal/export"
)

const metricsNamespace = "headcount"

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	saves           *prometheus.CounterVec
	exports         *prometheus.CounterVec
	reportRows      prometheus.Histogram
}

// CacheStats reports cumulative hit and miss counts of the report cache.
type CacheStats func() (hits, misses int64)

// NewMetrics registers the server collectors, plus the Go and process
// collectors, on reg.
func NewMetrics(reg prometheus.Registerer, stats CacheStats) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "allocations_saved_total",
			Help:      "Allocation records saved, split by create or update.",
		}, []string{"operation"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "report_exports_total",
			Help:      "Report exports by outcome.",
		}, []string{"outcome"}),
		reportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "report_rows",
			Help:      "Rows returned per generated report.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}),
	}

	reg.MustRegister(
		m.requests, m.requestDuration, m.saves, m.exports, m.reportRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if stats != nil {
		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "report_cache_hits_total",
				Help:      "Report cache hits.",
			}, func() float64 { h, _ := stats(); return float64(h) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "report_cache_misses_total",
				Help:      "Report cache misses.",
			}, func() float64 { _, ms := stats(); return float64(ms) }),
		)
	}
	return m
}

// ObserveRequest is a trace.Observer.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	path = routeLabel(path)
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) allocationSaved(created bool) {
	op := "update"
	if created {
		op = "create"
	}
	m.saves.WithLabelValues(op).Inc()
}

func (m *Metrics) exportDone(err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, export.ErrMirrorFailed):
		outcome = "partial"
	case err != nil:
		outcome = "error"
	}
	m.exports.WithLabelValues(outcome).Inc()
}

// routeLabel keeps label cardinality bounded to the known routes.
func routeLabel(path string) string {
	switch path {
	case "/", "/allocations", "/allocations/edit", "/allocations/reset", "/report", "/report/export",
		"/departments", "/healthz", "/readyz", "/metrics":
		return path
	}
	if strings.HasPrefix(path, "/static/") {
		return "/static/"
	}
	return "other"
}
