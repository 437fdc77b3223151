// Package metrics owns the Prometheus registry of the serving process and the
// collectors that describe batch processing and HTTP traffic.
//
// Each Metrics value carries its own registry, so tests can create as many as
// they like without colliding on metric names.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
)

// Outcome label values for batch_items_total
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Status label values for batches_total
const (
	BatchStatusOK      = "ok"
	BatchStatusPartial = "partial"
)

var batchSizeBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

// Metrics holds the registry and every collector registered on it
type Metrics struct {
	Registry *prometheus.Registry

	batchItems    *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
	batchDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewMetrics creates an isolated registry whose metrics all carry a constant
// service label. Go and process collectors are registered when withRuntime is set.
func NewMetrics(serviceName string, withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	m := &Metrics{
		Registry: registry,
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_items_total",
			Help: "Items processed by the batch pipeline, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batches_total",
			Help: "Batches processed, by endpoint and whether any item fell back.",
		}, []string{"endpoint", "status"}),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_size",
			Help:    "Number of items per batch.",
			Buckets: batchSizeBuckets,
		}, []string{"endpoint"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_duration_seconds",
			Help:    "Wall time spent processing one batch.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	wrapped.MustRegister(
		m.batchItems,
		m.batches,
		m.batchSize,
		m.batchDuration,
		m.httpRequests,
		m.httpDuration,
	)

	if withRuntime {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return m
}

// ObserveBatch records the counters of one finished batch
func (m *Metrics) ObserveBatch(summary entity.BatchSummary, duration time.Duration) {
	endpoint := string(summary.Endpoint)
	successes := summary.Processed - summary.Errors

	m.batchItems.WithLabelValues(endpoint, OutcomeSuccess).Add(float64(successes))
	m.batchItems.WithLabelValues(endpoint, OutcomeError).Add(float64(summary.Errors))

	status := BatchStatusOK
	if summary.Errors > 0 {
		status = BatchStatusPartial
	}
	m.batches.WithLabelValues(endpoint, status).Inc()
	m.batchSize.WithLabelValues(endpoint).Observe(float64(summary.Processed))
	m.batchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
