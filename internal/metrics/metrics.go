// Package metrics exposes Prometheus collectors for the registration server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parkentry"

// Metrics holds the server collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	submissions   *prometheus.CounterVec
	entries       prometheus.Counter
	catalogLoads  *prometheus.CounterVec
	uploadedBytes prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Registration submissions by category and outcome.",
		}, []string{"category", "outcome"}),
		entries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_stored_total",
			Help:      "Entry rows written to the store.",
		}),
		catalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Country catalog load attempts by outcome.",
		}, []string{"outcome"}),
		uploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of group list files stored.",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ObserveSubmission records a submission outcome and the rows it stored.
func (m *Metrics) ObserveSubmission(category, outcome string, rows int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(category, outcome).Inc()
	if rows > 0 {
		m.entries.Add(float64(rows))
	}
}

// ObserveCatalogLoad matches catalog.LoadObserver.
func (m *Metrics) ObserveCatalogLoad(outcome string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
}

// ObserveUpload records the size of a stored group list.
func (m *Metrics) ObserveUpload(size int) {
	if m == nil {
		return
	}
	m.uploadedBytes.Add(float64(size))
}
