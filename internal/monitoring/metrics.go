package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
	UpstreamFetchTotal  *prometheus.CounterVec
}

// NewMetrics registers the collectors on a registry owned by the returned value,
// so several instances can coexist (tests, CLI).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediascraper_extractions_total",
			Help: "Extractions by platform and outcome.",
		}, []string{"platform", "outcome"}), // outcome: success, caller_error, not_found, upstream_error
		ExtractionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediascraper_extraction_duration_seconds",
			Help:    "End-to-end extraction latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"platform"}),
		UpstreamFetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediascraper_upstream_fetch_total",
			Help: "Outbound requests by platform and upstream status (0 for transport failures).",
		}, []string{"platform", "status"}),
	}
}

func (m *Metrics) ObserveHTTP(method, path string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(seconds)
}

func (m *Metrics) ObserveExtraction(platform, outcome string, seconds float64) {
	m.ExtractionsTotal.WithLabelValues(platform, outcome).Inc()
	m.ExtractionDuration.WithLabelValues(platform).Observe(seconds)
}

func (m *Metrics) IncUpstreamFetch(platform string, status int) {
	m.UpstreamFetchTotal.WithLabelValues(platform, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
