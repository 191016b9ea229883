package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edoardob90/runits/internal/conversion"
	"github.com/edoardob90/runits/internal/registry"
)

const metricsNamespace = "runits"

// Metrics holds the Prometheus collectors served at /api/v1/metrics. It uses
// a private registry so tests and multiple servers never collide.
//
// Metrics implements conversion.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	conversions        *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors, including Go runtime and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "conversions_total",
			Help:      "Conversions performed, by outcome.",
		}, []string{"status"}),
		conversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting a quantity.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.conversions,
		m.conversionDuration,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// WatchRegistry exports the size of the registry currently published in
// store. Only the first call registers the gauge.
func (m *Metrics) WatchRegistry(store *registry.Store) {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "registry_units",
		Help:      "Names resolvable by exact lookup in the published registry.",
	}, func() float64 {
		if r := store.Load(); r != nil {
			return float64(r.Len())
		}
		return 0
	})
	//nolint:errcheck // AlreadyRegisteredError keeps the first watcher
	m.registry.Register(gauge)
}

// RecordConversion implements conversion.Recorder.
func (m *Metrics) RecordConversion(ev conversion.Event) {
	m.conversions.WithLabelValues(ev.Status).Inc()
	m.conversionDuration.Observe(ev.Duration.Seconds())
}

func (m *Metrics) observeRequest(method, route, status string, d time.Duration) {
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
