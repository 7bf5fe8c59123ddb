// Package metrics holds the Prometheus collectors for extraction and source
// refresh outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schedscan"

// Metrics is a set of collectors registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	extractions   *prometheus.CounterVec
	confidence    prometheus.Histogram
	events        prometheus.Histogram
	refreshes     *prometheus.CounterVec
	lastRefreshTS *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.extractions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extractions_total",
		Help:      "Extractions by accepted strategy (none when nothing cleared its threshold)",
	}, []string{"strategy"})
	m.confidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_confidence",
		Help:      "Confidence of accepted extraction results",
		Buckets:   []float64{0, 0.5, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
	})
	m.events = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extracted_events",
		Help:      "Number of events per extraction",
		Buckets:   prometheus.LinearBuckets(0, 5, 8),
	})
	m.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_refresh_total",
		Help:      "Source refreshes by status",
	}, []string{"status"})
	m.lastRefreshTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful refresh per source",
	}, []string{"source"})

	m.registry.MustRegister(
		m.extractions, m.confidence, m.events,
		m.refreshes, m.lastRefreshTS,
	)
	return m
}

// ObserveExtraction records one extraction outcome.
func (m *Metrics) ObserveExtraction(strategy string, confidence float64, events int) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(strategy).Inc()
	m.confidence.Observe(confidence)
	m.events.Observe(float64(events))
}

// ObserveRefresh records one source refresh. A nil err counts as success.
func (m *Metrics) ObserveRefresh(source string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshes.WithLabelValues("error").Inc()
		return
	}
	m.refreshes.WithLabelValues("ok").Inc()
	m.lastRefreshTS.WithLabelValues(source).SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
