// Package prometheus registers and exposes the engine's metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds every metric the engine emits, registered on a private
// registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// Annotation resolution
	AnnotationsIndexed *prometheus.CounterVec // kind, outcome (resolved|unresolved)
	SegmentationsTotal prometheus.Counter

	// View state persistence
	StateLoadsTotal *prometheus.CounterVec // result (hit|default|stale|error)
	StateSavesTotal *prometheus.CounterVec // result (ok|error|skipped)

	// Scroll restoration
	ScrollCaptures        prometheus.Counter
	ScrollRestoresTotal   *prometheus.CounterVec // result (restored|exhausted|stale)
	StaleTimersCancelled  prometheus.Counter

	// Feedback
	FeedbackEventsTotal *prometheus.CounterVec // result (emitted|failed)

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec   // method, path, status
	HTTPRequestDuration *prometheus.HistogramVec // method, path
}

// NewMetrics builds and registers the engine metric set under namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: registry,
		AnnotationsIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_indexed_total",
			Help:      "Annotations produced by the indexer, by kind and resolution outcome",
		}, []string{"kind", "outcome"}),
		SegmentationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segmentations_total",
			Help:      "Document segmentation builds",
		}),
		StateLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_state_loads_total",
			Help:      "View state loads, by result",
		}, []string{"result"}),
		StateSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_state_saves_total",
			Help:      "View state saves, by result",
		}, []string{"result"}),
		ScrollCaptures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scroll_captures_total",
			Help:      "Debounced scroll snapshots captured",
		}),
		ScrollRestoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scroll_restores_total",
			Help:      "Scroll restore outcomes",
		}, []string{"result"}),
		StaleTimersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_timers_cancelled_total",
			Help:      "Pending timers cancelled because their target key changed",
		}),
		FeedbackEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_events_total",
			Help:      "Annotation feedback emissions, by result",
		}, []string{"result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   defaultDurationBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.AnnotationsIndexed,
		m.SegmentationsTotal,
		m.StateLoadsTotal,
		m.StateSavesTotal,
		m.ScrollCaptures,
		m.ScrollRestoresTotal,
		m.StaleTimersCancelled,
		m.FeedbackEventsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
