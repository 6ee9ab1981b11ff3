// Package telemetry records dispatcher activity as Prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"textops/dispatcher"
	"textops/transformations"
)

// Outcomes recorded in textops_transformations_total.
const (
	OutcomeApplied     = "applied"
	OutcomeFormatError = "format_error"
	OutcomeError       = "error"
	OutcomeUnknown     = "unknown"
)

// Metrics implements dispatcher.Observer on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ dispatcher.Observer = (*Metrics)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textops_transformations_total",
			Help: "Transformations dispatched, by identifier and outcome.",
		}, []string{"id", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "textops_transformation_duration_seconds",
			Help:    "Time spent inside a transformation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"id"}),
	}
	m.registry.MustRegister(
		m.total,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OnApplied(id string, elapsed time.Duration) {
	m.total.WithLabelValues(id, OutcomeApplied).Inc()
	m.duration.WithLabelValues(id).Observe(elapsed.Seconds())
}

func (m *Metrics) OnFailed(id string, elapsed time.Duration, err error) {
	outcome := OutcomeError
	if transformations.IsFormatError(err) {
		outcome = OutcomeFormatError
	}
	m.total.WithLabelValues(id, outcome).Inc()
	m.duration.WithLabelValues(id).Observe(elapsed.Seconds())
}

// OnUnknown records unknown identifiers under a single label so arbitrary input cannot
// grow the label set.
func (m *Metrics) OnUnknown(string) {
	m.total.WithLabelValues("", OutcomeUnknown).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
