// Package metrics holds the Prometheus metrics for the classifier-router
// stage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the stage runner.
type Metrics struct {
	MessagesConsumed   prometheus.Counter
	MessagesPublished  prometheus.Counter
	MessagesDeadLetter prometheus.Counter
	IdempotentSkips    prometheus.Counter
	DetectorFailures   prometheus.Counter
	ProcessingSeconds  prometheus.Histogram
}

// New creates all metrics on the default Prometheus registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registry. Tests pass a fresh
// registry to avoid duplicate-registration panics across suites.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "docflow_classifier_messages_consumed_total",
			Help: "Total inbound messages pulled from the text-extraction topic",
		}),
		MessagesPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "docflow_classifier_messages_published_total",
			Help: "Total outbound messages published to the llm-requests topic",
		}),
		MessagesDeadLetter: factory.NewCounter(prometheus.CounterOpts{
			Name: "docflow_classifier_messages_deadletter_total",
			Help: "Total messages routed to the dead-letter topic",
		}),
		IdempotentSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "docflow_classifier_idempotent_skips_total",
			Help: "Total redeliveries short-circuited by the idempotency guard",
		}),
		DetectorFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "docflow_classifier_detector_failures_total",
			Help: "Total isolated per-detector failures during classification",
		}),
		ProcessingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docflow_classifier_processing_seconds",
			Help:    "Per-message processing time from dispatch to publish",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
