package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outcomes of outbox publish cycles.
type PublisherMetrics struct {
	cycleDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	deadLettered  *prometheus.CounterVec
}

// NewPublisherMetrics registers publisher metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which keeps tests quiet.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	cycleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_cycle_duration_seconds",
		Help:    "Duration of outbox publish cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"publisher"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered_total",
		Help: "Outbox events moved to the DLQ.",
	}, []string{"event_type"})
	reg.MustRegister(cycleDuration, published, failed, deadLettered)
	return &PublisherMetrics{
		cycleDuration: cycleDuration,
		published:     published,
		failed:        failed,
		deadLettered:  deadLettered,
	}
}

// ObserveCycle records the duration of one publish cycle.
func (m *PublisherMetrics) ObserveCycle(publisher string, duration time.Duration) {
	if m == nil || m.cycleDuration == nil {
		return
	}
	m.cycleDuration.WithLabelValues(normalizeLabel(publisher)).Observe(duration.Seconds())
}

// IncPublished increments the published counter for the event type.
func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (m *PublisherMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered increments the DLQ counter for the event type.
func (m *PublisherMetrics) IncDeadLettered(eventType string) {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
