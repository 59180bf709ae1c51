// Package metrics instruments the audit publisher queue and sink writes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit publisher.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	EventsDropped   prometheus.Counter
	EventsEnqueued  prometheus.Counter
	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter
	EventsProcessed prometheus.Counter
}

// New registers the audit publisher metrics with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bloodbank_audit_queue_depth",
			Help: "Current number of events in the audit publisher queue",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to full buffer",
		}),
		EventsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_audit_events_enqueued_total",
			Help: "Total number of audit events successfully enqueued",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodbank_audit_persist_duration_seconds",
			Help:    "Time taken to persist an audit event to the sink",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_audit_events_processed_total",
			Help: "Total number of audit events successfully persisted",
		}),
	}
}

// The Record methods are safe on a nil *Metrics.

// RecordEnqueued counts an event accepted into the queue.
func (m *Metrics) RecordEnqueued() {
	if m == nil {
		return
	}
	m.EventsEnqueued.Inc()
	m.QueueDepth.Inc()
}

// RecordDequeued counts an event taken off the queue by the worker.
func (m *Metrics) RecordDequeued() {
	if m != nil {
		m.QueueDepth.Dec()
	}
}

// RecordDropped counts an event rejected because the queue was full.
func (m *Metrics) RecordDropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}

// RecordPersist observes one write to the sink.
func (m *Metrics) RecordPersist(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.PersistFailures.Inc()
		return
	}
	m.EventsProcessed.Inc()
}
