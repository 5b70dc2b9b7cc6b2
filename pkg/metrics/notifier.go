package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotifierMetrics records metadata for the outbox dispatch loop.
type NotifierMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	terminal *prometheus.CounterVec
}

// NewNotifierMetrics registers the dispatcher metrics on the provided registerer.
func NewNotifierMetrics(reg prometheus.Registerer) *NotifierMetrics {
	if reg == nil {
		return &NotifierMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notifier_dispatch_duration_seconds",
		Help:    "Duration of webhook dispatch attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_dispatch_success",
		Help: "Successful webhook deliveries.",
	}, []string{"event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_dispatch_failure",
		Help: "Failed webhook delivery attempts.",
	}, []string{"event_type"})
	terminal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_dispatch_terminal",
		Help: "Events abandoned after exhausting retries.",
	}, []string{"event_type"})
	reg.MustRegister(duration, success, failure, terminal)
	return &NotifierMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		terminal: terminal,
	}
}

// ObserveDispatch records the duration of one delivery attempt.
func (m *NotifierMetrics) ObserveDispatch(eventType string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(elapsed.Seconds())
}

// IncSuccess increments the delivered counter.
func (m *NotifierMetrics) IncSuccess(eventType string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure increments the failed-attempt counter.
func (m *NotifierMetrics) IncFailure(eventType string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncTerminal increments the abandoned-event counter.
func (m *NotifierMetrics) IncTerminal(eventType string) {
	if m == nil || m.terminal == nil {
		return
	}
	m.terminal.WithLabelValues(normalizeLabel(eventType)).Inc()
}
