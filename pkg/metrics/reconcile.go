package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reconcile outcome labels.
const (
	OutcomeApplied            = "applied"
	OutcomeAlreadyApplied     = "already_applied"
	OutcomeUnpaid             = "unpaid"
	OutcomeGatewayUnavailable = "gateway_unavailable"
	OutcomeError              = "error"
)

// ReconcileMetrics records payment reconciliation outcomes.
type ReconcileMetrics struct {
	duration        *prometheus.HistogramVec
	outcomes        *prometheus.CounterVec
	sideEffectFails *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_duration_seconds",
		Help:    "Duration of order reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_outcomes",
		Help: "Order reconciliation runs by outcome.",
	}, []string{"outcome"})
	sideEffectFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_side_effect_failures",
		Help: "Best-effort side effect failures by step.",
	}, []string{"step"})
	reg.MustRegister(duration, outcomes, sideEffectFails)
	return &ReconcileMetrics{
		duration:        duration,
		outcomes:        outcomes,
		sideEffectFails: sideEffectFails,
	}
}

// ObserveRun records a completed reconciliation run with its outcome.
func (m *ReconcileMetrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.outcomes.WithLabelValues(outcome).Inc()
}

// IncSideEffectFailure counts a failed best-effort step (inventory, notify, outbox).
func (m *ReconcileMetrics) IncSideEffectFailure(step string) {
	if m == nil || m.sideEffectFails == nil {
		return
	}
	m.sideEffectFails.WithLabelValues(normalizeLabel(step)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
