package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestReconcileMetricsExportsOutcomesAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)

	metrics.ObserveRun(OutcomeApplied, 120*time.Millisecond)
	metrics.ObserveRun(OutcomeApplied, 80*time.Millisecond)
	metrics.ObserveRun(OutcomeUnpaid, 30*time.Millisecond)
	metrics.IncSideEffectFailure("notify_buyer")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "reconcile_outcomes", "outcome", OutcomeApplied); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 2 {
		t.Fatalf("expected applied=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "reconcile_outcomes", "outcome", OutcomeUnpaid); err != nil {
		t.Fatalf("fetch unpaid: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unpaid=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "reconcile_side_effect_failures", "step", "notify_buyer"); err != nil {
		t.Fatalf("fetch side effect: %v", err)
	} else if got != 1 {
		t.Fatalf("expected notify_buyer=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "reconcile_duration_seconds", "outcome", OutcomeApplied); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestReconcileMetricsNilSafe(t *testing.T) {
	var metrics *ReconcileMetrics
	metrics.ObserveRun(OutcomeError, time.Second)
	metrics.IncSideEffectFailure("inventory")

	empty := NewReconcileMetrics(nil)
	empty.ObserveRun("", time.Second)
	empty.IncSideEffectFailure("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if hasLabel(metric, label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if hasLabel(metric, label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func hasLabel(metric *dto.Metric, label, value string) bool {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == label && pair.GetValue() == value {
			return true
		}
	}
	return false
}
