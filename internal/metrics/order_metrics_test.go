package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics(t *testing.T) {
	metrics := NewOrderMetrics()

	if metrics == nil {
		t.Fatal("NewOrderMetrics should not return nil")
	}

	if metrics.checkoutStarted == nil {
		t.Error("checkoutStarted counter should not be nil")
	}

	if metrics.checkoutCompleted == nil {
		t.Error("checkoutCompleted counter should not be nil")
	}

	if metrics.checkoutFailed == nil {
		t.Error("checkoutFailed counter should not be nil")
	}

	if metrics.ordersCanceled == nil {
		t.Error("ordersCanceled counter should not be nil")
	}

	if metrics.stockRollbacks == nil {
		t.Error("stockRollbacks counter should not be nil")
	}

	if metrics.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}

	if metrics.statusTransitions == nil {
		t.Error("statusTransitions counter vec should not be nil")
	}

	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}

	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}

	if metrics.activeCheckouts == nil {
		t.Error("activeCheckouts gauge should not be nil")
	}
}

func TestRecordCheckoutStarted(t *testing.T) {
	reg := prometheus.NewRegistry()

	checkoutStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_started_total",
		Help: "Test counter",
	})
	activeCheckouts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_checkouts",
		Help: "Test gauge",
	})

	reg.MustRegister(checkoutStarted, activeCheckouts)

	metrics := &OrderMetrics{
		checkoutStarted: checkoutStarted,
		activeCheckouts: activeCheckouts,
	}

	metrics.RecordCheckoutStarted()

	metric := &dto.Metric{}
	if err := checkoutStarted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := activeCheckouts.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected active checkouts 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordCheckoutDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_checkout_duration_seconds",
		Help:    "Test histogram",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(checkoutDuration)

	metrics := &OrderMetrics{
		checkoutDuration: checkoutDuration,
	}

	metrics.RecordCheckoutDuration(100 * time.Millisecond)
	metrics.RecordCheckoutDuration(500 * time.Millisecond)
	metrics.RecordCheckoutDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := checkoutDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Check sum is approximately correct (0.1 + 0.5 + 1.0 = 1.6)
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordStatusTransition(t *testing.T) {
	reg := prometheus.NewRegistry()

	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_order_status_transitions_total",
		Help: "Test counter vec",
	}, []string{"status"})

	reg.MustRegister(statusTransitions)

	metrics := &OrderMetrics{
		statusTransitions: statusTransitions,
	}

	metrics.RecordStatusTransition("confirmed")
	metrics.RecordStatusTransition("confirmed")
	metrics.RecordStatusTransition("shipped")

	confirmedMetric := &dto.Metric{}
	if err := statusTransitions.WithLabelValues("confirmed").Write(confirmedMetric); err != nil {
		t.Fatalf("failed to write confirmed metric: %v", err)
	}

	if confirmedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 confirmed transitions, got %f", confirmedMetric.Counter.GetValue())
	}
}

func TestCheckoutLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()

	activeCheckouts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_checkout_lifecycle_active",
		Help: "Test gauge",
	})
	checkoutStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_lifecycle_started",
		Help: "Test counter",
	})
	checkoutCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_lifecycle_completed",
		Help: "Test counter",
	})

	reg.MustRegister(activeCheckouts, checkoutStarted, checkoutCompleted)

	metrics := &OrderMetrics{
		activeCheckouts:   activeCheckouts,
		checkoutStarted:   checkoutStarted,
		checkoutCompleted: checkoutCompleted,
	}

	metrics.RecordCheckoutStarted() // active: 1
	metrics.RecordCheckoutStarted() // active: 2
	metrics.RecordCheckoutStarted() // active: 3

	metrics.RecordCheckoutCompleted()
	metrics.RecordCheckoutFinished() // active: 2
	metrics.RecordCheckoutCompleted()
	metrics.RecordCheckoutFinished() // active: 1

	gaugeMetric := &dto.Metric{}
	if err := activeCheckouts.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1 active checkout, got %f", gaugeMetric.Gauge.GetValue())
	}

	startedMetric := &dto.Metric{}
	if err := checkoutStarted.Write(startedMetric); err != nil {
		t.Fatalf("failed to write started metric: %v", err)
	}

	if startedMetric.Counter.GetValue() != 3.0 {
		t.Errorf("expected 3 started checkouts, got %f", startedMetric.Counter.GetValue())
	}

	completedMetric := &dto.Metric{}
	if err := checkoutCompleted.Write(completedMetric); err != nil {
		t.Fatalf("failed to write completed metric: %v", err)
	}

	if completedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 completed checkouts, got %f", completedMetric.Counter.GetValue())
	}
}

func TestRecordStockRollback(t *testing.T) {
	reg := prometheus.NewRegistry()

	stockRollbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_stock_rollbacks_total",
		Help: "Test counter",
	})

	reg.MustRegister(stockRollbacks)

	metrics := &OrderMetrics{
		stockRollbacks: stockRollbacks,
	}

	metrics.RecordStockRollback()
	metrics.RecordStockRollback()

	metric := &dto.Metric{}
	if err := stockRollbacks.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}
