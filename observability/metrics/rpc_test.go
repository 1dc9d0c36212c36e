package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"creatorfund/core/events"
	"creatorfund/core/types"
)

func TestRPCMetricsOutcomes(t *testing.T) {
	m := RPC()
	okBefore := testutil.ToFloat64(m.RequestCount("metrics_test", "success"))
	errBefore := testutil.ToFloat64(m.RequestCount("metrics_test", "error"))
	m.Observe("metrics_test", 0, time.Millisecond)
	m.Observe("metrics_test", -32602, time.Millisecond)
	if got := testutil.ToFloat64(m.RequestCount("metrics_test", "success")) - okBefore; got != 1 {
		t.Fatalf("expected one success, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestCount("metrics_test", "error")) - errBefore; got != 1 {
		t.Fatalf("expected one error, got %v", got)
	}
	before := testutil.ToFloat64(m.ThrottleCount("metrics_test"))
	m.RecordThrottle("metrics_test")
	if got := testutil.ToFloat64(m.ThrottleCount("metrics_test")) - before; got != 1 {
		t.Fatalf("expected one throttle, got %v", got)
	}
}

func TestRPCMetricsLatencyHistogram(t *testing.T) {
	m := RPC()
	m.Observe("metrics_latency", 0, 250*time.Millisecond)
	m.Observe("metrics_latency", -32000, 750*time.Millisecond)

	metric, ok := m.latency.WithLabelValues("metrics_latency").(prometheus.Metric)
	if !ok {
		t.Fatalf("latency observer is not a metric")
	}
	var out dto.Metric
	if err := metric.Write(&out); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	hist := out.GetHistogram()
	if hist.GetSampleCount() != 2 {
		t.Fatalf("expected 2 samples, got %d", hist.GetSampleCount())
	}
	if sum := hist.GetSampleSum(); sum < 0.99 || sum > 1.01 {
		t.Fatalf("unexpected latency sum %v", sum)
	}
}

func TestEventCounterCountsByType(t *testing.T) {
	before := testutil.ToFloat64(EmittedCount("metrics.test"))
	var emitter events.Emitter = EventCounter{}
	emitter.Emit(events.Wrap(&types.Event{Type: "metrics.test"}))
	emitter.Emit(nil)
	if got := testutil.ToFloat64(EmittedCount("metrics.test")) - before; got != 1 {
		t.Fatalf("expected one event counted, got %v", got)
	}
}
