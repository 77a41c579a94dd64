package authcore

import (
	"sync"
	"testing"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not count")
	}
	if m.Enabled() {
		t.Fatal("expected Enabled() == false")
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsCountsConcurrently(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricLoginSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricLoginSuccess); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != workers*perWorker {
		t.Fatalf("snapshot disagrees: %d", snap.Counters[MetricLoginSuccess])
	}
}

func TestMetricsNilSafety(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLoginSuccess)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("nil metrics must read zero")
	}
	if m.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
}
