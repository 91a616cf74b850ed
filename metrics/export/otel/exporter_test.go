package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goAccount "github.com/MrEthical07/goAccount"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goAccount.MetricsSnapshot
	events   uint64
	mail     uint64
}

func (f *fakeSource) MetricsSnapshot() goAccount.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goAccount.MetricsSnapshot{
		Counters:   make(map[goAccount.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goAccount.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) EventsDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.events
}

func (f *fakeSource) MailDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mail
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				t.Fatalf("metric %s has unexpected data %T", name, m.Data)
			}
			return sum.DataPoints[0].Value
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: goAccount.MetricsSnapshot{
			Counters: map[goAccount.MetricID]uint64{
				goAccount.MetricLoginSuccess: 3,
			},
			Histograms: map[goAccount.MetricID][]uint64{
				goAccount.MetricFlowLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		events: 1,
		mail:   4,
	}

	exp, err := NewExporter(provider.Meter("goaccount-test"), src)
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := findSum(t, rm, "goaccount_login_success_total"); got != 3 {
		t.Fatalf("login success = %d, want 3", got)
	}
	if got := findSum(t, rm, "goaccount_events_dropped_total"); got != 1 {
		t.Fatalf("events dropped = %d, want 1", got)
	}
	if got := findSum(t, rm, "goaccount_mail_dropped_total"); got != 4 {
		t.Fatalf("mail dropped = %d, want 4", got)
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	_, provider := newMeter()

	if _, err := NewExporter(provider.Meter("goaccount-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporter(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: goAccount.MetricsSnapshot{
			Counters: map[goAccount.MetricID]uint64{
				goAccount.MetricLoginSuccess: 1,
			},
			Histograms: map[goAccount.MetricID][]uint64{
				goAccount.MetricFlowLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewExporter(provider.Meter("goaccount-test"), src)
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goAccount.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
