package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
)

// manualScheduler fires its callback only when told to.
type manualScheduler struct {
	fn         func()
	period     time.Duration
	stopped    bool
	registered chan struct{}
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{registered: make(chan struct{})}
}

func (m *manualScheduler) Every(period time.Duration, fn func()) func() {
	m.fn = fn
	m.period = period
	close(m.registered)
	return func() { m.stopped = true }
}

func TestRun_StopsFeedOnCancel(t *testing.T) {
	f := newTestFeed(t, collectors.NewMockProvider([]float64{0.3}, []float64{0.6}), 5, PolicyGap)
	sched := newManualScheduler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, sched, f, 50*time.Millisecond) }()

	select {
	case <-sched.registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Run never registered a callback")
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}

	// The callback ticks the feed; after Run it is a no-op.
	sched.fn()
	if f.Ticks() != 0 {
		t.Errorf("Ticks = %d after stop, want 0", f.Ticks())
	}
	if !sched.stopped {
		t.Error("scheduler stop was not called")
	}
	if sched.period != 50*time.Millisecond {
		t.Errorf("period = %v, want 50ms", sched.period)
	}
	if f.State() != StateStopped {
		t.Errorf("feed state = %v, want stopped", f.State())
	}
}

func TestRun_RejectsNonPositivePeriod(t *testing.T) {
	f := newTestFeed(t, collectors.NewMockProvider(nil, nil), 5, PolicyGap)
	if err := Run(context.Background(), newManualScheduler(), f, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestTickerScheduler_FiresAndStops(t *testing.T) {
	var calls atomic.Int32
	fired := make(chan struct{}, 16)

	stop := TickerScheduler{}.Every(5*time.Millisecond, func() {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d ticks before timeout", calls.Load())
		}
	}

	stop()
	stop()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Errorf("callback ran after stop: %d -> %d", after, got)
	}
}
