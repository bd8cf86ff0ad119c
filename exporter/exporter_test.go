package exporter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
	"gitlab.com/tinyland/lab/load-pulse/feed"
)

func TestObserve_SetsGauges(t *testing.T) {
	e := New()
	e.Observe(feed.Reading{Label: "09:04:07.250", Process: 12.5, System: 40})

	if got := testutil.ToFloat64(e.processCPU); got != 12.5 {
		t.Errorf("process gauge = %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(e.systemCPU); got != 40 {
		t.Errorf("system gauge = %v, want 40", got)
	}
	if got := testutil.ToFloat64(e.ticks); got != 1 {
		t.Errorf("ticks = %v, want 1", got)
	}
}

func TestObserve_CountsErrorsAndKeepsLastValue(t *testing.T) {
	e := New()
	e.Observe(feed.Reading{Process: 10, System: 20})
	e.Observe(feed.Reading{
		ProcessErr: collectors.ErrMetricUnavailable,
		SystemErr:  &collectors.MetricError{Metric: collectors.MetricSystem, Err: fmt.Errorf("boom")},
	})
	e.Observe(feed.Reading{ProcessErr: collectors.ErrMetricUnavailable, System: 30})

	if got := testutil.ToFloat64(e.processCPU); got != 10 {
		t.Errorf("process gauge = %v, want previous value 10", got)
	}
	if got := testutil.ToFloat64(e.systemCPU); got != 30 {
		t.Errorf("system gauge = %v, want 30", got)
	}
	if got := testutil.ToFloat64(e.ticks); got != 3 {
		t.Errorf("ticks = %v, want 3", got)
	}

	tests := []struct {
		metric, kind string
		want         float64
	}{
		{collectors.MetricProcess, KindUnavailable, 2},
		{collectors.MetricSystem, KindFailed, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(e.errors.WithLabelValues(tt.metric, tt.kind))
		if got != tt.want {
			t.Errorf("errors{metric=%q,kind=%q} = %v, want %v", tt.metric, tt.kind, got, tt.want)
		}
	}
}

func TestObserve_ViaFeed(t *testing.T) {
	e := New()
	f, err := feed.New(feed.Config{
		Provider: collectors.NewMockProvider([]float64{0.25}, []float64{0.5}),
		Observer: e,
	})
	if err != nil {
		t.Fatal(err)
	}
	f.Tick()
	f.Tick()
	f.Stop()
	f.Tick()

	if got := testutil.ToFloat64(e.ticks); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(e.systemCPU); got != 50 {
		t.Errorf("system gauge = %v, want 50", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	e := New()
	e.Observe(feed.Reading{Process: 1, System: 2})

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"load_pulse_process_cpu_percent 1",
		"load_pulse_system_cpu_percent 2",
		"load_pulse_ticks_total 1",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("body missing %q", name)
		}
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.serve(ctx, ln, nil) }()

	url := "http://" + ln.Addr().String() + "/metrics"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "load_pulse_ticks_total") {
		t.Errorf("unexpected body: %s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_BadAddr(t *testing.T) {
	if err := New().Serve(context.Background(), "not-an-address", nil); err == nil {
		t.Error("expected listen error")
	}
}
