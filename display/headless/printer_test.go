package headless

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
	"gitlab.com/tinyland/lab/load-pulse/display/color"
	"gitlab.com/tinyland/lab/load-pulse/feed"
)

func TestMain(m *testing.M) {
	color.ForceDisable()
	os.Exit(m.Run())
}

func TestSparkWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{80, (80 - lineOverhead) / 2},
		{120, (120 - lineOverhead) / 2},
		{20, minSparkWidth},
		{0, minSparkWidth},
	}
	for _, tt := range tests {
		if got := SparkWidth(tt.width); got != tt.want {
			t.Errorf("SparkWidth(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestPrinter_OneLinePerReading(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, 80, feed.PolicyGap)

	p.Observe(feed.Reading{Label: "09:04:07.250", Process: 10, System: 50})
	p.Observe(feed.Reading{Label: "09:04:07.350", Process: 20, System: 60})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "09:04:07.350  proc ") {
		t.Errorf("unexpected line: %q", lines[1])
	}
	if !strings.Contains(lines[1], " 20%") || !strings.Contains(lines[1], " 60%") {
		t.Errorf("line missing newest values: %q", lines[1])
	}
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > 80 {
			t.Errorf("line is %d runes, wider than 80: %q", n, l)
		}
	}
	if utf8.RuneCountInString(lines[0]) != utf8.RuneCountInString(lines[1]) {
		t.Error("expected fixed-width lines")
	}
}

func TestPrinter_UnavailableMetric(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, 80, feed.PolicyGap)
	p.Observe(feed.Reading{Label: "09:04:07.250", Process: 5, SystemErr: collectors.ErrMetricUnavailable})

	if !strings.Contains(buf.String(), "n/a") {
		t.Errorf("expected n/a for the unavailable metric: %q", buf.String())
	}
}

func TestPrinter_Policy(t *testing.T) {
	tests := []struct {
		name       string
		policy     feed.Policy
		wantLen    int
		wantSystem string
	}{
		{name: "gap", policy: feed.PolicyGap, wantLen: 2, wantSystem: "n/a"},
		{name: "skip", policy: feed.PolicySkip, wantLen: 1, wantSystem: " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf, 80, tt.policy)
			p.Observe(feed.Reading{Label: "09:04:07.250", Process: 10, System: 50})
			p.Observe(feed.Reading{Label: "09:04:07.350", Process: 20, SystemErr: collectors.ErrMetricUnavailable})

			if got := p.system.Len(); got != tt.wantLen {
				t.Errorf("system points = %d, want %d", got, tt.wantLen)
			}
			if got := p.process.Len(); got != 2 {
				t.Errorf("process points = %d, want 2", got)
			}
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			if last := lines[len(lines)-1]; !strings.HasSuffix(last, tt.wantSystem) {
				t.Errorf("last line = %q, want system column %q", last, tt.wantSystem)
			}
		})
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestPrinter_StopsAfterWriteError(t *testing.T) {
	w := &failingWriter{}
	p := NewPrinter(w, 80, feed.PolicyGap)
	p.Observe(feed.Reading{Label: "a"})
	p.Observe(feed.Reading{Label: "b"})

	if p.Err() == nil {
		t.Error("expected write error")
	}
	if w.calls != 1 {
		t.Errorf("writer called %d times, want 1", w.calls)
	}
}

func TestPad(t *testing.T) {
	got := pad([]float64{1, 2}, 4)
	if len(got) != 4 || got[2] != 1 || got[3] != 2 {
		t.Errorf("pad = %v", got)
	}
	if got := pad([]float64{1, 2, 3}, 2); len(got) != 3 {
		t.Errorf("pad must not trim, got %v", got)
	}
}

func TestDetectWidth_Env(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	// A pipe is never a terminal, so the env fallback applies.
	r, w, err := os.Pipe()
	if err != nil {
		t.Skip(err)
	}
	defer r.Close()
	defer w.Close()

	if got := DetectWidth(w.Fd()); got != 132 {
		t.Errorf("DetectWidth = %d, want 132", got)
	}

	t.Setenv("COLUMNS", "bogus")
	if got := DetectWidth(w.Fd()); got != 80 {
		t.Errorf("DetectWidth = %d, want 80", got)
	}
}
