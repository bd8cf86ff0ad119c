package cpuload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
)

// GopsutilProvider reads CPU load through gopsutil. Both metrics are
// computed against the previous call, so the first reading after
// construction covers the time since the provider was created.
type GopsutilProvider struct {
	logger *slog.Logger
	numCPU int

	// Replaced in tests.
	systemPercent  func(interval time.Duration, percpu bool) ([]float64, error)
	processPercent func(interval time.Duration) (float64, error)
}

// NewGopsutilProvider creates a provider for the current process.
// If logger is nil, a no-op logger is used.
func NewGopsutilProvider(logger *slog.Logger) (*GopsutilProvider, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("cpuload: open current process: %w", gopsutilErr("new process", err))
	}

	// Seed the process counters so the next call measures a real interval.
	if _, err := proc.Percent(0); err != nil {
		logger.Debug("gopsutil process percent seed failed", "error", err)
	}

	return &GopsutilProvider{
		logger:         logger,
		numCPU:         runtime.NumCPU(),
		systemPercent:  cpu.Percent,
		processPercent: proc.Percent,
	}, nil
}

// SystemLoad returns the machine-wide busy fraction since the previous call.
func (p *GopsutilProvider) SystemLoad() (float64, error) {
	pcts, err := p.systemPercent(0, false)
	if err != nil {
		return 0, gopsutilErr("cpu percent", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("cpuload: gopsutil returned no cpu totals: %w", collectors.ErrMetricUnavailable)
	}
	return clampFraction(pcts[0] / 100), nil
}

// ProcessLoad returns this process's share of all CPUs since the previous
// call. gopsutil reports a percentage of one core, so it is divided by the
// CPU count.
func (p *GopsutilProvider) ProcessLoad() (float64, error) {
	pct, err := p.processPercent(0)
	if err != nil {
		return 0, gopsutilErr("process percent", err)
	}
	n := p.numCPU
	if n <= 0 {
		n = 1
	}
	return clampFraction(pct / 100 / float64(n)), nil
}

// notImplemented is the text of gopsutil's error for calls a platform does
// not support. The error value lives in one of its internal packages.
const notImplemented = "not implemented yet"

// gopsutilErr marks platform gaps as collectors.ErrMetricUnavailable so the
// feed treats them like a missing /proc file. Other errors pass through.
func gopsutilErr(op string, err error) error {
	if !strings.Contains(err.Error(), notImplemented) {
		return err
	}
	return fmt.Errorf("cpuload: gopsutil %s: %w: %w", op, collectors.ErrMetricUnavailable, err)
}

// Fallback asks Primary first and falls back to Secondary when Primary
// cannot serve a reading. If both fail, the Primary error is returned unless
// it was plain unavailability and Secondary has a more specific error.
type Fallback struct {
	Primary   collectors.LoadProvider
	Secondary collectors.LoadProvider
}

// ProcessLoad implements collectors.LoadProvider.
func (f Fallback) ProcessLoad() (float64, error) {
	if f.Secondary == nil {
		return f.Primary.ProcessLoad()
	}
	return fallback(f.Primary.ProcessLoad, f.Secondary.ProcessLoad)
}

// SystemLoad implements collectors.LoadProvider.
func (f Fallback) SystemLoad() (float64, error) {
	if f.Secondary == nil {
		return f.Primary.SystemLoad()
	}
	return fallback(f.Primary.SystemLoad, f.Secondary.SystemLoad)
}

func fallback(primary, secondary func() (float64, error)) (float64, error) {
	v, err := primary()
	if err == nil {
		return v, nil
	}

	v2, err2 := secondary()
	if err2 == nil {
		return v2, nil
	}
	if collectors.IsUnavailable(err) && !collectors.IsUnavailable(err2) {
		return 0, err2
	}
	return 0, err
}

var (
	_ collectors.LoadProvider = (*GopsutilProvider)(nil)
	_ collectors.LoadProvider = Fallback{}
)
