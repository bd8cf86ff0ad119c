// Package cpuload provides concrete collectors.LoadProvider implementations
// for load-pulse: a gopsutil-backed provider and a /proc reader used as a
// fallback on Linux hosts where gopsutil cannot report a metric.
package cpuload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
)

// ProcStatProvider computes CPU load from /proc/stat and /proc/self/stat
// using the delta between consecutive readings. The first reading of each
// metric seeds the counters and returns 0.
type ProcStatProvider struct {
	logger *slog.Logger

	mu sync.Mutex

	// prevIdle and prevTotal track the last system sample.
	prevIdle  uint64
	prevTotal uint64

	// procPrevTicks and procPrevTotal track the last process sample.
	// procPrevTotal is the aggregate jiffy count across all CPUs, so the
	// process fraction is already normalized by CPU count.
	procPrevTicks uint64
	procPrevTotal uint64

	// Overridable file openers for testing.
	openProcStat     func() (io.ReadCloser, error)
	openProcSelfStat func() (io.ReadCloser, error)
}

// NewProcStatProvider creates a ProcStatProvider.
// If logger is nil, a no-op logger is used.
func NewProcStatProvider(logger *slog.Logger) *ProcStatProvider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProcStatProvider{
		logger: logger,
		openProcStat: func() (io.ReadCloser, error) {
			return os.Open("/proc/stat")
		},
		openProcSelfStat: func() (io.ReadCloser, error) {
			return os.Open("/proc/self/stat")
		},
	}
}

// SystemLoad returns the machine-wide busy fraction since the previous call.
func (p *ProcStatProvider) SystemLoad() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle, total, err := p.readCPULine()
	if err != nil {
		return 0, err
	}

	if p.prevTotal == 0 {
		p.prevIdle = idle
		p.prevTotal = total
		return 0, nil
	}

	deltaTotal := total - p.prevTotal
	deltaIdle := idle - p.prevIdle
	p.prevIdle = idle
	p.prevTotal = total

	if deltaTotal == 0 {
		return 0, nil
	}
	return clampFraction(1.0 - float64(deltaIdle)/float64(deltaTotal)), nil
}

// ProcessLoad returns the share of all CPU time spent in this process since
// the previous call.
func (p *ProcStatProvider) ProcessLoad() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ticks, err := p.readSelfTicks()
	if err != nil {
		return 0, err
	}
	_, total, err := p.readCPULine()
	if err != nil {
		return 0, err
	}

	if p.procPrevTotal == 0 {
		p.procPrevTicks = ticks
		p.procPrevTotal = total
		return 0, nil
	}

	deltaTotal := total - p.procPrevTotal
	deltaTicks := ticks - p.procPrevTicks
	p.procPrevTicks = ticks
	p.procPrevTotal = total

	if deltaTotal == 0 {
		return 0, nil
	}
	return clampFraction(float64(deltaTicks) / float64(deltaTotal)), nil
}

// readCPULine parses the aggregate "cpu " line of /proc/stat.
// Fields: cpu user nice system idle iowait irq softirq steal ...
func (p *ProcStatProvider) readCPULine() (idle, total uint64, err error) {
	f, err := p.openProcStat()
	if err != nil {
		return 0, 0, openError("/proc/stat", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, 0, errors.New("cpuload: /proc/stat cpu line too short")
		}

		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("cpuload: parse /proc/stat field %d: %w", i, err)
			}
			total += val
			if i == 4 {
				idle = val
			}
		}
		return idle, total, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("cpuload: read /proc/stat: %w", err)
	}
	return 0, 0, errors.New("cpuload: cpu line not found in /proc/stat")
}

// readSelfTicks returns utime+stime from /proc/self/stat.
// The command name is parenthesized and may contain spaces, so fields are
// counted from the last ')'.
func (p *ProcStatProvider) readSelfTicks() (uint64, error) {
	f, err := p.openProcSelfStat()
	if err != nil {
		return 0, openError("/proc/self/stat", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("cpuload: read /proc/self/stat: %w", err)
	}

	line := string(raw)
	end := strings.LastIndexByte(line, ')')
	if end < 0 {
		return 0, errors.New("cpuload: /proc/self/stat missing command field")
	}

	// After ')' the first field is state (field 3); utime and stime are
	// fields 14 and 15.
	fields := strings.Fields(line[end+1:])
	const utimeIdx, stimeIdx = 14 - 3, 15 - 3
	if len(fields) <= stimeIdx {
		return 0, errors.New("cpuload: /proc/self/stat too few fields")
	}

	utime, err := strconv.ParseUint(fields[utimeIdx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cpuload: parse utime: %w", err)
	}
	stime, err := strconv.ParseUint(fields[stimeIdx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cpuload: parse stime: %w", err)
	}
	return utime + stime, nil
}

// openError maps a missing /proc file to ErrMetricUnavailable.
func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cpuload: %s: %w", path, collectors.ErrMetricUnavailable)
	}
	return fmt.Errorf("cpuload: open %s: %w", path, err)
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Compile-time interface compliance check.
var _ collectors.LoadProvider = (*ProcStatProvider)(nil)
