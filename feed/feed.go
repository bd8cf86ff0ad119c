// Package feed implements the periodic sampling loop behind the load-pulse
// chart. Each tick reads a process and a system CPU load, labels them with
// the time of day, and appends one point to each of two bounded series.
//
// Reading the provider (Sample) is separated from mutating the series
// (Apply) so the read may happen off the event loop while every mutation
// stays serialized on it.
package feed

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
	"gitlab.com/tinyland/lab/load-pulse/series"
)

const (
	// DefaultPeriod is the tick interval.
	DefaultPeriod = 100 * time.Millisecond

	// ProcessSeriesName and SystemSeriesName name the two traces.
	ProcessSeriesName = "Processor load (Process)"
	SystemSeriesName  = "Processor load (System)"

	// LabelLayout formats the time-of-day part of a timestamp.
	LabelLayout = "15:04:05.000"
)

// Policy decides what a tick appends when a metric cannot be read.
type Policy string

const (
	// PolicyGap appends NaN so both series keep identical labels and the
	// renderer draws a gap.
	PolicyGap Policy = "gap"

	// PolicySkip appends nothing to the affected series for that tick.
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a config string into a Policy. Empty means PolicyGap.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyGap:
		return PolicyGap, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("feed: unknown policy %q (want gap or skip)", s)
	}
}

// State is the feed lifecycle state.
type State int

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// Reading is the result of one Sample: a label and two percentages in
// [0,100]. A value is NaN when the matching Err is set.
type Reading struct {
	Time       time.Time
	Label      string
	Process    float64
	System     float64
	ProcessErr error
	SystemErr  error
}

// Observer is notified after each applied reading.
type Observer interface {
	Observe(Reading)
}

// Observers fans a reading out to several observers in order.
type Observers []Observer

func (o Observers) Observe(r Reading) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(r)
		}
	}
}

// Config configures a Feed.
type Config struct {
	// Provider supplies the CPU load readings. Required.
	Provider collectors.LoadProvider

	// Clock supplies label timestamps. Defaults to collectors.SystemClock.
	Clock collectors.Clock

	// Capacity bounds each series. <= 0 selects series.DefaultCapacity.
	Capacity int

	// Policy handles unreadable metrics. Defaults to PolicyGap.
	Policy Policy

	// Observer, if set, sees every applied reading.
	Observer Observer

	// Logger receives metric warnings. nil discards.
	Logger *slog.Logger
}

// Feed owns the process and system series.
type Feed struct {
	provider collectors.LoadProvider
	clock    collectors.Clock
	policy   Policy
	observer Observer
	logger   *slog.Logger

	process *series.Series
	system  *series.Series

	state State
	ticks uint64
}

// New creates a running Feed with two empty series.
func New(cfg Config) (*Feed, error) {
	if cfg.Provider == nil {
		return nil, errors.New("feed: provider is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = collectors.SystemClock{}
	}
	policy, err := ParsePolicy(string(cfg.Policy))
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Feed{
		provider: cfg.Provider,
		clock:    cfg.Clock,
		policy:   policy,
		observer: cfg.Observer,
		logger:   logger,
		process:  series.New(ProcessSeriesName, cfg.Capacity),
		system:   series.New(SystemSeriesName, cfg.Capacity),
		state:    StateRunning,
	}, nil
}

// Label formats t as HH:MM:SS.mmm.
func Label(t time.Time) string {
	return t.Format(LabelLayout)
}

// Sample reads both metrics and builds a Reading. It does not touch the
// series. MetricErrors are logged here; unavailability is logged at Debug.
func (f *Feed) Sample() Reading {
	now := f.clock.Now()
	r := Reading{Time: now, Label: Label(now)}
	r.Process, r.ProcessErr = f.read(collectors.MetricProcess, f.provider.ProcessLoad)
	r.System, r.SystemErr = f.read(collectors.MetricSystem, f.provider.SystemLoad)
	return r
}

func (f *Feed) read(metric string, load func() (float64, error)) (float64, error) {
	raw, rawErr := load()
	v, err := collectors.Classify(metric, raw, rawErr)
	if err != nil {
		if collectors.IsUnavailable(err) {
			f.logger.Debug("metric unavailable", "metric", metric, "error", err)
		} else {
			f.logger.Warn("metric read failed", "metric", metric, "error", err)
		}
		return math.NaN(), err
	}
	return toPercent(v), nil
}

// toPercent scales a fraction to 0-100, clamping out-of-range input.
func toPercent(v float64) float64 {
	pct := v * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Apply appends r to both series and evicts past capacity. It is the only
// mutation point. It returns false and does nothing once the feed is stopped.
func (f *Feed) Apply(r Reading) bool {
	if f.state == StateStopped {
		return false
	}

	f.appendTo(f.process, r.Label, r.Process, r.ProcessErr)
	f.appendTo(f.system, r.Label, r.System, r.SystemErr)
	f.ticks++

	if f.observer != nil {
		f.observer.Observe(r)
	}
	return true
}

func (f *Feed) appendTo(s *series.Series, label string, v float64, err error) {
	if err != nil {
		if f.policy == PolicySkip {
			return
		}
		v = math.NaN()
	}
	s.Append(series.Point{Label: label, Value: v})
}

// Tick samples and applies in one step. It returns false once stopped.
func (f *Feed) Tick() bool {
	if f.state == StateStopped {
		return false
	}
	return f.Apply(f.Sample())
}

// Stop moves the feed to StateStopped. There is no resume.
func (f *Feed) Stop() {
	if f.state == StateStopped {
		return
	}
	f.state = StateStopped
	f.logger.Debug("feed stopped", "ticks", f.ticks)
}

// State returns the lifecycle state.
func (f *Feed) State() State { return f.state }

// Ticks returns how many readings have been applied.
func (f *Feed) Ticks() uint64 { return f.ticks }

// Capacity returns the per-series capacity.
func (f *Feed) Capacity() int { return f.process.Capacity() }

// Snapshots returns copies of the process and system series, in that order.
func (f *Feed) Snapshots() []series.Snapshot {
	return []series.Snapshot{f.process.Snapshot(), f.system.Snapshot()}
}
