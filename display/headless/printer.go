// Package headless prints one line per tick for running load-pulse without
// the full-screen dashboard, e.g. over a pipe or in a CI log.
package headless

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/x/term"

	"gitlab.com/tinyland/lab/load-pulse/display/widgets"
	"gitlab.com/tinyland/lab/load-pulse/feed"
	"gitlab.com/tinyland/lab/load-pulse/series"
)

// DetectWidth returns the width of the terminal behind fd. It falls back to
// the COLUMNS environment variable, then to 80.
func DetectWidth(fd uintptr) int {
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// lineOverhead is everything on a line but the two sparklines:
// "15:04:05.000" "  proc " " 100%" "  sys  " " 100%".
const lineOverhead = 12 + 7 + 5 + 7 + 5

const minSparkWidth = 4

// Printer is a feed.Observer that writes a timestamped pair of sparklines
// for every applied reading. It keeps its own trailing window as wide as
// the sparklines, and treats unreadable metrics the way the feed does.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	policy  feed.Policy
	process *series.Series
	system  *series.Series
	err     error
}

// NewPrinter creates a Printer whose lines fit in width columns. Under
// feed.PolicySkip an unreadable metric adds nothing to its sparkline;
// otherwise it adds a gap.
func NewPrinter(w io.Writer, width int, policy feed.Policy) *Printer {
	spark := SparkWidth(width)
	return &Printer{
		w:       w,
		policy:  policy,
		process: series.New(feed.ProcessSeriesName, spark),
		system:  series.New(feed.SystemSeriesName, spark),
	}
}

// SparkWidth returns the per-series sparkline width for a line width.
func SparkWidth(width int) int {
	return max((width-lineOverhead)/2, minSparkWidth)
}

// Observe appends r to the trailing window and prints a line. After the
// first write error nothing more is written; Err reports it.
func (p *Printer) Observe(r feed.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.appendValue(p.process, r.Label, r.Process, r.ProcessErr)
	p.appendValue(p.system, r.Label, r.System, r.SystemErr)

	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintln(p.w, p.line(r.Label)); err != nil {
		p.err = err
	}
}

func (p *Printer) line(label string) string {
	width := p.process.Capacity()
	proc := widgets.RenderPercentSparkline("proc", pad(p.process.Values(), width), width, "")
	sys := widgets.RenderPercentSparkline("sys ", pad(p.system.Values(), width), width, "")
	return strings.Join([]string{label, proc, sys}, "  ")
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Printer) appendValue(s *series.Series, label string, v float64, err error) {
	if err != nil {
		if p.policy == feed.PolicySkip {
			return
		}
		v = math.NaN()
	}
	s.Append(series.Point{Label: label, Value: v})
}

// pad left-fills values with NaN so the sparkline keeps a fixed width.
func pad(values []float64, width int) []float64 {
	if len(values) >= width {
		return values
	}
	out := make([]float64, width-len(values), width)
	for i := range out {
		out[i] = math.NaN()
	}
	return append(out, values...)
}
