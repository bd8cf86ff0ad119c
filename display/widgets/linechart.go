// Package widgets renders the load-pulse chart primitives: a multi-series
// line chart, sparklines, and gauges. Renderers take plain value slices and
// never reach back into the sampling state.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
)

// ChartSeries is one trace of a line chart.
type ChartSeries struct {
	Name   string
	Values []float64 // oldest first; NaN leaves a gap
	Color  lipgloss.Color
}

// LineChartConfig controls RenderLineChart.
type LineChartConfig struct {
	Title  string
	Series []ChartSeries
	// Labels are x labels for the longest series, oldest first.
	Labels []string
	// Width and Height bound the whole rendering, axes and legend included.
	Width  int
	Height int
	// Min and Max fix the y range. If Min == Max, 0-100 is used.
	Min    float64
	Max    float64
	YLabel string
	XLabel string
}

const (
	yGutter       = 5 // "100 ┤"
	chartOverhead = 3 // x axis, x labels, legend
	minPlotWidth  = 8
	minPlotHeight = 3
)

// ChartFits reports whether a chart of the given size has room to draw.
func ChartFits(width, height int, title bool) bool {
	overhead := chartOverhead
	if title {
		overhead++
	}
	return width-yGutter >= minPlotWidth && height-overhead >= minPlotHeight
}

// RenderLineChart draws every series on a shared y axis. Traces are plotted
// on braille canvases, one point per horizontal step, with the newest point
// at the right edge; older points scroll off the left when the plot is
// narrower than the data. It returns "" when the size is too small, so
// callers can fall back to sparklines.
func RenderLineChart(cfg LineChartConfig) string {
	if !ChartFits(cfg.Width, cfg.Height, cfg.Title != "") {
		return ""
	}

	lo, hi := cfg.Min, cfg.Max
	if lo == hi {
		lo, hi = 0, 100
	}

	plotW := cfg.Width - yGutter
	plotH := cfg.Height - chartOverhead
	if cfg.Title != "" {
		plotH--
	}
	dotsW := plotW * 2

	points := 0
	for _, s := range cfg.Series {
		points = max(points, min(len(s.Values), dotsW))
	}
	ndp, step := fitScale(dotsW, points)

	grids := make([]dotGrid, len(cfg.Series))
	for i, s := range cfg.Series {
		grids[i] = plotSeries(tail(s.Values, points), lo, hi, plotW, plotH, ndp, step)
	}

	styles := make([]lipgloss.Style, len(cfg.Series))
	for i, s := range cfg.Series {
		styles[i] = lipgloss.NewStyle().Foreground(s.Color)
	}
	axisStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	tickRows := yTicks(lo, hi, plotH)

	var lines []string
	if cfg.Title != "" {
		title := cfg.Title
		if cfg.YLabel != "" {
			title += "  (" + cfg.YLabel + ")"
		}
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(truncate(title, cfg.Width)))
	}

	for y := 0; y < plotH; y++ {
		row := plotH - 1 - y
		var sb strings.Builder
		if label, ok := tickRows[row]; ok {
			sb.WriteString(axisStyle.Render(fmt.Sprintf("%3s ┤", label)))
		} else {
			sb.WriteString(axisStyle.Render("    │"))
		}
		sb.WriteString(mergeRow(grids, styles, y, plotW))
		lines = append(lines, sb.String())
	}

	labelOffset := (dotsW - points*step) / 2
	lines = append(lines, axisStyle.Render("    └"+strings.Repeat("─", plotW)))
	lines = append(lines, xLabelLine(tail(cfg.Labels, points), plotW, labelOffset, cfg.XLabel))
	lines = append(lines, legendLine(cfg.Series, styles, cfg.Width))

	return strings.Join(lines, "\n")
}

// fitScale picks the canvas NumDataPoints for n points over dots braille
// columns and returns it with the resulting horizontal step in dots. The
// canvas step is dots/NumDataPoints+1, so the smallest NumDataPoints whose
// step still fits n steps in the plot is chosen.
func fitScale(dots, n int) (ndp, step int) {
	if n <= 0 {
		return 0, 1
	}
	target := max(dots/n, 1)
	for ndp = n + 1; ndp <= dots+1; ndp++ {
		if step = dots/ndp + 1; step <= target {
			return ndp, step
		}
	}
	return dots + 1, 1
}

// dotGrid is a plot area in braille dots, [row][column].
type dotGrid [][]bool

// plotSeries draws values on a drawille canvas and returns its dots,
// right-aligned in the plot. Point j owns the columns of the segment that
// starts at it, so a NaN point clears its own segment and the trace breaks.
func plotSeries(values []float64, lo, hi float64, plotW, plotH, ndp, step int) dotGrid {
	grid := newDotGrid(plotW, plotH)
	held, ok := holdGaps(values, lo, hi)
	if !ok {
		return grid
	}

	// One extra point gives the newest value a segment of its own.
	line := append(held, held[len(held)-1])

	canvas := plot.NewCanvas(plotW, plotH)
	canvas.ShowAxis = false
	canvas.NumDataPoints = ndp
	// The single-point series draw nothing but pin the range to lo..hi.
	canvas.Fill([][]float64{line, {lo}, {hi}})

	drawn := decodeBraille(canvas.String(), plotW, plotH)
	offset := plotW*2 - len(values)*step
	for j, v := range values {
		if !math.IsNaN(v) {
			continue
		}
		for x := j * step; x < (j+1)*step; x++ {
			drawn.clearColumn(x)
		}
	}
	for y := range drawn {
		for x, on := range drawn[y] {
			if on && x+offset < len(grid[y]) {
				grid[y][x+offset] = true
			}
		}
	}
	return grid
}

// holdGaps clamps values to lo..hi and replaces NaN with the previous value
// (or the first valid one) so the canvas always sees finite numbers. It
// reports false when nothing is valid.
func holdGaps(values []float64, lo, hi float64) ([]float64, bool) {
	first := math.NaN()
	for _, v := range values {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	if math.IsNaN(first) {
		return nil, false
	}

	out := make([]float64, len(values))
	last := first
	for i, v := range values {
		if !math.IsNaN(v) {
			last = math.Max(lo, math.Min(hi, v))
		}
		out[i] = last
	}
	return out, true
}

func newDotGrid(cols, rows int) dotGrid {
	g := make(dotGrid, rows*4)
	for y := range g {
		g[y] = make([]bool, cols*2)
	}
	return g
}

func (g dotGrid) clearColumn(x int) {
	for y := range g {
		if x >= 0 && x < len(g[y]) {
			g[y][x] = false
		}
	}
}

// decodeBraille turns uncolored canvas output back into dots.
func decodeBraille(s string, cols, rows int) dotGrid {
	g := newDotGrid(cols, rows)
	for row, line := range strings.Split(s, "\n") {
		if row >= rows {
			break
		}
		for col, r := range []rune(line) {
			if col >= cols || r < plot.BRAILLE_OFFSET || r > plot.BRAILLE_OFFSET+0xFF {
				continue
			}
			bits := r - plot.BRAILLE_OFFSET
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if bits&plot.BRAILLE[dy][dx] != 0 {
						g[row*4+dy][col*2+dx] = true
					}
				}
			}
		}
	}
	return g
}

// mergeRow encodes one character row of every grid. A cell shared by
// several series takes the color of the last one drawn into it.
func mergeRow(grids []dotGrid, styles []lipgloss.Style, row, cols int) string {
	var sb, run strings.Builder
	runSeries := -1
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runSeries >= 0 {
			sb.WriteString(styles[runSeries].Render(run.String()))
		} else {
			sb.WriteString(run.String())
		}
		run.Reset()
	}

	for col := 0; col < cols; col++ {
		var bits rune
		owner := -1
		for si, g := range grids {
			var own rune
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if g[row*4+dy][col*2+dx] {
						own |= plot.BRAILLE[dy][dx]
					}
				}
			}
			if own != 0 {
				bits |= own
				owner = si
			}
		}
		if owner != runSeries {
			flush()
			runSeries = owner
		}
		if owner < 0 {
			run.WriteRune(' ')
		} else {
			run.WriteRune(plot.BRAILLE_OFFSET + bits)
		}
	}
	flush()
	return sb.String()
}

// valueRow maps v to a character row, 0 at the bottom, the way the canvas
// places points.
func valueRow(v, lo, hi float64, rows int) int {
	n := (v - lo) / (hi - lo)
	n = math.Max(0, math.Min(1, n))
	return int(math.Floor(n*float64(rows-1) + 1e-9))
}

// yTicks picks axis labels every 10 or 20 percent of the range, depending on
// how many rows are available.
func yTicks(lo, hi float64, rows int) map[int]string {
	step := (hi - lo) / 10
	if rows < 11 {
		step = (hi - lo) / 5
	}
	ticks := map[int]string{
		0:        fmt.Sprintf("%.0f", lo),
		rows - 1: fmt.Sprintf("%.0f", hi),
	}
	for v := lo + step; v < hi-step/2; v += step {
		row := valueRow(v, lo, hi, rows)
		if _, taken := ticks[row]; !taken {
			ticks[row] = fmt.Sprintf("%.0f", v)
		}
	}
	return ticks
}

// xLabelLine places the oldest visible label where the traces start and the
// newest at the right, with the axis name centered between them when it
// fits.
func xLabelLine(labels []string, plotW, offset int, name string) string {
	pad := strings.Repeat(" ", yGutter)
	if len(labels) == 0 {
		return pad + centered(name, plotW)
	}

	first, last := labels[0], labels[len(labels)-1]
	offset = min(max(offset, 0), plotW)
	if len(labels) == 1 || lipgloss.Width(first)+lipgloss.Width(last)+1 > plotW-offset {
		return pad + strings.Repeat(" ", max(0, plotW-lipgloss.Width(last))) + truncate(last, plotW)
	}

	gap := plotW - offset - lipgloss.Width(first) - lipgloss.Width(last)
	middle := strings.Repeat(" ", gap)
	if name != "" && lipgloss.Width(name)+2 <= gap {
		middle = centered(name, gap)
	}
	return pad + strings.Repeat(" ", offset) + first + middle + last
}

func legendLine(series []ChartSeries, styles []lipgloss.Style, width int) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		parts = append(parts, styles[i].Render("●")+" "+s.Name)
	}
	return truncateStyled(strings.Repeat(" ", yGutter)+strings.Join(parts, "   "), width)
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func centered(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}

// truncateStyled clips a styled line to width cells.
func truncateStyled(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
