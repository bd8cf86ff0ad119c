// Package tui is the interactive load-pulse dashboard: a text viewer pane
// that accepts pasted or dropped content above a live CPU load chart.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/load-pulse/display/widgets"
	"gitlab.com/tinyland/lab/load-pulse/feed"
	"gitlab.com/tinyland/lab/load-pulse/internal/format"
	"gitlab.com/tinyland/lab/load-pulse/series"
	"gitlab.com/tinyland/lab/load-pulse/viewer"
)

// Pane identifies which pane has focus.
type Pane int

const (
	PaneViewer Pane = iota
	PaneChart
	paneCount // sentinel for wrapping
)

// flash is the transient drop highlight on the viewer border.
type flash int

const (
	flashNone flash = iota
	flashAccepted
	flashRejected
)

// flashDuration is how long a drop result colors the viewer border.
const flashDuration = 1500 * time.Millisecond

// tickMsg asks for the next sample.
type tickMsg time.Time

// readingMsg carries a sample taken off the event loop.
type readingMsg feed.Reading

// flashDoneMsg clears the drop highlight set by the drop numbered seq.
type flashDoneMsg struct{ seq int }

// Options configures the dashboard.
type Options struct {
	// Feed owns the two series. Required.
	Feed *feed.Feed
	// Viewer handles drops. Required.
	Viewer *viewer.Viewer
	// Interval between samples. <= 0 selects feed.DefaultPeriod.
	Interval time.Duration
	// Title is drawn above the chart.
	Title string
	// ChartHeight fixes the chart pane rows. 0 splits evenly.
	ChartHeight int
	// Files are loaded into the viewer at startup.
	Files []string
	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string
	Logger   *slog.Logger
}

// Model is the top-level Bubbletea model for the load-pulse TUI.
type Model struct {
	feed        *feed.Feed
	viewer      *viewer.Viewer
	interval    time.Duration
	title       string
	chartHeight int
	logger      *slog.Logger

	viewport viewport.Model
	help     help.Model
	picker   filepicker.Model
	picking  bool
	startDir string

	text     string
	status   string
	flash    flash
	flashSeq int
	focus    Pane

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel returns an initialized Model with the viewer focused. Files named
// in opts are loaded right away.
func NewModel(opts Options) Model {
	interval := opts.Interval
	if interval <= 0 {
		interval = feed.DefaultPeriod
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := Model{
		feed:        opts.Feed,
		viewer:      opts.Viewer,
		interval:    interval,
		title:       opts.Title,
		chartHeight: opts.ChartHeight,
		logger:      logger,
		viewport:    viewport.New(0, 0),
		help:        help.New(),
		focus:       PaneViewer,
		status:      "paste text or drop files into the viewer",
		startDir:    opts.StartDir,
	}
	if m.startDir == "" {
		m.startDir = "."
	}

	if len(opts.Files) > 0 {
		m.apply(m.viewer.Open(opts.Files))
	}
	return m
}

// Init implements tea.Model. It starts the sampling cycle.
func (m Model) Init() tea.Cmd {
	if m.flash != flashNone {
		return tea.Batch(tickCmd(m.interval), flashCmd(m.flashSeq))
	}
	return tickCmd(m.interval)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// sampleCmd reads the provider off the event loop. The series are only
// touched when the resulting readingMsg reaches Update.
func sampleCmd(f *feed.Feed) tea.Cmd {
	return func() tea.Msg { return readingMsg(f.Sample()) }
}

func flashCmd(seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		if m.feed.State() == feed.StateStopped {
			return m, nil
		}
		return m, sampleCmd(m.feed)

	case readingMsg:
		// A sample in flight when the feed stopped is dropped here.
		if !m.feed.Apply(feed.Reading(msg)) {
			return m, nil
		}
		return m, tickCmd(m.interval)

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = flashNone
		}
		return m, nil
	}

	// Directory listings arrive as the picker's own messages.
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes pastes to the viewer, then global keys, then scrolling.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		m.picking = false
		cmd := m.apply(m.viewer.Drop(string(msg.Runes)))
		return m, cmd
	}
	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.Open):
		cmd := m.openPicker()
		return m, cmd

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, keys.Focus):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, keys.Clear):
		m.text = ""
		m.setContent()
		m.status = "cleared"
		return m, nil
	}

	if m.focus != PaneViewer {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.GoTop):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, keys.GoBottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handlePickerKey drives the open file picker. ctrl+c still quits; the
// chosen file goes through the same path as a file named on the command
// line.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.quit()
	case key.Matches(msg, keys.Cancel):
		m.picking = false
		m.status = "open cancelled"
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	ok, path := m.picker.DidSelectFile(msg)
	if !ok {
		// Rejected by Open with the accepted extensions in the status.
		ok, path = m.picker.DidSelectDisabledFile(msg)
	}
	if !ok {
		return m, cmd
	}
	m.picking = false
	m.startDir = m.picker.CurrentDirectory
	m.logger.Debug("picked file", "path", path)
	flashDone := m.apply(m.viewer.Open([]string{path}))
	return m, tea.Batch(cmd, flashDone)
}

// openPicker shows a file picker in the viewer pane limited to the accepted
// extensions.
func (m *Model) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.CurrentDirectory = m.startDir
	fp.AllowedTypes = pickerTypes(m.viewer.Matcher().Extensions())
	fp.AutoHeight = false
	fp.ShowPermissions = false
	// esc closes the picker instead of going up a directory.
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))

	m.picker = fp
	m.picking = true
	m.status = "open: enter selects, h goes up, esc cancels"
	m.resize()
	return m.picker.Init()
}

func pickerTypes(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = "." + e
	}
	return out
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.feed.Stop()
	m.quitting = true
	return m, tea.Quit
}

// apply records a drop outcome and returns the command that ends its
// border highlight.
func (m *Model) apply(o viewer.Outcome) tea.Cmd {
	m.status = o.Status
	if o.Replace {
		m.text = o.Text
		m.setContent()
		m.viewport.GotoTop()
	}

	m.flash = flashRejected
	if o.Accepted {
		m.flash = flashAccepted
	}
	m.flashSeq++
	m.logger.Debug("drop handled", "accepted", o.Accepted, "status", o.Status)
	return flashCmd(m.flashSeq)
}

func (m *Model) setContent() {
	m.viewport.SetContent(strings.ReplaceAll(m.text, "\t", "    "))
}

// resize recomputes the viewport size from the terminal and footer.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	panes := splitPanes(m.height, lipgloss.Height(m.help.View(keys)), m.chartHeight)
	m.viewport.Width = inner(m.width)
	m.viewport.Height = max(inner(panes.viewerHeight)-1, 0) // title row
	m.setContent()
	if m.picking {
		m.picker.SetHeight(max(m.viewport.Height-1, 1))
	}
}

// View implements tea.Model. It stacks the viewer, the chart, the status
// bar and the help footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	footer := styleFooter.Render(m.help.View(keys))
	panes := splitPanes(m.height, lipgloss.Height(footer), m.chartHeight)

	parts := []string{m.renderViewer(panes.viewerHeight)}
	if panes.chartHeight > 0 {
		parts = append(parts, m.renderChart(panes.chartHeight))
	}
	parts = append(parts, m.renderStatus(), footer)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderPane(content string, outerHeight int, color lipgloss.Color) string {
	return stylePane.
		BorderForeground(color).
		Width(inner(m.width)).
		Height(inner(outerHeight)).
		MaxHeight(outerHeight).
		Render(content)
}

func (m Model) renderViewer(outerHeight int) string {
	if outerHeight < minPaneOuter {
		return ""
	}

	if m.picking {
		header := styleTitle.Render("Open") + styleStatus.Render("  "+m.picker.CurrentDirectory)
		header = lipgloss.NewStyle().MaxWidth(inner(m.width)).Render(header)
		content := lipgloss.JoinVertical(lipgloss.Left, header, m.picker.View())
		return m.renderPane(content, outerHeight, borderColor(flashNone, true))
	}

	header := styleTitle.Render("Text")
	if m.text == "" {
		header += styleStatus.Render(fmt.Sprintf("  (accepts %s)",
			strings.Join(m.viewer.Matcher().Extensions(), ", ")))
	}
	header = lipgloss.NewStyle().MaxWidth(inner(m.width)).Render(header)
	content := header
	if m.viewport.Height > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
	}

	return m.renderPane(content, outerHeight, borderColor(m.flash, m.focus == PaneViewer))
}

func (m Model) renderChart(outerHeight int) string {
	w, h := inner(m.width), inner(outerHeight)
	snaps := m.feed.Snapshots()

	gauges := m.renderGauges(snaps, w)
	chartRows := h
	if gauges != "" {
		chartRows = h - lipgloss.Height(gauges)
		if chartRows < 1 {
			chartRows = h
			gauges = ""
		}
	}

	var chart string
	if widgets.ChartFits(w, chartRows, m.title != "") {
		chart = widgets.RenderLineChart(widgets.LineChartConfig{
			Title:  m.title,
			Series: chartSeries(snaps),
			Labels: longestLabels(snaps),
			Width:  w,
			Height: chartRows,
			Min:    0,
			Max:    100,
			YLabel: "%",
			XLabel: "time",
		})
	} else {
		chart = m.renderSparklines(snaps, w, chartRows)
	}

	content := chart
	if gauges != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, chart, gauges)
	}
	return m.renderPane(content, outerHeight, borderColor(flashNone, m.focus == PaneChart))
}

// renderSparklines is the fallback when the pane is too small for the
// line chart.
func (m Model) renderSparklines(snaps []series.Snapshot, width, rows int) string {
	labels := []string{"proc", "sys "}
	var lines []string
	for i, s := range snaps {
		if i >= rows {
			break
		}
		// label, two spaces, and "100%"
		sparkW := max(width-len(labels[i])-6, 1)
		line := widgets.RenderPercentSparkline(labels[i], s.Values(), sparkW, seriesColors[i])
		if line == "" {
			line = labels[i] + " " + widgets.FormatPercent(math.NaN())
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderGauges shows the newest value of each series when the terminal is
// wide enough for both gauges on one line.
func (m Model) renderGauges(snaps []series.Snapshot, width int) string {
	barW := GaugeWidth(DetectLayout(width))
	labels := []string{"proc", "sys"}

	var parts []string
	for i, s := range snaps {
		parts = append(parts, widgets.RenderGauge(labels[i], latest(s), barW))
	}
	line := strings.Join(parts, "   ")
	if lipgloss.Width(line) > width {
		return ""
	}
	return line
}

func (m Model) renderStatus() string {
	retained := 0
	for _, snap := range m.feed.Snapshots() {
		retained = max(retained, len(snap.Points))
	}
	state := fmt.Sprintf("%s | tick %d | %d/%d pts", m.feed.State(), m.feed.Ticks(), retained, m.feed.Capacity())
	line := styleStatus.Render(state)
	if m.status != "" {
		room := m.width - lipgloss.Width(state) - 3
		line += styleStatus.Render(" | ") + styleNotice.Render(format.Status(m.status, room))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func chartSeries(snaps []series.Snapshot) []widgets.ChartSeries {
	out := make([]widgets.ChartSeries, len(snaps))
	for i, s := range snaps {
		out[i] = widgets.ChartSeries{
			Name:   s.Name,
			Values: s.Values(),
			Color:  seriesColors[i%len(seriesColors)],
		}
	}
	return out
}

// longestLabels returns the labels of the longest snapshot. Under the skip
// policy the two series may differ in length.
func longestLabels(snaps []series.Snapshot) []string {
	var best series.Snapshot
	for _, s := range snaps {
		if len(s.Points) > len(best.Points) {
			best = s
		}
	}
	labels := make([]string, len(best.Points))
	for i, p := range best.Points {
		labels[i] = p.Label
	}
	return labels
}

func latest(s series.Snapshot) float64 {
	if len(s.Points) == 0 {
		return math.NaN()
	}
	return s.Points[len(s.Points)-1].Value
}
