package tui

// LayoutSize represents a responsive breakpoint for terminal width.
type LayoutSize int

const (
	// LayoutCompact is used for terminals narrower than 60 characters.
	LayoutCompact LayoutSize = iota
	// LayoutNormal is used for terminals between 60 and 120 characters wide.
	LayoutNormal
	// LayoutWide is used for terminals wider than 120 characters.
	LayoutWide
)

// DetectLayout returns the appropriate LayoutSize for the given terminal width.
func DetectLayout(width int) LayoutSize {
	switch {
	case width < 60:
		return LayoutCompact
	case width <= 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}

// GaugeWidth returns the bar width for the load gauges at a breakpoint.
func GaugeWidth(size LayoutSize) int {
	switch size {
	case LayoutCompact:
		return 10
	case LayoutWide:
		return 30
	default:
		return 20
	}
}

// paneLayout holds the outer heights (borders included) of the two stacked
// panes.
type paneLayout struct {
	viewerHeight int
	chartHeight  int
}

const (
	borderSize   = 2
	minPaneOuter = borderSize + 1
	statusHeight = 1
)

// splitPanes divides the rows left after the status bar and help footer
// between the viewer (top) and the chart (bottom). A positive chartHeight
// fixes the chart pane; otherwise the body is split evenly. The viewer
// always keeps at least one content row when the terminal allows it.
func splitPanes(height, footerHeight, chartHeight int) paneLayout {
	body := height - statusHeight - footerHeight
	if body < 2*minPaneOuter {
		return paneLayout{viewerHeight: max(body, 0)}
	}

	chart := body / 2
	if chartHeight > 0 {
		chart = chartHeight
	}
	chart = min(chart, body-minPaneOuter)
	chart = max(chart, minPaneOuter)

	return paneLayout{viewerHeight: body - chart, chartHeight: chart}
}

// inner returns the content size inside a bordered pane.
func inner(outer int) int {
	return max(outer-borderSize, 0)
}
