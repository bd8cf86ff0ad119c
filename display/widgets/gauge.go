package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge thresholds, in percent.
const (
	gaugeWarning = 70
	gaugeDanger  = 90
)

// gaugeColor returns the fill color for a percentage.
func gaugeColor(percent float64) lipgloss.Color {
	switch {
	case percent >= gaugeDanger:
		return lipgloss.Color("#EF4444")
	case percent >= gaugeWarning:
		return lipgloss.Color("#EAB308")
	default:
		return lipgloss.Color("#22C55E")
	}
}

// RenderGauge renders "[label] ████░░░░ 42%". NaN renders an empty bar and
// "n/a". A width <= 0 selects 20.
func RenderGauge(label string, percent float64, width int) string {
	if width <= 0 {
		width = 20
	}

	var bar string
	if math.IsNaN(percent) {
		bar = strings.Repeat("░", width)
	} else {
		percent = math.Max(0, math.Min(100, percent))
		filled := int(math.Round(percent / 100 * float64(width)))
		bar = lipgloss.NewStyle().Foreground(gaugeColor(percent)).Render(strings.Repeat("█", filled)) +
			strings.Repeat("░", width-filled)
	}

	var sb strings.Builder
	if label != "" {
		sb.WriteString(label)
		sb.WriteString(" ")
	}
	sb.WriteString(bar)
	sb.WriteString(" ")
	sb.WriteString(FormatPercent(percent))
	return sb.String()
}
