package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineConfig controls the appearance of a one-row sparkline.
type SparklineConfig struct {
	// Data points to render (most recent last). NaN renders as a space.
	Data []float64
	// Width is the number of characters to render. If 0, uses len(Data).
	Width int
	// Min is the minimum value for scaling. If Min == Max, auto-scale.
	Min float64
	// Max is the maximum value for scaling.
	Max float64
	// Label is optional text shown before the sparkline.
	Label string
	// Color is the lipgloss color for the sparkline characters.
	Color lipgloss.Color
}

// RenderSparkline renders a unicode sparkline chart from the given configuration.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data
	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}
	if width < len(data) {
		data = data[len(data)-width:]
	}

	minVal, maxVal := cfg.Min, cfg.Max
	if minVal == maxVal {
		var ok bool
		minVal, maxVal, ok = finiteRange(data)
		if !ok {
			minVal, maxVal = 0, 0
		}
	}
	flat := minVal == maxVal

	runes := make([]rune, 0, width)
	if width > len(data) {
		runes = append(runes, []rune(strings.Repeat(" ", width-len(data)))...)
	}
	for _, v := range data {
		switch {
		case math.IsNaN(v):
			runes = append(runes, ' ')
		case flat:
			runes = append(runes, sparkBlocks[len(sparkBlocks)/2])
		default:
			normalized := math.Max(0, math.Min(1, (v-minVal)/(maxVal-minVal)))
			idx := int(normalized * float64(len(sparkBlocks)-1))
			runes = append(runes, sparkBlocks[idx])
		}
	}

	sparkStr := string(runes)
	if cfg.Color != "" {
		sparkStr = lipgloss.NewStyle().Foreground(cfg.Color).Render(sparkStr)
	}
	if cfg.Label != "" {
		sparkStr = cfg.Label + " " + sparkStr
	}
	return sparkStr
}

// RenderPercentSparkline renders data on a fixed 0-100 scale followed by the
// newest value, e.g. "proc ▁▂▃▅ 42%".
func RenderPercentSparkline(label string, data []float64, width int, color lipgloss.Color) string {
	spark := RenderSparkline(SparklineConfig{
		Data:  data,
		Width: width,
		Min:   0,
		Max:   100,
		Label: label,
		Color: color,
	})
	if spark == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", spark, FormatPercent(lastValue(data)))
}

// FormatPercent formats a percentage, or "n/a" for NaN.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return " n/a"
	}
	return fmt.Sprintf("%3.0f%%", v)
}

// finiteRange returns the min and max of the non-NaN values.
func finiteRange(data []float64) (lo, hi float64, ok bool) {
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

func lastValue(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return data[len(data)-1]
}
