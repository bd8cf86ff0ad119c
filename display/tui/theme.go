package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the load-pulse dashboard.
const (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#22C55E") // Green
	colorWarning   = lipgloss.Color("#EAB308") // Yellow
	colorDanger    = lipgloss.Color("#EF4444") // Red
	colorMuted     = lipgloss.Color("#6B7280") // Gray
)

// Trace colors, process then system.
var seriesColors = []lipgloss.Color{colorSecondary, colorWarning}

// Styles used throughout the TUI.
var (
	stylePane   lipgloss.Style
	styleTitle  lipgloss.Style
	styleStatus lipgloss.Style
	styleNotice lipgloss.Style
	styleFooter lipgloss.Style
)

func init() {
	stylePane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted)

	styleTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSecondary)

	styleStatus = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleNotice = lipgloss.NewStyle().
		Foreground(colorPrimary)

	styleFooter = lipgloss.NewStyle().
		Foreground(colorMuted)
}

// borderColor picks the pane border: a drop result wins over focus.
func borderColor(f flash, focused bool) lipgloss.Color {
	switch {
	case f == flashAccepted:
		return colorSuccess
	case f == flashRejected:
		return colorDanger
	case focused:
		return colorPrimary
	default:
		return colorMuted
	}
}
