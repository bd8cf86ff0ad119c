// Package color decides whether load-pulse output carries ANSI color.
//
// It honors the NO_COLOR convention (https://no-color.org/) and detects
// pipes and redirects. When color is off, lipgloss is switched to the Ascii
// profile so every styled render produces plain text.
package color

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Mode selects the color policy.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// ParseMode converts a config value into a Mode. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeAlways:
		return ModeAlways, nil
	case ModeNever:
		return ModeNever, nil
	default:
		return "", fmt.Errorf("color: unknown mode %q (want auto, always or never)", s)
	}
}

// ShouldDisableColor reports whether auto mode turns color off: NO_COLOR is
// set (to any value), or f is not a terminal.
func ShouldDisableColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	fd := f.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// Apply configures the global lipgloss renderer for mode and output f.
// It returns true if color is enabled.
func Apply(mode Mode, f *os.File) bool {
	switch mode {
	case ModeNever:
		ForceDisable()
		return false
	case ModeAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
		return true
	default:
		if ShouldDisableColor(f) {
			ForceDisable()
			return false
		}
		return true
	}
}

// ForceDisable switches lipgloss to the Ascii profile. Tests use it to get
// deterministic plain output.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
