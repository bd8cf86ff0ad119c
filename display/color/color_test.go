package color

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"always", ModeAlways, false},
		{"never", ModeNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldDisableColor_NOCOLOR(t *testing.T) {
	for _, val := range []string{"", "1", "anything"} {
		t.Setenv("NO_COLOR", val)
		if !ShouldDisableColor(os.Stdout) {
			t.Errorf("ShouldDisableColor() = false with NO_COLOR=%q, want true", val)
		}
	}
}

func TestShouldDisableColor_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if !ShouldDisableColor(w) {
		t.Error("ShouldDisableColor(pipe) = false, want true")
	}
}

func TestApply_Modes(t *testing.T) {
	defer lipgloss.SetColorProfile(termenv.Ascii)

	if Apply(ModeNever, os.Stdout) {
		t.Error("Apply(never) reported color enabled")
	}
	if lipgloss.ColorProfile() != termenv.Ascii {
		t.Error("Apply(never) did not select the Ascii profile")
	}

	if !Apply(ModeAlways, os.Stdout) {
		t.Error("Apply(always) reported color disabled")
	}
	if lipgloss.ColorProfile() != termenv.TrueColor {
		t.Error("Apply(always) did not select TrueColor")
	}

	t.Setenv("NO_COLOR", "1")
	if Apply(ModeAuto, os.Stdout) {
		t.Error("Apply(auto) with NO_COLOR reported color enabled")
	}
}

func TestForceDisable_PlainRender(t *testing.T) {
	ForceDisable()
	out := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true).Render("x")
	if out != "x" {
		t.Errorf("expected plain render, got %q", out)
	}
}
