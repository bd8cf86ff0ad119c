package format

import (
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "opened 3 file(s)", 40, "opened 3 file(s)"},
		{"clipped", "unsupported file type (accepted: java, class, txt)", 20, "unsupported file ..."},
		{"too narrow for an ellipsis", "unsupported", 3, "uns"},
		{"no room", "anything", 0, ""},
		{"pasted newlines", "link:\nhttps://example.com/a\tb", 40, "link: https://example.com/a b"},
		{"wide runes", "打开文件", 7, "打开..."},
		{"accented", "héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.in, tt.width); got != tt.want {
				t.Errorf("Status(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		{12345 * time.Millisecond, "12.3s"},
		{5*time.Minute + 30*time.Second + 400*time.Millisecond, "5m30s"},
		{2*time.Hour + 15*time.Minute, "2h15m0s"},
		{-1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := Elapsed(tt.d); got != tt.want {
			t.Errorf("Elapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTickRate(t *testing.T) {
	tests := []struct {
		ticks uint64
		d     time.Duration
		want  string
	}{
		{100, 10 * time.Second, "10.0/s"},
		{49, 5 * time.Second, "9.8/s"},
		{0, time.Second, "0.0/s"},
		{5, 0, "0.0/s"},
	}
	for _, tt := range tests {
		if got := TickRate(tt.ticks, tt.d); got != tt.want {
			t.Errorf("TickRate(%d, %v) = %q, want %q", tt.ticks, tt.d, got, tt.want)
		}
	}
}
