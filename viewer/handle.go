package viewer

import (
	"fmt"
	"log/slog"
	"strings"
)

// Outcome is what the text pane should do after a drop.
type Outcome struct {
	// Accepted reports whether the drop was taken. The pane highlights
	// accepted drops green and rejected ones red.
	Accepted bool

	// Replace is true when Text should replace the pane contents.
	Replace bool
	Text    string

	// Status is a one-line message for the status bar.
	Status string
}

// Viewer combines classification, extension validation and file reading.
type Viewer struct {
	matcher *Matcher
	reader  *Reader
}

// New creates a Viewer accepting the given extensions.
func New(exts []string, logger *slog.Logger) *Viewer {
	return &Viewer{
		matcher: NewMatcher(exts),
		reader:  NewReader(logger),
	}
}

// Matcher returns the extension matcher.
func (v *Viewer) Matcher() *Matcher { return v.matcher }

// Drop handles a dropped payload. Files are loaded only when all of them
// have an accepted extension. A URL is reported but not opened. Any other
// text replaces the pane contents as-is.
func (v *Viewer) Drop(payload string) Outcome {
	d := Classify(payload)

	switch d.Kind {
	case DropFiles:
		return v.Open(d.Paths)
	case DropURL:
		return Outcome{Accepted: true, Status: "link: " + d.URL}
	default:
		if strings.TrimSpace(d.Text) == "" {
			return Outcome{Status: "nothing to drop"}
		}
		return Outcome{Accepted: true, Replace: true, Text: d.Text, Status: "pasted text"}
	}
}

// Open loads files directly, as when they are named on the command line.
func (v *Viewer) Open(paths []string) Outcome {
	if !v.matcher.AllSupported(paths) {
		return Outcome{
			Status: fmt.Sprintf("unsupported file type (accepted: %s)",
				strings.Join(v.matcher.Extensions(), ", ")),
		}
	}

	text, failed := v.reader.ReadFiles(paths)
	status := fmt.Sprintf("opened %d file(s)", len(paths))
	if failed > 0 {
		status += fmt.Sprintf(", %d unreadable", failed)
	}
	return Outcome{Accepted: true, Replace: true, Text: text, Status: status}
}
