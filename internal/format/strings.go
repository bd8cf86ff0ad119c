package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Status fits a status message into width terminal cells. Line breaks and
// tabs from echoed file names or pasted text become single spaces, and wide
// runes count as two cells. A clipped message ends in "..." when there is
// room for it.
func Status(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if width < 4 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
