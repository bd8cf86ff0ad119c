// Package format renders the short strings load-pulse puts in its status
// bar and logs.
package format

import (
	"fmt"
	"time"
)

// Elapsed renders a run length at sampler resolution: milliseconds under a
// second, tenths of a second under a minute, whole seconds beyond.
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Truncate(time.Second).String()
	}
}

// TickRate is the achieved sampling rate, as in "9.8/s".
func TickRate(ticks uint64, d time.Duration) string {
	if d <= 0 {
		return "0.0/s"
	}
	return fmt.Sprintf("%.1f/s", float64(ticks)/d.Seconds())
}
