// Package manpage generates a roff-formatted man page for load-pulse.
//
// The keybindings section is generated from the dashboard's key map, so the
// page stays in sync with the code.
//
// Usage:
//
//	load-pulse -man | man -l -
//	load-pulse -man > ~/.local/share/man/man1/load-pulse.1
package manpage

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/load-pulse/display/tui"
)

// Generate produces a complete roff-formatted man(1) page for load-pulse.
// The version, commit, and date parameters come from the build-time linker
// variables.
func Generate(version, commit, date string) string {
	var b strings.Builder

	writeHeader(&b, version)
	writeName(&b)
	writeSynopsis(&b)
	writeDescription(&b)
	writeOptions(&b)
	writeKeybindings(&b)
	writeConfiguration(&b)
	writeMetrics(&b)
	writeFiles(&b)
	writeExamples(&b)
	writeEnvironment(&b)
	writeExitStatus(&b)
	writeFooter(&b, version, commit, date)

	return b.String()
}

// roffEscape escapes special roff characters in a string.
func roffEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `-`, `\-`)
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "'") {
		s = `\&` + s
	}
	return s
}

func writeHeader(b *strings.Builder, version string) {
	month := time.Now().Format("January 2006")
	fmt.Fprintf(b, ".TH LOAD-PULSE 1 \"%s\" \"load-pulse %s\" \"User Commands\"\n", month, version)
}

func writeName(b *strings.Builder) {
	b.WriteString(`.SH NAME
load\-pulse \- live process and system CPU load chart with a drop\-in text viewer
`)
}

func writeSynopsis(b *strings.Builder) {
	b.WriteString(`.SH SYNOPSIS
.B load\-pulse
[\fIOPTIONS\fR] [\fIFILE\fR ...]
`)
}

func writeDescription(b *strings.Builder) {
	b.WriteString(`.SH DESCRIPTION
.B load\-pulse
samples the CPU load of its own process and of the whole system on a fixed
interval and charts both as rolling series of the most recent points.
Each point is labelled with the time of day at millisecond resolution.
.PP
Above the chart sits a text pane. Pasting into the terminal, or dragging
files onto it in terminals that paste dropped paths, loads the content.
Files are accepted only when every one has a supported extension; the pane
border flashes green for an accepted drop and red for a rejected one.
A pasted URL is reported in the status bar.
.PP
With
.BR \-headless ,
the dashboard is replaced by one line per tick on standard output.
`)
}

func writeOptions(b *strings.Builder) {
	b.WriteString(".SH OPTIONS\n")

	flags := []struct {
		flag string
		arg  string
		desc string
	}{
		{"config", "PATH", "Path to the YAML configuration file. Default: ~/.config/load-pulse/config.yaml. A missing file means defaults."},
		{"headless", "", "Print a timestamped pair of sparklines per tick instead of running the dashboard. Logs go to stderr."},
		{"interval", "DURATION", "Sampling interval, e.g. 100ms or 1s. Overrides sampler.interval."},
		{"capacity", "N", "Points kept per series. Overrides sampler.capacity."},
		{"provider", "NAME", "CPU load source: auto, gopsutil or procstat. Overrides sampler.provider."},
		{"policy", "NAME", "What a tick records for an unreadable metric: gap (a hole in the trace) or skip (no point). Overrides sampler.unavailable."},
		{"metrics-addr", "ADDR", "Serve Prometheus metrics at /metrics on ADDR. Overrides metrics.addr."},
		{"color", "MODE", "Color output: auto, always or never. Overrides display.color."},
		{"log-file", "PATH", "Log destination in dashboard mode. Overrides log.file."},
		{"verbose", "", "Enable debug-level logging."},
		{"version", "", "Print the version, commit hash, and build date, then exit."},
		{"man", "", "Print this man page to stdout in roff format."},
	}

	for _, f := range flags {
		b.WriteString(".TP\n")
		if f.arg != "" {
			fmt.Fprintf(b, ".BI \\-%s \" %s\"\n", roffEscape(f.flag), f.arg)
		} else {
			fmt.Fprintf(b, ".B \\-%s\n", roffEscape(f.flag))
		}
		b.WriteString(roffEscape(f.desc) + "\n")
	}
}

func writeKeybindings(b *strings.Builder) {
	b.WriteString(".SH KEYBINDINGS\n")
	for _, k := range tui.Bindings() {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", roffEscape(k.Keys), roffEscape(k.Desc))
	}
}

func writeConfiguration(b *strings.Builder) {
	b.WriteString(`.SH CONFIGURATION
The configuration file is YAML. Every key is optional:
.PP
.nf
sampler:
  interval: 100ms
  capacity: 100
  provider: auto
  unavailable: gap
display:
  title: System and process CPU load
  color: auto
  chart_height: 0
viewer:
  extensions: [java, class, txt, log, css]
metrics:
  addr: ""
log:
  file: ~/.local/state/load\-pulse/load\-pulse.log
  level: info
.fi
.PP
Command line flags override file values.
`)
}

func writeMetrics(b *strings.Builder) {
	b.WriteString(`.SH METRICS
When metrics.addr is set the following are served at /metrics:
.TP
.B load_pulse_process_cpu_percent
Most recent process load, as a share of all CPUs.
.TP
.B load_pulse_system_cpu_percent
Most recent system load.
.TP
.B load_pulse_ticks_total
Sampler ticks applied.
.TP
.B load_pulse_metric_errors_total{metric,kind}
Reads that produced no value; kind is unavailable or failed.
`)
}

func writeFiles(b *strings.Builder) {
	b.WriteString(`.SH FILES
.TP
.I ~/.config/load\-pulse/config.yaml
Configuration file.
.TP
.I ~/.local/state/load\-pulse/load\-pulse.log
Default dashboard log file.
.TP
.I /proc/stat ", " /proc/self/stat
Read by the procstat provider on Linux.
`)
}

func writeExamples(b *strings.Builder) {
	b.WriteString(`.SH EXAMPLES
Run the dashboard with two files preloaded:
.PP
.nf
load\-pulse Main.java notes.txt
.fi
.PP
Sample once a second and expose metrics:
.PP
.nf
load\-pulse \-interval 1s \-metrics\-addr :9464
.fi
.PP
Log to a pipe without the dashboard:
.PP
.nf
load\-pulse \-headless \-color never | tee load.log
.fi
`)
}

func writeEnvironment(b *strings.Builder) {
	b.WriteString(`.SH ENVIRONMENT
.TP
.B NO_COLOR
Disables color output when display.color is auto.
.TP
.B COLUMNS
Line width in headless mode when standard output is not a terminal.
`)
}

func writeExitStatus(b *strings.Builder) {
	b.WriteString(".SH EXIT STATUS\n")
	b.WriteString(".TP\n.B 0\nSuccess.\n")
	b.WriteString(".TP\n.B 1\nInvalid configuration or a runtime failure.\n")
	b.WriteString(".TP\n.B 2\nInvalid command line.\n")
}

func writeFooter(b *strings.Builder, version, commit, date string) {
	fmt.Fprintf(b, ".SH VERSION\n%s (%s) built %s\n", version, commit, date)
}
