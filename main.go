// load-pulse is a terminal dashboard that charts this process's CPU load
// against the whole system's, beside a text pane that accepts pasted or
// dropped files.
//
// Usage:
//
//	load-pulse [flags] [file ...]
//
// Flags:
//
//	-config string        Path to configuration file (default: ~/.config/load-pulse/config.yaml)
//	-headless             Print one line per tick instead of the dashboard
//	-interval duration    Sampling interval (default 100ms)
//	-capacity int         Points kept per series (default 100)
//	-provider string      CPU load source: auto|gopsutil|procstat
//	-policy string        Unreadable metric handling: gap|skip
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-color string         auto|always|never
//	-log-file string      Log destination in dashboard mode
//	-verbose              Enable debug logging
//	-version              Print version and exit
//	-man                  Print the man page in roff format
//
// Files named on the command line are loaded into the text pane as if they
// had been dropped on it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gitlab.com/tinyland/lab/load-pulse/config"
	"gitlab.com/tinyland/lab/load-pulse/docs/manpage"
)

// options holds the parsed command line.
type options struct {
	configPath string
	headless   bool
	verbose    bool
	version    bool
	man        bool
	files      []string

	// set records which overriding flags were given explicitly.
	set map[string]string
}

// overrideFlags are the flags that overwrite config file values.
var overrideFlags = []string{"interval", "capacity", "provider", "policy", "metrics-addr", "color", "log-file"}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("load-pulse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{set: map[string]string{}}
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (default: ~/.config/load-pulse/config.yaml)")
	fs.BoolVar(&opts.headless, "headless", false, "Print one line per tick instead of the dashboard")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVar(&opts.man, "man", false, "Print the man page in roff format")
	fs.String("interval", "100ms", "Sampling interval")
	fs.Int("capacity", 100, "Points kept per series")
	fs.String("provider", "auto", "CPU load source: auto|gopsutil|procstat")
	fs.String("policy", "gap", "Unreadable metric handling: gap|skip")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")
	fs.String("color", "auto", "Color output: auto|always|never")
	fs.String("log-file", "", "Log destination in dashboard mode")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		for _, name := range overrideFlags {
			if f.Name == name {
				opts.set[name] = f.Value.String()
			}
		}
	})
	opts.files = fs.Args()
	return opts, nil
}

// applyOverrides copies explicitly given flags over the loaded config.
func applyOverrides(cfg *config.Config, set map[string]string) error {
	for name, v := range set {
		switch name {
		case "interval":
			cfg.Sampler.Interval = v
		case "capacity":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("-capacity: %w", err)
			}
			cfg.Sampler.Capacity = n
		case "provider":
			cfg.Sampler.Provider = v
		case "policy":
			cfg.Sampler.Unavailable = v
		case "metrics-addr":
			cfg.Metrics.Addr = v
		case "color":
			cfg.Display.Color = v
		case "log-file":
			cfg.Log.File = v
		}
	}
	return nil
}

func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, opts.set); err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if opts.version {
		fmt.Printf("load-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if opts.man {
		fmt.Print(manpage.Generate(version, commit, date))
		os.Exit(0)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load-pulse: %v\n", err)
		os.Exit(1)
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if opts.headless {
		err = runHeadless(ctx, cfg, opts.files)
	} else {
		err = runTUI(ctx, cfg, opts.files)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load-pulse: %v\n", err)
		os.Exit(1)
	}
}
