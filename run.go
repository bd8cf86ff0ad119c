package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/load-pulse/collectors/cpuload"
	"gitlab.com/tinyland/lab/load-pulse/config"
	"gitlab.com/tinyland/lab/load-pulse/display/color"
	"gitlab.com/tinyland/lab/load-pulse/display/headless"
	"gitlab.com/tinyland/lab/load-pulse/display/tui"
	"gitlab.com/tinyland/lab/load-pulse/exporter"
	"gitlab.com/tinyland/lab/load-pulse/feed"
	"gitlab.com/tinyland/lab/load-pulse/internal/format"
	"gitlab.com/tinyland/lab/load-pulse/viewer"
)

// newLogger builds the process logger. The dashboard owns the terminal, so
// it logs to cfg.Log.File (or nowhere when unset); headless mode logs to
// stderr.
func newLogger(cfg *config.Config, toStderr bool) (*slog.Logger, func() error, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = io.Discard
	closeFn := func() error { return nil }

	switch {
	case toStderr:
		w = os.Stderr
	case cfg.Log.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// newFeed wires the configured provider and policy into a Feed.
func newFeed(cfg *config.Config, logger *slog.Logger, observers ...feed.Observer) (*feed.Feed, error) {
	provider, err := cpuload.New(cfg.Sampler.Provider, logger)
	if err != nil {
		return nil, err
	}
	policy, err := feed.ParsePolicy(cfg.Sampler.Unavailable)
	if err != nil {
		return nil, err
	}

	return feed.New(feed.Config{
		Provider: provider,
		Capacity: cfg.Sampler.Capacity,
		Policy:   policy,
		Observer: feed.Observers(observers),
		Logger:   logger,
	})
}

// startMetrics serves /metrics in the background when an address is set.
// It returns nil when the endpoint is disabled.
func startMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) *exporter.Exporter {
	if cfg.Metrics.Addr == "" {
		return nil
	}

	exp := exporter.New()
	go func() {
		if err := exp.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
			logger.Error("metrics endpoint failed", "addr", cfg.Metrics.Addr, "error", err)
		}
	}()
	return exp
}

func applyColor(cfg *config.Config) {
	mode, err := color.ParseMode(cfg.Display.Color)
	if err != nil {
		mode = color.ModeAuto
	}
	color.Apply(mode, os.Stdout)
}

// runHeadless prints one line per tick until ctx is cancelled. Files named
// on the command line are printed once before sampling starts.
func runHeadless(ctx context.Context, cfg *config.Config, files []string) error {
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	applyColor(cfg)
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	if len(files) > 0 {
		out := viewer.New(cfg.Viewer.Extensions, logger).Open(files)
		if out.Replace {
			fmt.Fprintln(os.Stdout, out.Text)
		}
		logger.Info("viewer", "status", out.Status)
	}

	policy, err := feed.ParsePolicy(cfg.Sampler.Unavailable)
	if err != nil {
		return err
	}
	printer := headless.NewPrinter(os.Stdout, headless.DetectWidth(os.Stdout.Fd()), policy)
	observers := []feed.Observer{printer}
	if exp := startMetrics(ctx, cfg, logger); exp != nil {
		observers = append(observers, exp)
	}

	f, err := newFeed(cfg, logger, observers...)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := feed.Run(ctx, feed.TickerScheduler{}, f, interval); err != nil {
		return err
	}
	elapsed := time.Since(started)
	logger.Info("headless run finished",
		"elapsed", format.Elapsed(elapsed),
		"ticks", f.Ticks(),
		"rate", format.TickRate(f.Ticks(), elapsed))

	if err := printer.Err(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// runTUI runs the dashboard until the user quits or ctx is cancelled.
func runTUI(ctx context.Context, cfg *config.Config, files []string) (err error) {
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	applyColor(cfg)
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	var observers []feed.Observer
	if exp := startMetrics(ctx, cfg, logger); exp != nil {
		observers = append(observers, exp)
	}

	f, err := newFeed(cfg, logger, observers...)
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Feed:        f,
		Viewer:      viewer.New(cfg.Viewer.Extensions, logger),
		Interval:    interval,
		Title:       cfg.Display.Title,
		ChartHeight: cfg.Display.ChartHeight,
		Files:       files,
		Logger:      logger,
	})

	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before reporting.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	logger.Info("dashboard started", "interval", interval, "capacity", cfg.Sampler.Capacity, "provider", cfg.Sampler.Provider)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	f.Stop()
	logger.Info("dashboard finished", "ticks", f.Ticks())
	return nil
}
