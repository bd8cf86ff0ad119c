// Package config provides configuration parsing for load-pulse.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the load-pulse configuration file.
type Config struct {
	// Sampler holds the tick loop settings.
	Sampler SamplerConfig `yaml:"sampler"`

	// Display holds TUI rendering settings.
	Display DisplayConfig `yaml:"display"`

	// Viewer holds text pane settings.
	Viewer ViewerConfig `yaml:"viewer"`

	// Metrics holds the Prometheus endpoint settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`
}

// SamplerConfig holds the tick loop settings.
type SamplerConfig struct {
	// Interval is a duration string (e.g. "100ms", "1s") between ticks.
	Interval string `yaml:"interval"`
	// Capacity is the number of points retained per series.
	Capacity int `yaml:"capacity"`
	// Provider selects the CPU load source: "auto", "gopsutil" or "procstat".
	Provider string `yaml:"provider"`
	// Unavailable is the policy for unreadable metrics: "gap" or "skip".
	Unavailable string `yaml:"unavailable"`
}

// DisplayConfig holds TUI rendering settings.
type DisplayConfig struct {
	// Title is shown above the chart.
	Title string `yaml:"title"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
	// ChartHeight is the chart pane height in rows. 0 splits the screen
	// evenly with the viewer.
	ChartHeight int `yaml:"chart_height"`
}

// ViewerConfig holds text pane settings.
type ViewerConfig struct {
	// Extensions lists the file types accepted by drops.
	Extensions []string `yaml:"extensions"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics, e.g. ":9464". Empty disables it.
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// File is the log destination in TUI mode. Headless mode logs to stderr.
	File string `yaml:"file"`
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
}

// DefaultPath returns ~/.config/load-pulse/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "load-pulse", "config.yaml")
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Sampler: SamplerConfig{
			Interval:    "100ms",
			Capacity:    100,
			Provider:    "auto",
			Unavailable: "gap",
		},
		Display: DisplayConfig{
			Title:       "System and process CPU load",
			Color:       "auto",
			ChartHeight: 0,
		},
		Viewer: ViewerConfig{
			Extensions: []string{"java", "class", "txt", "log", "css"},
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Log: LogConfig{
			File:  filepath.Join(home, ".local", "state", "load-pulse", "load-pulse.log"),
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return config, nil
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	if _, err := c.Interval(); err != nil {
		return err
	}
	if c.Sampler.Capacity < 1 {
		return fmt.Errorf("sampler.capacity must be at least 1, got %d", c.Sampler.Capacity)
	}

	validProviders := map[string]bool{"auto": true, "gopsutil": true, "procstat": true}
	if !validProviders[c.Sampler.Provider] {
		return fmt.Errorf("sampler.provider must be 'auto', 'gopsutil', or 'procstat', got %q", c.Sampler.Provider)
	}

	if c.Sampler.Unavailable != "gap" && c.Sampler.Unavailable != "skip" {
		return fmt.Errorf("sampler.unavailable must be 'gap' or 'skip', got %q", c.Sampler.Unavailable)
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[c.Display.Color] {
		return fmt.Errorf("display.color must be 'auto', 'always', or 'never', got %q", c.Display.Color)
	}
	if c.Display.ChartHeight < 0 {
		return fmt.Errorf("display.chart_height must be non-negative, got %d", c.Display.ChartHeight)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// Interval parses Sampler.Interval. It must be positive.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sampler.Interval)
	if err != nil {
		return 0, fmt.Errorf("sampler.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sampler.interval must be positive, got %s", c.Sampler.Interval)
	}
	return d, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return level, nil
}
