package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pingspark/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings so the written YAML
// reads "500ms" instead of nanosecond integers.
type fileConfig struct {
	Version       int      `yaml:"version"`
	Hosts         []string `yaml:"hosts"`
	QueueCapacity int      `yaml:"queue_capacity"`
	Probe         struct {
		Interval   string `yaml:"interval"`
		Timeout    string `yaml:"timeout"`
		Privileged bool   `yaml:"privileged"`
	} `yaml:"probe"`
	Window  WindowConfig `yaml:"window"`
	Display struct {
		PollInterval string `yaml:"poll_interval"`
		BottomMargin int    `yaml:"bottom_margin"`
		RightMargin  int    `yaml:"right_margin"`
		Smoothing    int    `yaml:"smoothing"`
		Plot         string `yaml:"plot"`
		TUI          bool   `yaml:"tui"`
	} `yaml:"display"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var fc fileConfig
	fc.Version = cfg.Version
	fc.Hosts = cfg.Hosts
	fc.QueueCapacity = cfg.QueueCapacity
	fc.Probe.Interval = cfg.Probe.Interval.String()
	fc.Probe.Timeout = cfg.Probe.Timeout.String()
	fc.Probe.Privileged = cfg.Probe.Privileged
	fc.Window = cfg.Window
	fc.Display.PollInterval = cfg.Display.PollInterval.String()
	fc.Display.BottomMargin = cfg.Display.BottomMargin
	fc.Display.RightMargin = cfg.Display.RightMargin
	fc.Display.Smoothing = cfg.Display.Smoothing
	fc.Display.Plot = cfg.Display.Plot
	fc.Display.TUI = cfg.Display.TUI
	fc.Metrics = cfg.Metrics
	fc.Log = cfg.Log

	return yaml.Marshal(&fc)
}

// Write saves cfg to path. It refuses to overwrite an existing file unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				path+" already exists",
				"Use --force to overwrite it")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is a bug, please report it")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write "+path,
			"Check file permissions")
	}
	return nil
}
