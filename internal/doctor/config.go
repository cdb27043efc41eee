package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pingspark/internal/config"
)

// ConfigFileCheck reports which config file would be used. A missing file is
// only a warning since pingspark runs on built-in defaults.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search

	// FixDir is where Fix writes a default config. Defaults to the working
	// directory.
	FixDir string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", err),
			Suggestion: "Check the --config path or file permissions",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using built-in defaults",
			Suggestion: "Run 'pingspark init' to create a " + config.ConfigFileName,
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// Fix writes a default config file when none exists.
func (c *ConfigFileCheck) Fix() error {
	if c.ConfigPath != "" {
		return nil
	}
	dir := c.FixDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}
	return config.Write(filepath.Join(dir, config.ConfigFileName), config.DefaultConfig(), false)
}

// ConfigSchemaCheck loads and validates the config that would be used.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config: %v", err),
			Suggestion: "Fix the reported field in " + displayPath(path),
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%d host%s, window %d, every %s",
			len(cfg.Hosts), pluralize(len(cfg.Hosts)), cfg.Window.Length, cfg.Probe.Interval),
	}
}

func (c *ConfigSchemaCheck) Fix() error { return nil }

func displayPath(path string) string {
	if path == "" {
		return "the built-in defaults"
	}
	return filepath.Base(path)
}
