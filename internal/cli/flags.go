package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/spf13/cobra"
)

// RunFlags holds the flags that override the monitor's config.
type RunFlags struct {
	Hosts      []string
	Interval   string
	Mode       string
	Plot       string
	Metrics    string
	LogFile    string
	TUI        bool
	Privileged bool
}

// AddRunFlags registers the monitor override flags on a command.
func AddRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().StringArrayVar(&flags.Hosts, "host", nil, "host to probe (repeatable, replaces the configured list)")
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "probe cadence (e.g., 500ms, 1s)")
	cmd.Flags().StringVar(&flags.Mode, "mode", "", "window mode: merged or per-host")
	cmd.Flags().StringVar(&flags.Plot, "plot", "", "plot style: line or braille")
	cmd.Flags().StringVar(&flags.Metrics, "metrics", "", "serve Prometheus metrics on this address (e.g., 127.0.0.1:9273)")
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write diagnostic logs to this file instead of stderr")
	cmd.Flags().BoolVar(&flags.TUI, "tui", false, "full-screen interactive view (q to quit)")
	cmd.Flags().BoolVar(&flags.Privileged, "privileged", false, "use raw ICMP sockets (needs root or CAP_NET_RAW)")
}

// Apply overwrites the config fields whose flags were given.
// Boolean flags can only switch a feature on.
func (f RunFlags) Apply(cfg *config.Config) error {
	if len(f.Hosts) > 0 {
		cfg.Hosts = append([]string(nil), f.Hosts...)
	}

	interval, err := ParseInterval(f.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Probe.Interval = interval
	}

	if f.Mode != "" {
		cfg.Window.Mode = f.Mode
	}
	if f.Plot != "" {
		cfg.Display.Plot = f.Plot
	}
	if f.Metrics != "" {
		cfg.Metrics.Listen = f.Metrics
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.TUI {
		cfg.Display.TUI = true
	}
	if f.Privileged {
		cfg.Probe.Privileged = true
	}
	return nil
}

// ParseInterval parses a probe cadence string into a duration.
// Returns zero duration if the flag is empty.
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 500ms, 1s, or 2s.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval must be positive, got %s", flag),
			"Try something like 500ms, 1s, or 2s.")
	}
	return duration, nil
}
