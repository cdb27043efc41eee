package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/util"
)

// MinProbeInterval keeps a misconfigured cadence from flooding the targets.
const MinProbeInterval = 10 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pingspark only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pingspark or lower the version field")
	}

	if len(cfg.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts configured",
			"Add at least one address under 'hosts' in "+ConfigFileName)
	}

	seen := make(map[string]bool, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			return errors.New(errors.ErrConfig,
				"Empty host entry",
				"Remove blank lines from the 'hosts' list")
		}
		if seen[h] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Host '%s' is listed twice", h),
				"Each host should appear once in the 'hosts' list")
		}
		seen[h] = true
	}

	if cfg.QueueCapacity < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("queue_capacity must be at least 1, got %d", cfg.QueueCapacity),
			"The default is 32")
	}

	if err := validateProbe(cfg.Probe); err != nil {
		return err
	}
	if err := validateWindow(cfg.Window); err != nil {
		return err
	}
	return validateDisplay(cfg.Display)
}

func validateProbe(p ProbeConfig) error {
	if p.Interval < MinProbeInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("probe.interval %s is too short", p.Interval),
			fmt.Sprintf("Use at least %s; the default is %s", MinProbeInterval, DefaultProbeInterval))
	}
	if p.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"probe.timeout must be positive",
			fmt.Sprintf("The default is %s", DefaultProbeTimeout))
	}
	return nil
}

func validateWindow(w WindowConfig) error {
	if w.Length < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("window.length must be at least 1, got %d", w.Length),
			fmt.Sprintf("The default is %d", DefaultWindowLength))
	}
	switch w.Mode {
	case ModeMerged, ModePerHost:
		return nil
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown window.mode '%s'", w.Mode),
			choiceSuggestion(w.Mode, ModeMerged, ModePerHost))
	}
}

func validateDisplay(d DisplayConfig) error {
	if d.PollInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"display.poll_interval must be positive",
			fmt.Sprintf("The default is %s", DefaultPollInterval))
	}
	if d.BottomMargin < 0 || d.RightMargin < 0 {
		return errors.New(errors.ErrConfig,
			"display margins cannot be negative",
			"Set bottom_margin and right_margin to 0 or more")
	}
	if d.Smoothing < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("display.smoothing must be at least 1, got %d", d.Smoothing),
			"Use 1 to disable smoothing")
	}
	switch d.Plot {
	case PlotLine, PlotBraille:
		return nil
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.plot '%s'", d.Plot),
			choiceSuggestion(d.Plot, PlotLine, PlotBraille))
	}
}

// choiceSuggestion points at the closest valid value, or lists both.
func choiceSuggestion(got, a, b string) string {
	if similar := util.SuggestSimilar(got, []string{a, b}, 3); len(similar) > 0 {
		return fmt.Sprintf("Did you mean '%s'?", similar[0])
	}
	return fmt.Sprintf("Use '%s' or '%s'", a, b)
}
