package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/rileyhilliard/pingspark/internal/pipeline"
	"github.com/rileyhilliard/pingspark/internal/util"
)

// loadRunConfig loads the config, applies flag overrides and validates the result.
func loadRunConfig(flags RunFlags) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, path, err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, path, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// runCommand starts the monitor and blocks until SIGINT/SIGTERM or a fatal
// component failure.
func runCommand(ctx context.Context, flags RunFlags) error {
	cfg, path, err := loadRunConfig(flags)
	if err != nil {
		return err
	}

	if cfg.Log.File != "" {
		closeLog, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Cannot open log file %s", cfg.Log.File),
				"Point log.file (or --log-file) at a writable path")
		}
		defer func() { _ = closeLog() }()
	}

	log := logger.NewEnvLogger("[pingspark]")
	if path != "" {
		log.Debug("config: %s", path)
	} else {
		log.Debug("config: built-in defaults")
	}
	log.Debug("hosts=%s interval=%s window=%d mode=%s", util.JoinOrNone(cfg.Hosts), cfg.Probe.Interval, cfg.Window.Length, cfg.Window.Mode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipeline.Run(ctx, cfg, pipeline.Options{})
}
