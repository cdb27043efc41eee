// Package pipeline wires probers, the aggregator, the display watcher and the
// renderer together and runs them until the context is cancelled.
//
//	probers -> records (bounded) -> aggregator -> snapshots (bounded) -> renderer
//	watcher -> display cell (latest value) -> renderer
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rileyhilliard/pingspark/internal/aggregate"
	"github.com/rileyhilliard/pingspark/internal/config"
	"github.com/rileyhilliard/pingspark/internal/display"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/rileyhilliard/pingspark/internal/metrics"
	"github.com/rileyhilliard/pingspark/internal/probe"
	"github.com/rileyhilliard/pingspark/internal/render"
	"golang.org/x/sync/errgroup"
)

// Options replaces the real network, terminal and clock. Zero values use
// the real ones.
type Options struct {
	Resolve func(host string) (*net.IPAddr, error)
	Dialer  probe.Dialer
	Size    display.SizeFunc
	Out     io.Writer
	Sleep   probe.SleepFunc
	Now     func() time.Time

	// Logger, when set, is used by every component instead of the
	// per-component env loggers.
	Logger logger.Logger

	// Metrics overrides the recorder built from cfg.Metrics.
	Metrics *metrics.Recorder
}

// Run blocks until ctx is cancelled, the user quits the TUI, or a component
// fails in a way the whole process cannot survive (terminal gone, metrics
// port taken). User-initiated shutdown returns nil.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	opts = withDefaults(cfg, opts)

	mode, err := aggregate.ParseMode(cfg.Window.Mode)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid window.mode", "Use 'merged' or 'per-host'")
	}
	plot, err := render.PlotByName(cfg.Display.Plot)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid display.plot", "Use 'line' or 'braille'")
	}

	watcher, err := display.NewWatcher(display.WatcherOptions{
		Size:         opts.Size,
		Interval:     cfg.Display.PollInterval,
		BottomMargin: cfg.Display.BottomMargin,
		RightMargin:  cfg.Display.RightMargin,
		Logger:       componentLogger(opts, "[display]"),
	})
	if err != nil {
		return err
	}

	records := make(chan probe.Record, cfg.QueueCapacity)
	snapshots := make(chan aggregate.Snapshot, cfg.QueueCapacity)

	agg := aggregate.New(cfg.Window.Length,
		aggregate.WithMode(mode),
		aggregate.WithLogger(componentLogger(opts, "[aggregate]")),
		aggregate.WithObserver(opts.Metrics),
	)
	composer := render.Composer{Plot: plot, Smoothing: cfg.Display.Smoothing}

	g, gctx := errgroup.WithContext(ctx)

	start := opts.Now()
	probeLog := componentLogger(opts, "[probe]")
	for id, host := range cfg.Hosts {
		g.Go(func() error {
			return ignoreCanceled(runProber(gctx, id, host, start, records, cfg, opts, probeLog))
		})
	}

	g.Go(func() error {
		return ignoreCanceled(agg.Run(gctx, records, snapshots))
	})

	g.Go(func() error {
		return ignoreCanceled(watcher.Run(gctx))
	})

	g.Go(func() error {
		if cfg.Display.TUI {
			return ignoreCanceled(render.RunTUI(gctx, snapshots, watcher.Cell(), composer))
		}
		r := render.New(render.Options{
			Out:       opts.Out,
			Cell:      watcher.Cell(),
			Plot:      plot,
			Smoothing: cfg.Display.Smoothing,
			Logger:    componentLogger(opts, "[render]"),
		})
		return ignoreCanceled(r.Run(gctx, snapshots))
	})

	if opts.Metrics != nil && cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return ignoreCanceled(opts.Metrics.Serve(gctx, cfg.Metrics.Listen, componentLogger(opts, "[metrics]")))
		})
	}

	if err := g.Wait(); err != nil && !stderrors.Is(err, render.ErrQuit) {
		return err
	}
	return nil
}

// runProber resolves and dials host, then probes until ctx is done. Setup
// failures only take this host out; the rest of the pipeline keeps running.
func runProber(ctx context.Context, id int, host string, start time.Time, out chan<- probe.Record, cfg *config.Config, opts Options, log logger.Logger) error {
	addr, err := opts.Resolve(host)
	if err != nil {
		log.Error("%s: not probing: %v", host, err)
		return nil
	}
	t, err := opts.Dialer(addr)
	if err != nil {
		log.Error("%s: not probing: %v", host, err)
		return nil
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			log.Debug("%s: close: %v", host, cerr)
		}
	}()

	log.Debug("probing %s (%s) as host %d every %s", host, addr, id, cfg.Probe.Interval)

	p := probe.NewProber(id, host, t, out, cfg.Probe.Interval,
		probe.WithSleep(opts.Sleep),
		probe.WithLogger(log),
		probe.WithObserver(opts.Metrics),
	)
	if err := p.Run(ctx, start); err != nil {
		return fmt.Errorf("prober %s: %w", host, err)
	}
	return nil
}

func withDefaults(cfg *config.Config, opts Options) Options {
	if opts.Resolve == nil {
		opts.Resolve = probe.Resolve
	}
	if opts.Dialer == nil {
		opts.Dialer = probe.ICMPOptions{
			Privileged: cfg.Probe.Privileged,
			Timeout:    cfg.Probe.Timeout,
		}.Dialer()
	}
	if opts.Size == nil {
		opts.Size = display.TerminalSize
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil && cfg.Metrics.Listen != "" {
		opts.Metrics = metrics.NewRecorder()
	}
	return opts
}

func componentLogger(opts Options, prefix string) logger.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logger.NewEnvLogger(prefix)
}

func ignoreCanceled(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
