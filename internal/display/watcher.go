package display

import (
	"context"
	"os"
	"time"

	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"golang.org/x/term"
)

// SizeFunc reports the terminal size in character cells.
type SizeFunc func() (rows, cols int, err error)

// TerminalSize queries the size of the terminal attached to stdout.
func TerminalSize() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(os.Stdout.Fd()))
	return rows, cols, err
}

// Watcher republishes the plotting area whenever the terminal is resized.
type Watcher struct {
	size         SizeFunc
	cell         *Cell
	interval     time.Duration
	bottomMargin int
	rightMargin  int
	log          logger.Logger
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Size         SizeFunc
	Interval     time.Duration
	BottomMargin int
	RightMargin  int
	Logger       logger.Logger
}

// NewWatcher queries the terminal once and returns a watcher whose Cell
// already holds the initial plotting area. A failed query is returned as a
// terminal error.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Size == nil {
		opts.Size = TerminalSize
	}
	if opts.Interval <= 0 {
		opts.Interval = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[display]")
	}

	w := &Watcher{
		size:         opts.Size,
		interval:     opts.Interval,
		bottomMargin: opts.BottomMargin,
		rightMargin:  opts.RightMargin,
		log:          opts.Logger,
	}

	cfg, err := w.query()
	if err != nil {
		return nil, err
	}
	w.cell = NewCell(cfg)
	w.log.Debug("initial plot area %s", cfg)
	return w, nil
}

// Cell is where the watcher publishes.
func (w *Watcher) Cell() *Cell {
	return w.cell
}

// Run polls every interval until ctx is done or a query fails.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.poll(); err != nil {
				return err
			}
		}
	}
}

// poll re-queries the terminal and reports whether a new config was published.
func (w *Watcher) poll() (bool, error) {
	cfg, err := w.query()
	if err != nil {
		return false, err
	}
	if !w.cell.Publish(cfg) {
		return false, nil
	}
	w.log.Debug("plot area resized to %s", cfg)
	return true, nil
}

func (w *Watcher) query() (Config, error) {
	rows, cols, err := w.size()
	if err != nil {
		return Config{}, errors.WrapWithCode(err, errors.ErrTerminal,
			"Cannot read the terminal size",
			"Run pingspark in an interactive terminal, not through a pipe")
	}
	return FromTerminal(rows, cols, w.bottomMargin, w.rightMargin), nil
}
