// Package render turns aggregated snapshots into a live terminal plot.
//
// Each snapshot is smoothed, summarised and plotted at the size currently
// published by the display watcher, then drawn over the previous frame in
// place.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/pingspark/internal/aggregate"
	"github.com/rileyhilliard/pingspark/internal/display"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/rileyhilliard/pingspark/internal/series"
)

// Frame is everything drawn for one snapshot.
type Frame struct {
	Stats Stats
	Plot  []string
}

// Lines returns the frame top to bottom: stats, a blank separator, the plot.
func (f Frame) Lines() []string {
	lines := make([]string, 0, len(f.Plot)+2)
	lines = append(lines, f.Stats.String(), "")
	return append(lines, f.Plot...)
}

// Composer builds frames from snapshots.
type Composer struct {
	Plot      PlotFunc
	Smoothing int
}

// Compose smooths snap and plots it into cfg. Stats come from the raw values.
func (c Composer) Compose(snap aggregate.Snapshot, cfg display.Config) Frame {
	f := Frame{Stats: ComputeStats(snap)}

	plot := c.Plot
	if plot == nil {
		plot = LinePlot
	}
	smoothed := series.WMA(series.ToFloat(snap), c.Smoothing)
	if text := plot(smoothed, int(cfg.Width), int(cfg.Height)); text != "" {
		f.Plot = strings.Split(text, "\n")
	}
	return f
}

// Options configures a Renderer.
type Options struct {
	Out       io.Writer
	Cell      *display.Cell
	Plot      PlotFunc
	Smoothing int
	Logger    logger.Logger
}

// Renderer redraws frames in place on a terminal.
type Renderer struct {
	out      io.Writer
	cell     *display.Cell
	composer Composer
	log      logger.Logger

	// prevLines is how many rows the last frame used, so a shorter frame can
	// clear what is left below it.
	prevLines int
}

// New creates a renderer. Out and Cell are required.
func New(opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[render]")
	}
	return &Renderer{
		out:      opts.Out,
		cell:     opts.Cell,
		composer: Composer{Plot: opts.Plot, Smoothing: opts.Smoothing},
		log:      opts.Logger,
	}
}

// Start hides the cursor and clears the screen.
func (r *Renderer) Start() error {
	var buf bytes.Buffer
	o := termenv.NewOutput(&buf)
	o.HideCursor()
	o.ClearScreen()
	return r.flush(&buf)
}

// Draw writes f over the previous frame with a single Write.
func (r *Renderer) Draw(f Frame) error {
	var buf bytes.Buffer
	o := termenv.NewOutput(&buf)

	lines := f.Lines()
	for i, line := range lines {
		o.MoveCursor(i+1, 1)
		buf.WriteString(line)
		o.ClearLineRight()
	}
	for row := len(lines) + 1; row <= r.prevLines; row++ {
		o.MoveCursor(row, 1)
		o.ClearLine()
	}
	r.prevLines = len(lines)

	return r.flush(&buf)
}

// Close moves the cursor below the last frame and shows it again.
func (r *Renderer) Close() error {
	var buf bytes.Buffer
	o := termenv.NewOutput(&buf)
	o.MoveCursor(r.prevLines+1, 1)
	o.ShowCursor()
	return r.flush(&buf)
}

// Run draws one frame per snapshot, in order, until ctx is done or in closes.
// It never blocks on the display config; it reads whatever is latest.
func (r *Renderer) Run(ctx context.Context, in <-chan aggregate.Snapshot) (err error) {
	if err := r.Start(); err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-in:
			if !ok {
				return nil
			}
			cfg := r.cell.Load()
			if err := r.Draw(r.composer.Compose(snap, cfg)); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) flush(buf *bytes.Buffer) error {
	if _, err := r.out.Write(buf.Bytes()); err != nil {
		r.log.Error("terminal write failed: %v", err)
		return errors.WrapWithCode(err, errors.ErrTerminal,
			fmt.Sprintf("Cannot write to the terminal (%d bytes)", buf.Len()),
			"The terminal was closed or stdout is no longer writable")
	}
	return nil
}
