// Package display tracks the plotting area available in the terminal.
//
// A Watcher polls the terminal size and publishes the usable area into a
// Cell. Readers always see the latest value and never block.
package display

import (
	"fmt"
	"sync/atomic"
)

// Config is the plotting area: terminal size minus the fixed margins.
type Config struct {
	Width  uint
	Height uint
}

func (c Config) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// FromTerminal subtracts the margins from a terminal of rows x cols.
// Each axis is at least 1 so a tiny terminal still gets a plot.
func FromTerminal(rows, cols, bottomMargin, rightMargin int) Config {
	return Config{
		Width:  saturatingSub(cols, rightMargin),
		Height: saturatingSub(rows, bottomMargin),
	}
}

func saturatingSub(v, margin int) uint {
	if v-margin < 1 {
		return 1
	}
	return uint(v - margin)
}

// Cell is a single-writer, multi-reader latest-value slot.
type Cell struct {
	v         atomic.Pointer[Config]
	publishes atomic.Uint64
}

// NewCell creates a cell holding initial.
func NewCell(initial Config) *Cell {
	c := &Cell{}
	c.v.Store(&initial)
	return c
}

// Load returns the most recently published config.
func (c *Cell) Load() Config {
	if p := c.v.Load(); p != nil {
		return *p
	}
	return Config{}
}

// Publish stores cfg if it differs from the current value and reports
// whether it did.
func (c *Cell) Publish(cfg Config) bool {
	if cur := c.v.Load(); cur != nil && *cur == cfg {
		return false
	}
	c.v.Store(&cfg)
	c.publishes.Add(1)
	return true
}

// Publishes counts the stores made by Publish.
func (c *Cell) Publishes() uint64 {
	return c.publishes.Load()
}
