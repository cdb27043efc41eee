package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/pingspark/internal/display"
)

// Smallest plot area that still reads as a graph.
const (
	minPlotWidth  = 20
	minPlotHeight = 5
)

// TerminalCheck verifies the terminal size can be read and leaves room for
// a plot after the margins.
type TerminalCheck struct {
	Size         display.SizeFunc
	BottomMargin int
	RightMargin  int
}

func (c *TerminalCheck) Name() string     { return "terminal_size" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run(context.Context) CheckResult {
	size := c.Size
	if size == nil {
		size = display.TerminalSize
	}

	rows, cols, err := size()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read terminal size: %v", err),
			Suggestion: "Run pingspark in an interactive terminal, not through a pipe",
		}
	}

	area := display.FromTerminal(rows, cols, c.BottomMargin, c.RightMargin)
	if area.Width < minPlotWidth || area.Height < minPlotHeight {
		return CheckResult{
			Name:   c.Name(),
			Status: StatusWarn,
			Message: fmt.Sprintf("Terminal is %dx%d, leaving a %s plot",
				cols, rows, area),
			Suggestion: fmt.Sprintf("Enlarge the window or lower display.bottom_margin / display.right_margin (plot needs at least %dx%d)",
				minPlotWidth, minPlotHeight),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Terminal %dx%d, plot area %s", cols, rows, area),
	}
}

func (c *TerminalCheck) Fix() error { return nil }
