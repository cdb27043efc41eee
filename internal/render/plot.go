package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// PlotFunc draws series into a text block of roughly width x height cells.
type PlotFunc func(series []float64, width, height int) string

// Plot styles accepted by PlotByName.
const (
	StyleLine    = "line"
	StyleBraille = "braille"
)

// PlotByName returns the plotter for a configured style.
func PlotByName(name string) (PlotFunc, error) {
	switch name {
	case StyleLine, "":
		return LinePlot, nil
	case StyleBraille:
		return BraillePlot, nil
	default:
		return nil, fmt.Errorf("unknown plot style %q", name)
	}
}

// LinePlot draws an asciigraph line chart with a y-axis label column.
// The chart has height+1 rows unless the series is flat.
func LinePlot(series []float64, width, height int) string {
	if len(series) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(0),
	)
}

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and bit n sets dot n+1.
const brailleBase = '\u2800'

// brailleDots maps [row][col] to the bit offset within a braille rune.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// BraillePlot draws a filled area chart with braille characters, two samples
// per character column and four vertical levels per row. The scale runs from
// 0 ms to the series maximum. Columns are colored by their peak latency.
// Series shorter than the plot are right-aligned.
func BraillePlot(series []float64, width, height int) string {
	if len(series) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2

	data := series
	if len(data) > targetPoints {
		data = resample(data, targetPoints)
	}

	maxVal := 0.0
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colMax := make([]float64, width)

	offset := targetPoints - len(data)
	for i, v := range data {
		col := (i + offset) / 2
		if col >= width {
			continue
		}
		if v > colMax[col] {
			colMax[col] = v
		}

		dots := 0
		if maxVal > 0 && v > 0 {
			dots = clamp(int(v/maxVal*float64(totalDots)+0.5), totalDots)
		}
		sub := (i + offset) % 2
		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1) << brailleDots[3-d%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			style := lipgloss.NewStyle().Foreground(LatencyColor(colMax[c]))
			b.WriteString(style.Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// resample shrinks data to size buckets, keeping the maximum of each bucket
// so latency spikes survive the compression.
func resample(data []float64, size int) []float64 {
	if len(data) <= size || size <= 0 {
		return data
	}

	out := make([]float64, size)
	bucket := float64(len(data)) / float64(size)
	for i := range out {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}

		m := data[start]
		for _, v := range data[start+1 : end] {
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

func clamp(v, maxVal int) int {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
