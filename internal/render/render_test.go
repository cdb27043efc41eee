package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/pingspark/internal/aggregate"
	"github.com/rileyhilliard/pingspark/internal/display"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// recordingPlot returns a fixed-height plot and remembers its inputs.
type recordingPlot struct {
	series        []float64
	width, height int
	rows          int
}

func (p *recordingPlot) plot(series []float64, width, height int) string {
	p.series, p.width, p.height = series, width, height
	lines := make([]string, p.rows)
	for i := range lines {
		lines[i] = fmt.Sprintf("row%d", i)
	}
	return strings.Join(lines, "\n")
}

const (
	csi         = "\x1b["
	clearRight  = csi + "0K"
	clearLine   = csi + "2K"
	hideCursor  = csi + "?25l"
	showCursor  = csi + "?25h"
	clearScreen = csi + "2J"
)

func moveTo(row, col int) string {
	return fmt.Sprintf("%s%d;%dH", csi, row, col)
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name string
		snap aggregate.Snapshot
		want Stats
	}{
		{"empty", nil, Stats{}},
		{"all zero", aggregate.Snapshot{0, 0, 0}, Stats{}},
		{"filling window averages over full length", aggregate.Snapshot{0, 0, 10, 30}, Stats{Avg: 10, Min: 0, Max: 30}},
		{"full window", aggregate.Snapshot{5, 10, 15}, Stats{Avg: 10, Min: 5, Max: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.snap))
		})
	}
}

func TestStats_String(t *testing.T) {
	s := ComputeStats(aggregate.Snapshot{10, 25, 5})
	assert.Equal(t, "AVG: 13.33 ms | MIN: 5 ms | MAX: 25 ms", s.String())
	assert.Equal(t, "AVG: 0.00 ms | MIN: 0 ms | MAX: 0 ms", Stats{}.String())
}

func TestComposer_SmoothsAndSizes(t *testing.T) {
	p := &recordingPlot{rows: 3}
	c := Composer{Plot: p.plot, Smoothing: 2}

	f := c.Compose(aggregate.Snapshot{10, 20, 30}, display.Config{Width: 40, Height: 7})

	assert.Equal(t, 40, p.width)
	assert.Equal(t, 7, p.height)
	require.Len(t, p.series, 3)
	assert.InDelta(t, 10, p.series[0], 1e-9)
	assert.InDelta(t, 50.0/3, p.series[1], 1e-9)
	assert.InDelta(t, 80.0/3, p.series[2], 1e-9)

	// Stats use the raw values, not the smoothed ones.
	assert.Equal(t, uint64(30), f.Stats.Max)
	assert.Equal(t, []string{"row0", "row1", "row2"}, f.Plot)
	assert.Equal(t, []string{f.Stats.String(), "", "row0", "row1", "row2"}, f.Lines())
}

func newTestRenderer(out *bytes.Buffer, p *recordingPlot) *Renderer {
	return New(Options{
		Out:       out,
		Cell:      display.NewCell(display.Config{Width: 20, Height: 5}),
		Plot:      p.plot,
		Smoothing: 5,
		Logger:    logger.Noop(),
	})
}

func TestRenderer_DrawInPlace(t *testing.T) {
	var out bytes.Buffer
	p := &recordingPlot{rows: 2}
	r := newTestRenderer(&out, p)

	f := Frame{Stats: Stats{Avg: 1, Min: 1, Max: 1}, Plot: []string{"a", "b"}}
	require.NoError(t, r.Draw(f))

	want := moveTo(1, 1) + "AVG: 1.00 ms | MIN: 1 ms | MAX: 1 ms" + clearRight +
		moveTo(2, 1) + clearRight +
		moveTo(3, 1) + "a" + clearRight +
		moveTo(4, 1) + "b" + clearRight
	assert.Equal(t, want, out.String())
}

func TestRenderer_ShorterFrameClearsLeftovers(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out, &recordingPlot{})

	require.NoError(t, r.Draw(Frame{Plot: []string{"1", "2", "3", "4"}}))
	out.Reset()

	require.NoError(t, r.Draw(Frame{Plot: []string{"1"}}))
	s := out.String()

	assert.Contains(t, s, moveTo(5, 1)+clearLine)
	assert.Contains(t, s, moveTo(6, 1)+clearLine)
	assert.NotContains(t, s, moveTo(7, 1))
	assert.NotContains(t, s, moveTo(3, 1)+clearLine, "rows still in use are overwritten, not erased")
}

type countingWriter struct {
	writes int
	bytes.Buffer
}

func (w *countingWriter) Write(b []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(b)
}

func TestRenderer_OneWritePerFrame(t *testing.T) {
	var w countingWriter
	r := New(Options{
		Out:    &w,
		Cell:   display.NewCell(display.Config{Width: 10, Height: 3}),
		Plot:   (&recordingPlot{rows: 6}).plot,
		Logger: logger.Noop(),
	})

	require.NoError(t, r.Draw(Frame{Plot: []string{"x", "y", "z"}}))
	assert.Equal(t, 1, w.writes)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, stderrors.New("broken pipe") }

func TestRenderer_WriteErrorIsTerminalError(t *testing.T) {
	r := New(Options{Out: failingWriter{}, Cell: display.NewCell(display.Config{}), Logger: logger.Noop()})
	err := r.Draw(Frame{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))
}

func TestRenderer_RunDrawsEverySnapshotInOrder(t *testing.T) {
	var out bytes.Buffer
	p := &recordingPlot{rows: 1}
	r := newTestRenderer(&out, p)

	in := make(chan aggregate.Snapshot, 3)
	in <- aggregate.Snapshot{0, 0, 10}
	in <- aggregate.Snapshot{0, 10, 20}
	in <- aggregate.Snapshot{10, 20, 30}
	close(in)

	require.NoError(t, r.Run(context.Background(), in))
	s := out.String()

	assert.True(t, strings.HasPrefix(s, hideCursor), "cursor hidden first")
	assert.Contains(t, s, clearScreen)
	assert.True(t, strings.HasSuffix(s, showCursor), "cursor restored last")

	first := strings.Index(s, "MAX: 10 ms")
	second := strings.Index(s, "MAX: 20 ms")
	third := strings.Index(s, "MAX: 30 ms")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	assert.Equal(t, 20, p.width)
	assert.Equal(t, 5, p.height)
}

func TestRenderer_RunReadsLatestConfig(t *testing.T) {
	var out bytes.Buffer
	p := &recordingPlot{rows: 1}
	cell := display.NewCell(display.Config{Width: 20, Height: 5})
	r := New(Options{Out: &out, Cell: cell, Plot: p.plot, Logger: logger.Noop()})

	cell.Publish(display.Config{Width: 33, Height: 9})

	in := make(chan aggregate.Snapshot, 1)
	in <- aggregate.Snapshot{1}
	close(in)
	require.NoError(t, r.Run(context.Background(), in))

	assert.Equal(t, 33, p.width)
	assert.Equal(t, 9, p.height)
}

func TestRenderer_RunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out, &recordingPlot{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx, make(chan aggregate.Snapshot))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, strings.HasSuffix(out.String(), showCursor))
}

func TestLinePlot(t *testing.T) {
	assert.Empty(t, LinePlot(nil, 10, 5))
	assert.Empty(t, LinePlot([]float64{1, 2}, 0, 5))

	out := LinePlot([]float64{0, 5, 10}, 30, 5)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, out, "10")
}

func TestBraillePlot(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, BraillePlot(nil, 4, 2))
	})

	t.Run("dimensions", func(t *testing.T) {
		out := BraillePlot([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2)
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 2)
		for _, l := range lines {
			assert.Equal(t, 4, utf8.RuneCountInString(l))
		}
	})

	t.Run("all zero draws nothing", func(t *testing.T) {
		out := BraillePlot([]float64{0, 0, 0, 0}, 2, 1)
		assert.Equal(t, "\u2800\u2800", out)
	})

	t.Run("peak fills its column", func(t *testing.T) {
		// One row, two samples in one character: left at max, right empty.
		out := BraillePlot([]float64{10, 0}, 1, 1)
		assert.Equal(t, string(rune(0x2800|0x01|0x02|0x04|0x40)), out)
	})

	t.Run("short series is right aligned", func(t *testing.T) {
		out := BraillePlot([]float64{10}, 3, 1)
		runes := []rune(out)
		require.Len(t, runes, 3)
		assert.Equal(t, '\u2800', runes[0])
		assert.Equal(t, '\u2800', runes[1])
		assert.NotEqual(t, '\u2800', runes[2])
	})
}

func TestResampleKeepsPeaks(t *testing.T) {
	got := resample([]float64{1, 9, 2, 3, 8, 1}, 3)
	assert.Equal(t, []float64{9, 3, 8}, got)
	assert.Equal(t, []float64{1, 2}, resample([]float64{1, 2}, 5))
}

func TestPlotByName(t *testing.T) {
	_, err := PlotByName("line")
	assert.NoError(t, err)
	_, err = PlotByName("braille")
	assert.NoError(t, err)
	_, err = PlotByName("sixel")
	assert.Error(t, err)
}

func TestLatencyColor(t *testing.T) {
	assert.Equal(t, ColorMuted, LatencyColor(0))
	assert.Equal(t, ColorHealthy, LatencyColor(20))
	assert.Equal(t, ColorWarning, LatencyColor(100))
	assert.Equal(t, ColorCritical, LatencyColor(400))
}

func TestModel(t *testing.T) {
	in := make(chan aggregate.Snapshot, 1)
	cell := display.NewCell(display.Config{Width: 10, Height: 2})
	p := &recordingPlot{rows: 2}
	m := NewModel(context.Background(), in, cell, Composer{Plot: p.plot, Smoothing: 1})

	assert.Contains(t, m.View(), "waiting")

	in <- aggregate.Snapshot{4, 8}
	msg := m.waitForSnapshot()()
	require.IsType(t, snapshotMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "asks for the next snapshot")
	m = next.(Model)
	view := m.View()
	assert.Contains(t, view, "AVG: 6.00 ms | MIN: 4 ms | MAX: 8 ms")
	assert.Contains(t, view, "row1")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, next.(Model).Quit())
}

func TestModel_StreamEnd(t *testing.T) {
	in := make(chan aggregate.Snapshot)
	close(in)
	m := NewModel(context.Background(), in, display.NewCell(display.Config{}), Composer{})

	msg := m.waitForSnapshot()()
	assert.IsType(t, streamDoneMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	m := NewModel(ctx, make(chan aggregate.Snapshot), display.NewCell(display.Config{}), Composer{})
	assert.IsType(t, streamDoneMsg{}, m.waitForSnapshot()())
}
