package display

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTerminal is a resizable terminal for tests.
type fakeTerminal struct {
	mu   sync.Mutex
	rows int
	cols int
	err  error
}

func (f *fakeTerminal) size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, f.cols, f.err
}

func (f *fakeTerminal) resize(rows, cols int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows, f.cols = rows, cols
}

func (f *fakeTerminal) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newTestWatcher(t *testing.T, term *fakeTerminal) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherOptions{
		Size:         term.size,
		Interval:     5 * time.Millisecond,
		BottomMargin: 4,
		RightMargin:  12,
		Logger:       logger.Noop(),
	})
	require.NoError(t, err)
	return w
}

func TestFromTerminal(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		want       Config
	}{
		{"typical", 40, 120, Config{Width: 108, Height: 36}},
		{"exactly the margins", 4, 12, Config{Width: 1, Height: 1}},
		{"smaller than the margins", 2, 5, Config{Width: 1, Height: 1}},
		{"zero size", 0, 0, Config{Width: 1, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromTerminal(tt.rows, tt.cols, 4, 12))
		})
	}
}

func TestCell_PublishSkipsUnchanged(t *testing.T) {
	c := NewCell(Config{Width: 80, Height: 20})

	assert.False(t, c.Publish(Config{Width: 80, Height: 20}))
	assert.Equal(t, uint64(0), c.Publishes())

	assert.True(t, c.Publish(Config{Width: 81, Height: 20}))
	assert.Equal(t, Config{Width: 81, Height: 20}, c.Load())
	assert.Equal(t, uint64(1), c.Publishes())
}

func TestWatcher_InitialConfig(t *testing.T) {
	term := &fakeTerminal{rows: 30, cols: 100}
	w := newTestWatcher(t, term)
	assert.Equal(t, Config{Width: 88, Height: 26}, w.Cell().Load())
}

func TestWatcher_InitialQueryFailure(t *testing.T) {
	term := &fakeTerminal{err: stderrors.New("not a terminal")}
	_, err := NewWatcher(WatcherOptions{Size: term.size, Logger: logger.Noop()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))
}

func TestWatcher_PollRepublishesOnlyOnChange(t *testing.T) {
	term := &fakeTerminal{rows: 30, cols: 100}
	w := newTestWatcher(t, term)

	changed, err := w.poll()
	require.NoError(t, err)
	assert.False(t, changed, "same size is a no-op")
	assert.Equal(t, uint64(0), w.Cell().Publishes())

	term.resize(30, 101)
	changed, err = w.poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint64(1), w.Cell().Publishes())

	changed, err = w.poll()
	require.NoError(t, err)
	assert.False(t, changed)

	term.resize(31, 101)
	changed, err = w.poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint64(2), w.Cell().Publishes())
	assert.Equal(t, Config{Width: 89, Height: 27}, w.Cell().Load())
}

func TestWatcher_ResizeInsideMarginIsNoop(t *testing.T) {
	term := &fakeTerminal{rows: 3, cols: 10}
	w := newTestWatcher(t, term)

	// Both sizes clamp to 1x1, so nothing observable changed.
	term.resize(2, 9)
	changed, err := w.poll()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWatcher_RunPublishesResize(t *testing.T) {
	term := &fakeTerminal{rows: 30, cols: 100}
	w := newTestWatcher(t, term)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	term.resize(50, 200)
	assert.Eventually(t, func() bool {
		return w.Cell().Load() == Config{Width: 188, Height: 46}
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_RunFailsOnQueryError(t *testing.T) {
	term := &fakeTerminal{rows: 30, cols: 100}
	w := newTestWatcher(t, term)

	term.fail(stderrors.New("bad file descriptor"))

	select {
	case err := <-runAsync(w):
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrTerminal))
	case <-time.After(time.Second):
		t.Fatal("watcher kept running after the terminal query failed")
	}
}

func runAsync(w *Watcher) <-chan error {
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	return done
}
