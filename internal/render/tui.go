package render

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pingspark/internal/aggregate"
	"github.com/rileyhilliard/pingspark/internal/display"
)

// ErrQuit is returned by RunTUI when the user quits from the keyboard.
var ErrQuit = stderrors.New("quit by user")

type keyMap struct {
	Quit key.Binding
}

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// snapshotMsg carries the next snapshot into the model.
type snapshotMsg aggregate.Snapshot

// streamDoneMsg means the snapshot channel closed or ctx ended.
type streamDoneMsg struct{}

// Model is the Bubble Tea model for the full-screen view.
// It pulls exactly one snapshot per command, so snapshots are shown in order
// and a slow terminal still pushes back on the aggregator.
type Model struct {
	ctx      context.Context
	in       <-chan aggregate.Snapshot
	cell     *display.Cell
	composer Composer
	keys     keyMap
	spinner  spinner.Model

	frame    Frame
	received bool
	quit     bool
}

// NewModel creates a TUI model reading snapshots from in.
func NewModel(ctx context.Context, in <-chan aggregate.Snapshot, cell *display.Cell, c Composer) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statsLabelStyle

	return Model{
		ctx:      ctx,
		in:       in,
		cell:     cell,
		composer: c,
		keys:     defaultKeys,
		spinner:  s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil

	case snapshotMsg:
		m.frame = m.composer.Compose(aggregate.Snapshot(msg), m.cell.Load())
		m.received = true
		return m, m.waitForSnapshot()

	case streamDoneMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if m.received {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if !m.received {
		return m.spinner.View() + " waiting for the first echo reply..."
	}

	var b strings.Builder
	b.WriteString(statsLabelStyle.Render(m.frame.Stats.String()))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(m.frame.Plot, "\n"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc))
	return b.String()
}

// Quit reports whether the user asked to quit.
func (m Model) Quit() bool {
	return m.quit
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap, ok := <-m.in:
			if !ok {
				return streamDoneMsg{}
			}
			return snapshotMsg(snap)
		case <-m.ctx.Done():
			return streamDoneMsg{}
		}
	}
}

// RunTUI runs the full-screen view until ctx is done, in closes or the user
// quits, in which case it returns ErrQuit so the rest of the pipeline stops.
func RunTUI(ctx context.Context, in <-chan aggregate.Snapshot, cell *display.Cell, c Composer) error {
	p := tea.NewProgram(NewModel(ctx, in, cell, c), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.Quit() {
		return ErrQuit
	}
	return nil
}
