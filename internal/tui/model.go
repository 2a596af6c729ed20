package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/render"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
)

// pending is an action waiting for confirmation or input.
type pending int

const (
	pendingNone pending = iota
	pendingWipe
	pendingReset
	pendingLabel
)

var (
	styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252"))
	stylePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
)

// MsgReloaded tells the model the session was reloaded from disk.
type MsgReloaded struct{}

// Model is the bubbletea model of the board UI.
type Model struct {
	ctx      context.Context
	sess     *session.Session
	keys     KeyMap
	row, col int
	pending  pending
	input    textinput.Model
	status   string
	err      error
}

// NewModel returns a model driving sess.
func NewModel(ctx context.Context, sess *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "objective"
	ti.CharLimit = 200
	ti.Width = 48
	return Model{ctx: ctx, sess: sess, keys: DefaultKeyMap(), input: ti}
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending == pendingLabel {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.pending != pendingNone {
			return m, nil
		}
		if r, c, ok := render.CellAt(m.sess.View(), msg.X, msg.Y); ok {
			m.row, m.col = r, c
			m.toggle()
		}
	case MsgReloaded:
		m.status, m.err = "board reloaded from disk", nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending != pendingNone {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			op := m.pending
			m.pending = pendingNone
			if op == pendingWipe {
				m.report("board wiped", m.sess.Wipe(m.ctx))
			} else {
				m.report("board reset", m.sess.Reset(m.ctx))
			}
		case key.Matches(msg, m.keys.Cancel):
			m.pending = pendingNone
			m.status, m.err = "cancelled", nil
		}
		return m, nil
	}

	size := m.sess.View().Size
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.row = (m.row + size - 1) % size
	case key.Matches(msg, m.keys.Down):
		m.row = (m.row + 1) % size
	case key.Matches(msg, m.keys.Left):
		m.col = (m.col + size - 1) % size
	case key.Matches(msg, m.keys.Right):
		m.col = (m.col + 1) % size
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Shuffle):
		m.report("board shuffled", m.sess.Shuffle(m.ctx))
	case key.Matches(msg, m.keys.Replace):
		m.report(fmt.Sprintf("cell (%d,%d) replaced", m.row, m.col), m.sess.Replace(m.ctx, m.row, m.col, true, ""))
	case key.Matches(msg, m.keys.Featured):
		m.report("new featured item", m.sess.ReplaceFeatured(m.ctx, true, ""))
	case key.Matches(msg, m.keys.Edit):
		m.pending = pendingLabel
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Wipe):
		m.pending = pendingWipe
	case key.Matches(msg, m.keys.Reset):
		m.pending = pendingReset
	case key.Matches(msg, m.keys.Undo):
		m.report("undone", m.sess.Undo(m.ctx))
	}
	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.pending = pendingNone
		m.input.Blur()
		m.status, m.err = "cancelled", nil
		return m, nil
	case tea.KeyEnter:
		m.pending = pendingNone
		m.input.Blur()
		label := strings.TrimSpace(m.input.Value())
		m.report(fmt.Sprintf("cell (%d,%d) set to %q", m.row, m.col, label), m.sess.Replace(m.ctx, m.row, m.col, false, label))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggle() {
	st, err := m.sess.Toggle(m.ctx, m.row, m.col)
	word := "incomplete"
	if st == bingo.StatusComplete {
		word = "complete"
	}
	m.report(fmt.Sprintf("cell (%d,%d) %s", m.row, m.col, word), err)
}

func (m *Model) report(ok string, err error) {
	m.err = err
	if err == nil {
		m.status = ok
	} else if errors.Is(err, session.ErrNothingToUndo) {
		m.status, m.err = "nothing to undo", nil
	}
}

// View renders the board, status line and help.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(render.Board(m.sess.View(), render.Options{CursorRow: m.row, CursorCol: m.col}))
	b.WriteString("\n\n")
	switch {
	case m.pending == pendingWipe:
		b.WriteString(stylePrompt.Render("Wipe the board? (y/n)"))
	case m.pending == pendingReset:
		b.WriteString(stylePrompt.Render("Reset? All objective progress is lost. (y/n)"))
	case m.pending == pendingLabel:
		b.WriteString(stylePrompt.Render("Replace with: ") + m.input.View())
	case m.err != nil:
		b.WriteString(styleError.Render(m.err.Error()))
	default:
		b.WriteString(styleStatus.Render(m.status))
	}
	b.WriteString("\n")
	help := make([]string, 0, len(m.keys.helpLine()))
	for _, k := range m.keys.helpLine() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(styleStatus.Render(strings.Join(help, " · ")))
	return b.String()
}
