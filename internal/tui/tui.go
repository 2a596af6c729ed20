package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/OriginOfChaos/Bearathon5/internal/session"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates the board program with the alternate screen and mouse
// click reporting enabled.
func NewProgram(ctx context.Context, sess *session.Session, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(NewModel(ctx, sess), allOpts...)
}
