package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI runs the full-screen interface until the user quits or ctx is
// done.
func RunTUI(ctx context.Context, chat *Chat) error {
	p := tea.NewProgram(
		NewModel(chat),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
