package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the shell and blocks until the user quits.
func Run(ctx context.Context, svc Services, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(New(ctx, svc), opts...).Run(); err != nil {
		return fmt.Errorf("shell failed: %w", err)
	}
	return nil
}
