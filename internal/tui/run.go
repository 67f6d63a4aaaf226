package tui

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the review screen until the user quits or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	m := New(ctx, opts...)
	if m.config.Conn == nil {
		return fmt.Errorf("review screen needs a connection")
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if m.config.MouseSupport {
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	}

	if _, err := tea.NewProgram(m, progOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
