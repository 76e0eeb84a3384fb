package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/shared"
	"github.com/desertthunder/reelist/internal/ui"
)

// TUI launches the interactive terminal UI for the signed-in user's lists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	session, err := r.currentUser()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/reelist-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(shared.ExpandHome(logPath), r.config.Log.MaxSizeMB, r.config.Log.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.ApplyLogLevel(fileLogger, r.config.Log.Level)
	r.SetLogger(fileLogger)

	svc, err := r.open()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, svc, session.UserID)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
