package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/desertthunder/lyrix/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive now-playing view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	userID := config.Credentials.Spotify.UserID
	if userID == "" {
		return fmt.Errorf("%w: not logged in, run 'lyrix auth login' first", shared.ErrNotAuthenticated)
	}

	if r.provider == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lyrix-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	model := ui.NewModel(ctx, engine, userID)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
