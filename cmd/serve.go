package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/lyrix/internal/auth"
	"github.com/desertthunder/lyrix/internal/server"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve assembles the session flow and runs the web application.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration incomplete: %w", err)
	}

	if r.provider == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app := server.NewApp(server.AppOpts{
		Flow:           engine,
		Sessions:       auth.NewSessionCodec(config.Session.Secret),
		Provider:       r.provider,
		Logger:         r.logger,
		RememberMaxAge: config.Session.RememberMaxAge,
	})

	router := server.NewBasicRouter()
	router.Use(server.WithLogging(r.logger), app.WithSession)
	router.Handler(app)

	httpServer := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if r.lyrics == nil {
		r.logger.Warn("genius access token not configured, lyrics lookup disabled")
	}

	r.logger.Infof("listening at http://%v", config.Server.Addr())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
