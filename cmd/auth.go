package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/lyrix/internal/server"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user consent, exchanges
// the auth code for tokens, and stores the refresh token under the resolved
// Spotify identity. The identity is written back to the config file so
// non-interactive commands know who to act as.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(configPath)

	if r.provider == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	code, err := r.doOAuth(config)
	if err != nil {
		return err
	}

	userID, err := engine.Authorize(ctx, code)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	config.Credentials.Spotify.UserID = userID
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.config = config

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Logged in as %s\n\n", userID)
	r.writePlain("You can now use: lyrix now\n")

	return nil
}

// AuthStatus reports the stored identity and whether a refresh token exists for it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	userID := config.Credentials.Spotify.UserID
	if userID == "" {
		return r.writePlain("✗ Not logged in. Run 'lyrix auth login' first.\n")
	}

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := engine.GrantAccess(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.writePlain("✗ No stored credentials for %s. Run 'lyrix auth login'.\n", userID)
		}
		if errors.Is(err, shared.ErrProvider) {
			r.writePlain("✗ Logged in as %s, but the refresh token was rejected.\n", userID)
			return r.writePlain("  Run 'lyrix auth login' to reauthorize.\n")
		}
		return err
	}

	r.writePlain("✓ Logged in as %s\n", userID)
	return r.writePlain("✓ Refresh token accepted\n")
}

// AuthLogout removes the stored identity and all of its remember-me tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(configPath)

	userID := config.Credentials.Spotify.UserID
	if userID == "" {
		return r.writePlain("Not logged in.\n")
	}

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := engine.Logout(userID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("logout failed: %w", err)
	}

	config.Credentials.Spotify.UserID = ""
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.config = config

	return r.writePlain("✓ Logged out %s\n", userID)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
// and returns the authorization code.
func (r *Runner) doOAuth(config *shared.Config) (string, error) {
	state := shared.GenerateID()

	authURL := r.provider.AuthURL(state)
	callbackHandler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Handler(callbackHandler)

	httpServer := &http.Server{
		Addr:    config.Server.Addr(),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", config.Server.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callbackHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("authorization failed: %w", result.Error())
	}

	return result.Code, nil
}
