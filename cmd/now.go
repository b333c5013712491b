package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Now prints the currently playing track with its lyrics link.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	config := r.loadConfig(cmd.String("config"))

	userID := config.Credentials.Spotify.UserID
	if userID == "" {
		return fmt.Errorf("%w: not logged in, run 'lyrix auth login' first", shared.ErrNotAuthenticated)
	}

	if r.provider == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	engine, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	accessToken, err := engine.GrantAccess(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to refresh access: %w", err)
	}

	playback, err := engine.NowPlaying(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("failed to fetch playback: %w", err)
	}

	if playback.Track == nil {
		return r.writePlain("Nothing playing.\n")
	}

	if useJSON {
		return r.writeJSON(playback, pretty)
	}

	track := playback.Track
	r.writePlain("%s — %s\n", track.Artist, track.Title)
	if track.Album != "" {
		r.writePlain("Album: %s\n", track.Album)
	}
	r.writePlain("Position: %s / %s\n", formatDuration(track.ProgressMS), formatDuration(track.DurationMS))

	if playback.Song != nil {
		r.writePlain("Lyrics: %s\n", playback.Song.URL)
	}

	return nil
}

// formatDuration renders milliseconds as m:ss.
func formatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
