package main

import (
	"context"
	"os"

	"github.com/desertthunder/lyrix/internal/services"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var provider services.Provider
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			provider = svc
		}
	}

	var lyrics services.LyricsService
	if config.Credentials.Genius.AccessToken != "" {
		lyrics = services.NewGeniusService(config.Credentials.Genius.AccessToken, nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Provider: provider,
		Lyrics:   lyrics,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "lyrix",
		Usage:    "See lyrics for whatever is playing on Spotify",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
