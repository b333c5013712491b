package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/shared"
	tu "github.com/desertthunder/lyrix/internal/testing"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			provider := &tu.MockProvider{}
			lyrics := &tu.MockLyrics{}

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Provider: provider,
				Lyrics:   lyrics,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.provider != provider {
				t.Error("expected provider to be set")
			}
			if runner.lyrics != lyrics {
				t.Error("expected lyrics to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		commands := runner.register()
		if len(commands) != 5 {
			t.Fatalf("expected 5 top-level commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "auth", "now", "tui", "setup"} {
			if !names[want] {
				t.Errorf("expected a %s command", want)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"count": 2}, false); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if !strings.Contains(output.String(), `"count":2`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestOpenEngine(t *testing.T) {
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "lyrix_test.db")

	provider := &tu.MockProvider{
		ExchangeToken: &oauth2.Token{AccessToken: "access-bbb", RefreshToken: "refresh-aaa"},
		IdentityID:    "spotify-user-1",
		AccessToken:   "access-bbb",
		Playing:       &models.NowPlaying{Title: "Karma Police", Artist: "Radiohead"},
	}

	runner := NewRunner(RunnerOpts{Config: config, Provider: provider, Output: &bytes.Buffer{}})

	engine, db, err := runner.openEngine(config)
	if err != nil {
		t.Fatalf("failed to open engine: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	userID, err := engine.Authorize(context.Background(), "code")
	if err != nil {
		t.Fatalf("failed to authorize through the wired engine: %v", err)
	}
	if userID != "spotify-user-1" {
		t.Errorf("expected spotify-user-1, got %s", userID)
	}

	access, err := engine.GrantAccess(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	if access != "access-bbb" {
		t.Errorf("expected access-bbb, got %s", access)
	}
}
