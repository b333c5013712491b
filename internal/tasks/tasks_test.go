package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/desertthunder/lyrix/internal/auth"
	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/repositories"
	"github.com/desertthunder/lyrix/internal/shared"
	mocks "github.com/desertthunder/lyrix/internal/testing"
	"golang.org/x/oauth2"
)

// setupEngine wires a SessionEngine over a real store and scripted provider.
func setupEngine(t *testing.T, provider *mocks.MockProvider, lyrics *mocks.MockLyrics) (*SessionEngine, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "lyrix_test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	users := repositories.NewCredentialRepository(db)
	tokens := repositories.NewTokenRepository(db)
	manager := auth.NewManager(tokens, nil, false)

	// A typed nil would defeat the engine's nil check on the interface.
	if lyrics == nil {
		return NewSessionEngine(users, manager, provider, nil, nil), db
	}
	return NewSessionEngine(users, manager, provider, lyrics, nil), db
}

func TestResolveIdentity(t *testing.T) {
	t.Run("NoCredentials", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		resolution, err := engine.ResolveIdentity(Credentials{})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if resolution.State != Anonymous {
			t.Error("expected Anonymous for empty credentials")
		}
	})

	t.Run("ActiveSession", func(t *testing.T) {
		provider := &mocks.MockProvider{}
		engine, _ := setupEngine(t, provider, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-aaa"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		resolution, err := engine.ResolveIdentity(Credentials{UserID: "spotify-user-1"})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if resolution.State != Authenticated {
			t.Error("expected Authenticated for a valid session")
		}
		if resolution.UserID != "spotify-user-1" {
			t.Errorf("expected spotify-user-1, got %s", resolution.UserID)
		}
		if resolution.RememberToken != "" {
			t.Error("session resolution should not rotate a token")
		}
	})

	t.Run("SessionForDeletedUser", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		resolution, err := engine.ResolveIdentity(Credentials{UserID: "gone"})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if resolution.State != Anonymous {
			t.Error("expected Anonymous when the identity no longer exists")
		}
	})

	t.Run("RememberTokenConsumedAndRotated", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-aaa"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
		token, err := engine.Remember("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		resolution, err := engine.ResolveIdentity(Credentials{RememberToken: token})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if resolution.State != Authenticated {
			t.Error("expected Authenticated from a valid remember token")
		}
		if resolution.RememberToken == "" {
			t.Error("expected a rotated replacement token")
		}
		if resolution.RememberToken == token {
			t.Error("replacement must differ from the presented token")
		}

		// The presented token is spent.
		replay, err := engine.ResolveIdentity(Credentials{RememberToken: token})
		if err != nil {
			t.Fatalf("replay should not error: %v", err)
		}
		if replay.State != Anonymous {
			t.Error("expected Anonymous on token replay")
		}
	})

	t.Run("InvalidTokenIsAnonymous", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		resolution, err := engine.ResolveIdentity(Credentials{RememberToken: "never-issued"})
		if err != nil {
			t.Fatalf("invalid token should not error: %v", err)
		}
		if resolution.State != Anonymous {
			t.Error("expected Anonymous for an unknown token")
		}
	})

	t.Run("SessionShortCircuitsToken", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-aaa"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
		token, err := engine.Remember("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		resolution, err := engine.ResolveIdentity(Credentials{UserID: "spotify-user-1", RememberToken: token})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if resolution.RememberToken != "" {
			t.Error("an active session should leave the remember token untouched")
		}

		// The token stayed live.
		followup, err := engine.ResolveIdentity(Credentials{RememberToken: token})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if followup.State != Authenticated {
			t.Error("token should remain valid after a session visit")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("RefreshBeforeFetch", func(t *testing.T) {
		provider := &mocks.MockProvider{AccessToken: "access-bbb"}
		engine, _ := setupEngine(t, provider, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-aaa"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		resolution, err := engine.Resolve(context.Background(), Credentials{UserID: "spotify-user-1"})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if resolution.AccessToken != "access-bbb" {
			t.Errorf("expected access-bbb, got %s", resolution.AccessToken)
		}
		if provider.RefreshCalls != 1 {
			t.Errorf("expected exactly one refresh, got %d", provider.RefreshCalls)
		}
		if provider.LastRefreshToken != "refresh-aaa" {
			t.Errorf("refresh should use the stored token, got %s", provider.LastRefreshToken)
		}
	})

	t.Run("AnonymousSkipsProvider", func(t *testing.T) {
		provider := &mocks.MockProvider{AccessToken: "access-bbb"}
		engine, _ := setupEngine(t, provider, nil)

		resolution, err := engine.Resolve(context.Background(), Credentials{})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if resolution.State != Anonymous {
			t.Error("expected Anonymous")
		}
		if provider.RefreshCalls != 0 {
			t.Errorf("anonymous resolution must not call the provider, got %d calls", provider.RefreshCalls)
		}
	})

	t.Run("UpstreamAuthFailureSurfaces", func(t *testing.T) {
		provider := &mocks.MockProvider{
			RefreshErr: fmt.Errorf("%w: token refresh: status 400", shared.ErrProvider),
		}
		engine, _ := setupEngine(t, provider, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-revoked"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		_, err := engine.Resolve(context.Background(), Credentials{UserID: "spotify-user-1"})
		if !errors.Is(err, shared.ErrProvider) {
			t.Errorf("expected ErrProvider, got %v", err)
		}
	})
}

func TestAuthorize(t *testing.T) {
	t.Run("StoresRefreshToken", func(t *testing.T) {
		provider := &mocks.MockProvider{
			ExchangeToken: &oauth2.Token{AccessToken: "access-bbb", RefreshToken: "refresh-aaa"},
			IdentityID:    "spotify-user-1",
		}
		engine, _ := setupEngine(t, provider, nil)

		userID, err := engine.Authorize(context.Background(), "auth-code")
		if err != nil {
			t.Fatalf("failed to authorize: %v", err)
		}
		if userID != "spotify-user-1" {
			t.Errorf("expected spotify-user-1, got %s", userID)
		}

		user, err := engine.users.Get("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to get stored user: %v", err)
		}
		if user.RefreshToken != "refresh-aaa" {
			t.Errorf("expected stored refresh token, got %s", user.RefreshToken)
		}
	})

	t.Run("ReauthorizationOverwrites", func(t *testing.T) {
		provider := &mocks.MockProvider{
			ExchangeToken: &oauth2.Token{AccessToken: "access-bbb", RefreshToken: "refresh-old"},
			IdentityID:    "spotify-user-1",
		}
		engine, _ := setupEngine(t, provider, nil)

		if _, err := engine.Authorize(context.Background(), "code-1"); err != nil {
			t.Fatalf("failed to authorize: %v", err)
		}

		provider.ExchangeToken = &oauth2.Token{AccessToken: "access-ccc", RefreshToken: "refresh-new"}
		if _, err := engine.Authorize(context.Background(), "code-2"); err != nil {
			t.Fatalf("failed to reauthorize: %v", err)
		}

		user, err := engine.users.Get("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to get stored user: %v", err)
		}
		if user.RefreshToken != "refresh-new" {
			t.Errorf("expected refresh-new after reauthorization, got %s", user.RefreshToken)
		}
	})

	t.Run("MissingRefreshToken", func(t *testing.T) {
		provider := &mocks.MockProvider{
			ExchangeToken: &oauth2.Token{AccessToken: "access-bbb"},
			IdentityID:    "spotify-user-1",
		}
		engine, _ := setupEngine(t, provider, nil)

		if _, err := engine.Authorize(context.Background(), "auth-code"); !errors.Is(err, shared.ErrProvider) {
			t.Errorf("expected ErrProvider without a refresh token, got %v", err)
		}
	})

	t.Run("ExchangeFailure", func(t *testing.T) {
		provider := &mocks.MockProvider{
			ExchangeErr: fmt.Errorf("%w: code exchange: invalid_grant", shared.ErrProvider),
		}
		engine, _ := setupEngine(t, provider, nil)

		if _, err := engine.Authorize(context.Background(), "bad-code"); !errors.Is(err, shared.ErrProvider) {
			t.Errorf("expected ErrProvider, got %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("RemovesIdentityAndTokens", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		if err := engine.users.Upsert("spotify-user-1", "refresh-aaa"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
		token, err := engine.Remember("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		if err := engine.Logout("spotify-user-1"); err != nil {
			t.Fatalf("failed to logout: %v", err)
		}

		resolution, err := engine.ResolveIdentity(Credentials{RememberToken: token})
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if resolution.State != Anonymous {
			t.Error("tokens must not survive logout")
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		if err := engine.Logout("nobody"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("EmptyUser", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, nil)

		if err := engine.Logout(""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestNowPlaying(t *testing.T) {
	track := &models.NowPlaying{Title: "Karma Police", Artist: "Radiohead", IsPlaying: true}

	t.Run("TrackWithLyrics", func(t *testing.T) {
		provider := &mocks.MockProvider{Playing: track}
		lyrics := &mocks.MockLyrics{Song: &models.Song{Title: "Karma Police", URL: "https://genius.com/karma-police"}}
		engine, _ := setupEngine(t, provider, lyrics)

		playback, err := engine.NowPlaying(context.Background(), "access-bbb")
		if err != nil {
			t.Fatalf("failed to fetch playback: %v", err)
		}

		if playback.Track == nil || playback.Track.Title != "Karma Police" {
			t.Error("expected the playing track")
		}
		if playback.Song == nil || playback.Song.URL != "https://genius.com/karma-police" {
			t.Error("expected the lyrics result")
		}
	})

	t.Run("NothingPlaying", func(t *testing.T) {
		engine, _ := setupEngine(t, &mocks.MockProvider{}, &mocks.MockLyrics{})

		playback, err := engine.NowPlaying(context.Background(), "access-bbb")
		if err != nil {
			t.Fatalf("nothing playing should not error: %v", err)
		}
		if playback.Track != nil {
			t.Error("expected nil track")
		}
	})

	t.Run("LyricsFailureDegrades", func(t *testing.T) {
		provider := &mocks.MockProvider{Playing: track}
		lyrics := &mocks.MockLyrics{Err: fmt.Errorf("%w: status 500", shared.ErrLyricsLookup)}
		engine, _ := setupEngine(t, provider, lyrics)

		playback, err := engine.NowPlaying(context.Background(), "access-bbb")
		if err != nil {
			t.Fatalf("lyrics failure should degrade, not error: %v", err)
		}

		if playback.Track == nil {
			t.Error("expected the track despite the lyrics failure")
		}
		if playback.Song != nil {
			t.Error("expected nil song after lyrics failure")
		}
	})

	t.Run("NoLyricsService", func(t *testing.T) {
		provider := &mocks.MockProvider{Playing: track}
		engine, _ := setupEngine(t, provider, nil)

		playback, err := engine.NowPlaying(context.Background(), "access-bbb")
		if err != nil {
			t.Fatalf("failed to fetch playback: %v", err)
		}
		if playback.Song != nil {
			t.Error("expected nil song with lookup disabled")
		}
	})

	t.Run("ProviderFailurePropagates", func(t *testing.T) {
		provider := &mocks.MockProvider{PlayingErr: fmt.Errorf("%w: status 502", shared.ErrProvider)}
		engine, _ := setupEngine(t, provider, nil)

		if _, err := engine.NowPlaying(context.Background(), "access-bbb"); !errors.Is(err, shared.ErrProvider) {
			t.Errorf("expected ErrProvider, got %v", err)
		}
	})
}
