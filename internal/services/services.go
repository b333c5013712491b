package services

import (
	"context"

	"github.com/desertthunder/lyrix/internal/models"
	"golang.org/x/oauth2"
)

// Provider is the OAuth music provider surface the session resolution flow
// depends on.
type Provider interface {
	// AuthURL returns the consent URL for the interactive authorization-code flow.
	AuthURL(state string) string

	// Exchange trades an authorization code for an access/refresh token pair.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Identity resolves the provider account id for an access token.
	Identity(ctx context.Context, accessToken string) (string, error)

	// Refresh trades a stored refresh token for a fresh access token.
	// Never retried internally; a failure means the caller should fall back
	// to interactive login.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// CurrentlyPlaying queries what the user is listening to right now.
	// A nil track with a nil error means nothing is playing.
	CurrentlyPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error)

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// LyricsService looks up lyrics metadata for a track.
type LyricsService interface {
	// Search returns the best match for a title/artist pair.
	Search(ctx context.Context, title, artist string) (*models.Song, error)

	// Name returns the service name (e.g., "Genius")
	Name() string
}
