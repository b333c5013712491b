package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/services"
	"github.com/desertthunder/lyrix/internal/shared"
)

// State is the authentication state a resolution lands in.
type State int

const (
	Anonymous State = iota
	Authenticated
)

// Credentials carries what the transport layer extracted from an inbound
// request. Either field may be empty.
type Credentials struct {
	UserID        string // identity from an active session cookie
	RememberToken string // remember-me cookie value
}

// Resolution is the outcome of resolving a request to an identity and a
// usable access token.
type Resolution struct {
	State       State
	UserID      string
	AccessToken string

	// RememberToken is the rotated replacement to re-deliver to the client.
	// Empty when no token was consumed or when rotation failed after a
	// successful consumption (the client is authenticated but not re-armed).
	RememberToken string
}

// Playback bundles the current track with its lyrics lookup result.
// Song is nil when the track has no Genius entry or lookup is disabled.
type Playback struct {
	Track *models.NowPlaying
	Song  *models.Song
}

// CredentialSource is the users relation as the flow consumes it.
// Implemented by [repositories.CredentialRepository].
type CredentialSource interface {
	Upsert(id, refreshToken string) error
	Get(id string) (*models.UserIdentity, error)
	Delete(id string) error
}

// TokenRotator is the remember-me lifecycle as the flow consumes it.
// Implemented by [auth.Manager].
type TokenRotator interface {
	Issue(ownerID string) (string, error)
	ValidateAndRotate(token string) (ownerID, next string, err error)
}

// SessionFlow defines the orchestration operations the transport layer drives.
type SessionFlow interface {
	// ResolveIdentity maps inbound credentials to an identity without
	// touching the provider. Store reads and the remember-me consumption
	// happen here.
	ResolveIdentity(creds Credentials) (*Resolution, error)

	// GrantAccess exchanges the identity's stored refresh token for an
	// access token. Called right before a resource fetch.
	GrantAccess(ctx context.Context, userID string) (string, error)

	// Resolve composes ResolveIdentity and GrantAccess: credentials in,
	// identity plus usable access token out.
	Resolve(ctx context.Context, creds Credentials) (*Resolution, error)

	// Authorize completes the authorization-code callback: exchanges the
	// code, resolves the provider identity, and stores the refresh token.
	Authorize(ctx context.Context, code string) (string, error)

	// Remember issues a persistent-login token for a user who opted in.
	Remember(userID string) (string, error)

	// Logout removes the identity and all its remember-me tokens.
	Logout(userID string) error

	// NowPlaying fetches the current track and its lyrics lookup result.
	NowPlaying(ctx context.Context, accessToken string) (*Playback, error)
}

// SessionEngine implements [SessionFlow].
type SessionEngine struct {
	users    CredentialSource
	manager  TokenRotator
	provider services.Provider
	lyrics   services.LyricsService
	logger   *log.Logger
}

// NewSessionEngine creates a [SessionEngine]. The lyrics service may be nil,
// in which case NowPlaying skips the lookup.
func NewSessionEngine(users CredentialSource, manager TokenRotator, provider services.Provider, lyrics services.LyricsService, logger *log.Logger) *SessionEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SessionEngine{
		users:    users,
		manager:  manager,
		provider: provider,
		lyrics:   lyrics,
		logger:   logger,
	}
}

// ResolveIdentity walks the state machine for one request up to the point an
// identity is (or is not) established.
//
// Store failures propagate as [shared.ErrStore] wraps; an invalid remember
// token is a normal Anonymous outcome, not an error.
func (e *SessionEngine) ResolveIdentity(creds Credentials) (*Resolution, error) {
	userID := creds.UserID
	rotated := ""

	if userID == "" && creds.RememberToken != "" {
		owner, next, err := e.manager.ValidateAndRotate(creds.RememberToken)
		if err != nil {
			if errors.Is(err, shared.ErrInvalidToken) {
				return &Resolution{State: Anonymous}, nil
			}
			return nil, err
		}
		userID = owner
		rotated = next
	}

	if userID == "" {
		return &Resolution{State: Anonymous}, nil
	}

	if _, err := e.users.Get(userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Session references an identity that has since logged out.
			return &Resolution{State: Anonymous}, nil
		}
		return nil, err
	}

	return &Resolution{
		State:         Authenticated,
		UserID:        userID,
		RememberToken: rotated,
	}, nil
}

// GrantAccess loads the identity's refresh token and exchanges it. A
// provider failure here is an upstream-auth failure the caller must surface,
// never a silent fall-back to Anonymous.
func (e *SessionEngine) GrantAccess(ctx context.Context, userID string) (string, error) {
	user, err := e.users.Get(userID)
	if err != nil {
		return "", err
	}

	access, err := e.provider.Refresh(ctx, user.RefreshToken)
	if err != nil {
		return "", err
	}

	return access, nil
}

// Resolve composes [SessionEngine.ResolveIdentity] and
// [SessionEngine.GrantAccess] into the full credentials-to-access-token flow.
func (e *SessionEngine) Resolve(ctx context.Context, creds Credentials) (*Resolution, error) {
	resolution, err := e.ResolveIdentity(creds)
	if err != nil || resolution.State != Authenticated {
		return resolution, err
	}

	access, err := e.GrantAccess(ctx, resolution.UserID)
	if err != nil {
		return nil, err
	}

	resolution.AccessToken = access
	return resolution, nil
}

// Authorize completes the interactive login: only this path writes refresh
// tokens to the store.
func (e *SessionEngine) Authorize(ctx context.Context, code string) (string, error) {
	token, err := e.provider.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	id, err := e.provider.Identity(ctx, token.AccessToken)
	if err != nil {
		return "", err
	}

	if token.RefreshToken == "" {
		return "", fmt.Errorf("%w: authorization returned no refresh token", shared.ErrProvider)
	}

	if err := e.users.Upsert(id, token.RefreshToken); err != nil {
		return "", err
	}

	e.logger.Info("user authorized", "user", id)
	return id, nil
}

// Remember issues a remember-me token for an explicit opt-in.
func (e *SessionEngine) Remember(userID string) (string, error) {
	return e.manager.Issue(userID)
}

// Logout deletes the identity; the store cascades to its remember tokens.
func (e *SessionEngine) Logout(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", shared.ErrInvalidInput)
	}
	return e.users.Delete(userID)
}

// NowPlaying fetches the current track and, when something is playing, its
// lyrics lookup result. A lookup miss or failure degrades to a nil Song;
// only playback-query failures propagate.
func (e *SessionEngine) NowPlaying(ctx context.Context, accessToken string) (*Playback, error) {
	track, err := e.provider.CurrentlyPlaying(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	playback := &Playback{Track: track}
	if track == nil || e.lyrics == nil {
		return playback, nil
	}

	song, err := e.lyrics.Search(ctx, track.Title, track.Artist)
	if err != nil {
		e.logger.Warn("lyrics lookup failed", "title", track.Title, "artist", track.Artist, "error", err)
		return playback, nil
	}

	playback.Song = song
	return playback, nil
}
