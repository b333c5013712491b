// Spotify implementation of [Provider]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// providerTimeout bounds every outbound Spotify call. A timeout is a
	// provider error; the end user retries by reloading.
	providerTimeout = 10 * time.Second
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
}

// SpotifyCurrentlyPlaying represents the playback state response.
type SpotifyCurrentlyPlaying struct {
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *SpotifyTrack `json:"item"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyService implements [Provider] for the Spotify Web API.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
	tokenURL   string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"user-read-currently-playing"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: &http.Client{Timeout: providerTimeout},
		baseURL:    spotifyBaseURL,
		tokenURL:   spotifyTokenURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login. The consent
// dialog is always shown so a user can switch accounts.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for an access/refresh token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", shared.ErrProvider, err)
	}
	return token, nil
}

// Refresh performs the refresh-token exchange: grant_type=refresh_token with
// client credentials as basic auth. The credential store is never touched
// here and nothing is retried.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: empty refresh token", shared.ErrInvalidInput)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token refresh: %v", shared.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token refresh: status %d", shared.ErrProvider, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: token refresh: %v", shared.ErrProvider, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: token refresh: empty access token", shared.ErrProvider)
	}

	return payload.AccessToken, nil
}

// Identity resolves the provider account id behind an access token.
func (s *SpotifyService) Identity(ctx context.Context, accessToken string) (string, error) {
	var user SpotifyUser
	status, err := s.doRequest(ctx, accessToken, "/me", &user)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || user.ID == "" {
		return "", fmt.Errorf("%w: profile: status %d", shared.ErrProvider, status)
	}
	return user.ID, nil
}

// CurrentlyPlaying queries the playback state. A 204 means nothing is
// playing and maps to (nil, nil); only unexpected statuses are errors.
func (s *SpotifyService) CurrentlyPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error) {
	var playing SpotifyCurrentlyPlaying
	status, err := s.doRequest(ctx, accessToken, "/me/player/currently-playing", &playing)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		if playing.Item == nil {
			return nil, nil
		}
		return toNowPlaying(&playing), nil
	case http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: currently playing: status %d", shared.ErrProvider, status)
	}
}

// doRequest performs an authenticated GET against the Spotify API and
// decodes the body when one is present. Returns the response status so
// callers can classify 200 vs 204 themselves.
func (s *SpotifyService) doRequest(ctx context.Context, accessToken, endpoint string, result any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", shared.ErrProvider, err)
		}
	}

	return resp.StatusCode, nil
}

// toNowPlaying flattens the Spotify playback payload into the DTO the rest
// of the app consumes: primary artist, track name, largest artwork.
func toNowPlaying(playing *SpotifyCurrentlyPlaying) *models.NowPlaying {
	track := playing.Item

	np := &models.NowPlaying{
		Title:      track.Name,
		Album:      track.Album.Name,
		ProgressMS: playing.ProgressMS,
		DurationMS: track.DurationMS,
		IsPlaying:  playing.IsPlaying,
	}

	if len(track.Artists) > 0 {
		np.Artist = track.Artists[0].Name
	}
	if len(track.Album.Images) > 0 {
		np.ArtworkURL = track.Album.Images[0].URL
	}

	return np
}
