// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/desertthunder/lyrix/internal/models"
	"golang.org/x/oauth2"
)

// MockProvider is a scripted test double for [services.Provider].
type MockProvider struct {
	AccessToken   string
	IdentityID    string
	ExchangeToken *oauth2.Token
	Playing       *models.NowPlaying

	RefreshErr  error
	ExchangeErr error
	IdentityErr error
	PlayingErr  error

	RefreshCalls     int
	LastRefreshToken string
}

func (m *MockProvider) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	return m.ExchangeToken, nil
}

func (m *MockProvider) Identity(ctx context.Context, accessToken string) (string, error) {
	if m.IdentityErr != nil {
		return "", m.IdentityErr
	}
	return m.IdentityID, nil
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (string, error) {
	m.RefreshCalls++
	m.LastRefreshToken = refreshToken
	if m.RefreshErr != nil {
		return "", m.RefreshErr
	}
	return m.AccessToken, nil
}

func (m *MockProvider) CurrentlyPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error) {
	if m.PlayingErr != nil {
		return nil, m.PlayingErr
	}
	return m.Playing, nil
}

func (m *MockProvider) Name() string { return "mock" }

// MockLyrics is a test double for [services.LyricsService].
type MockLyrics struct {
	Song *models.Song
	Err  error
}

func (m *MockLyrics) Search(ctx context.Context, title, artist string) (*models.Song, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Song, nil
}

func (m *MockLyrics) Name() string { return "mock" }

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// NewResponse builds an *http.Response with the given status and body.
func NewResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}
