// Genius implementation of [LyricsService]
//
// Uses the public search endpoint: https://docs.genius.com/#search-h2
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/lyrix/internal/models"
	"github.com/desertthunder/lyrix/internal/shared"
)

const geniusBaseURL = "https://api.genius.com"

// geniusHit is a single search result wrapper.
type geniusHit struct {
	Type   string `json:"type"`
	Result struct {
		Title        string `json:"title"`
		URL          string `json:"url"`
		ThumbnailURL string `json:"song_art_image_thumbnail_url"`
		PrimaryArtist struct {
			Name string `json:"name"`
		} `json:"primary_artist"`
	} `json:"result"`
}

type geniusSearchResponse struct {
	Response struct {
		Hits []geniusHit `json:"hits"`
	} `json:"response"`
}

// GeniusService implements [LyricsService] against the Genius API.
type GeniusService struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewGeniusService creates a Genius client. A nil http client gets the
// default bounded one.
func NewGeniusService(accessToken string, client *http.Client) *GeniusService {
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}

	return &GeniusService{
		accessToken: accessToken,
		baseURL:     geniusBaseURL,
		httpClient:  client,
	}
}

func (g *GeniusService) Name() string {
	return "Genius"
}

// Search queries Genius for a title/artist pair and returns the first song
// hit. A track with no Genius entry yields a [shared.ErrNotFound] wrap so
// callers can render it apart from transport failures.
func (g *GeniusService) Search(ctx context.Context, title, artist string) (*models.Song, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", shared.ErrInvalidInput)
	}

	query := url.QueryEscape(title + " " + artist)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?q="+query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLyricsLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrLyricsLookup, resp.StatusCode)
	}

	var payload geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrLyricsLookup, err)
	}

	for _, hit := range payload.Response.Hits {
		if hit.Type != "" && hit.Type != "song" {
			continue
		}
		return &models.Song{
			Title:     hit.Result.Title,
			Artist:    hit.Result.PrimaryArtist.Name,
			URL:       hit.Result.URL,
			Thumbnail: hit.Result.ThumbnailURL,
		}, nil
	}

	return nil, fmt.Errorf("%w: song not on Genius: %s", shared.ErrNotFound, title)
}
