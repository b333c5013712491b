// Package services defines the [Provider] interface for the OAuth music
// provider and the [LyricsService] interface for lyrics lookup, and
// implements both for Spotify and Genius.
//
// # Provider Interface
//
// [SpotifyService] covers the three provider interactions the session flow
// needs: the interactive authorization-code exchange, the refresh-token
// exchange for short-lived access tokens, and the currently-playing resource
// query.
//
// # Refresh Semantics
//
// Refresh performs a single bounded token exchange and never retries; a
// failed refresh surfaces as [shared.ErrProvider] and the caller falls back
// to a fresh interactive login. The service never touches the credential
// store — only the authorization callback path persists refresh tokens.
//
// # Currently Playing
//
// Spotify answers the resource query three ways and each maps to a distinct
// outcome:
//   - 200: track data, returned as a [models.NowPlaying]
//   - 204: no active playback, returned as (nil, nil) — not an error
//   - anything else: wrapped [shared.ErrProvider], surfaced, never retried
//
// # Lyrics Lookup
//
// [GeniusService] implements [LyricsService] against the Genius search API.
// A track with no Genius entry is a [shared.ErrNotFound] wrap so the caller
// can render it apart from transport failures.
package services
