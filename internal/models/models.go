package models

import "time"

// UserIdentity is a provider account known to the store.
//
// ID is the opaque identifier reported by Spotify; it is never generated
// locally. RefreshToken is the current long-lived OAuth credential and is
// overwritten on every successful authorization.
type UserIdentity struct {
	ID           string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RememberToken is an outstanding single-use persistent-login credential.
//
// Token is a high-entropy bearer value delivered to the client as a cookie.
// OwnerID references the UserIdentity the token was issued for.
type RememberToken struct {
	Token     string
	OwnerID   string
	CreatedAt time.Time
}

// NowPlaying describes the track a user is currently listening to.
type NowPlaying struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	ProgressMS int
	DurationMS int
	IsPlaying  bool
}

// Song is a lyrics lookup result for a now-playing track.
type Song struct {
	Title     string
	Artist    string
	URL       string
	Thumbnail string
}
