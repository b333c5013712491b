// Package models defines domain entities for the lyrix persistent-login and
// now-playing service.
//
// Two categories of types live here:
//
// 1. Persistent entities backed by the SQLite credential store:
//   - [UserIdentity] : a Spotify account id paired with its current OAuth refresh token
//   - [RememberToken] : an outstanding single-use remember-me token and its owner
//
// 2. Data Transfer Objects (DTOs) for provider responses:
//   - [NowPlaying] : the track a user is currently listening to
//   - [Song] : a lyrics lookup result
//
// Identities are keyed by the id the OAuth provider reports; nothing is
// generated locally. A user holds at most one refresh token (overwritten on
// every successful authorization) and zero or more remember-me tokens, each
// valid for exactly one consumption.
package models
