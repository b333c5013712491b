// Package tasks orchestrates session resolution and the now-playing flow.
//
// # Session Resolution
//
// The [SessionFlow] interface defines the per-request state machine:
//
//	Anonymous → (active session)     → Authenticated
//	Anonymous → (remember-me cookie) → token validation → Authenticated | Anonymous
//
// An active session identity short-circuits token validation entirely. A
// presented remember-me token is consumed and rotated in one logical step; an
// invalid token resolves to Anonymous without a visible error so the endpoint
// cannot be used as a token-guessing oracle. Once an identity is established
// the flow exchanges the stored refresh token for an access token; a refresh
// failure is a distinguishable upstream-auth failure, never a silent
// fall-back to Anonymous.
//
// # Concurrency
//
// One flow runs per inbound request. Steps inside a flow are strictly
// sequential (consumption → rotation → refresh → resource fetch); flows for
// different requests share nothing but the credential store, whose
// transaction semantics carry all cross-request atomicity.
//
// # Implementation
//
// [SessionEngine] implements [SessionFlow] with dependencies on:
//   - [CredentialSource] : the users relation (repositories.CredentialRepository)
//   - [TokenRotator] : remember-me lifecycle (auth.Manager)
//   - [services.Provider] : OAuth exchanges and playback queries
//   - [services.LyricsService] : optional lyrics lookup
package tasks
