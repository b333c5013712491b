// Package auth implements the remember-me token lifecycle and the signed
// session cookie codec.
//
// # Remember-Me Tokens
//
// [Manager] issues, validates, consumes, and rotates single-use remember-me
// tokens against the credential store. A token is valid for exactly one
// successful consumption; validation consumes it and immediately issues a
// replacement, so a client always holds at most one currently valid token.
// Token values come from crypto/rand only and are never logged.
//
// # Sessions
//
// [SessionCodec] signs and verifies the short-lived session cookie as an
// HMAC-SHA256 JWT carrying the opaque user id. The codec holds no state; the
// credential store stays the single source of truth for who exists.
package auth
