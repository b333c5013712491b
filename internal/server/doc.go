// Package server provides HTTP routing, middleware, and the page handlers
// for the lyrix web app.
//
// # Routes
//
//	GET /              → now-playing lyrics page, or landing page when anonymous
//	GET /auth/spotify  → redirect to the provider consent screen
//	GET /callback      → authorization-code exchange, session establishment
//	GET /remember      → opt in to persistent login (sets the remember cookie)
//	GET /logout        → clear cookies, delete the identity and its tokens
//
// # Session Resolution
//
// [App.WithSession] runs before every handler, mirroring how the original
// persistent-login middleware sat in front of the routes: it verifies the
// session cookie, else consumes a presented remember-me cookie, rotates it,
// re-sets the cookie with the replacement, and establishes a fresh session.
// Handlers read the resolved identity from the request context. An invalid
// remember token clears the cookie and continues anonymously — the response
// never reveals whether a guessed token existed.
//
// # Cookies
//
//   - lyrix_session: HMAC-signed JWT with the user id; HttpOnly, session-scoped
//   - remember_me: single-use rotating token; path /, HttpOnly, max-age ~500 days
package server
