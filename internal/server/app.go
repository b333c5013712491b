package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrix/internal/auth"
	"github.com/desertthunder/lyrix/internal/services"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/desertthunder/lyrix/internal/tasks"
)

const (
	sessionCookie  = "lyrix_session"
	rememberCookie = "remember_me"
	stateCookie    = "oauth_state"

	// stateMaxAge bounds how long a pending consent redirect stays valid.
	stateMaxAge = 600
)

// App implements [Handler] for all lyrix pages.
type App struct {
	flow           tasks.SessionFlow
	sessions       *auth.SessionCodec
	provider       services.Provider
	logger         *log.Logger
	rememberMaxAge int
}

// AppOpts contains the dependencies for creating an [App].
type AppOpts struct {
	Flow           tasks.SessionFlow
	Sessions       *auth.SessionCodec
	Provider       services.Provider
	Logger         *log.Logger
	RememberMaxAge int
}

// NewApp creates the page handler with its injected dependencies.
func NewApp(opts AppOpts) *App {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RememberMaxAge <= 0 {
		opts.RememberMaxAge = 15770000
	}

	return &App{
		flow:           opts.Flow,
		sessions:       opts.Sessions,
		provider:       opts.Provider,
		logger:         opts.Logger,
		rememberMaxAge: opts.RememberMaxAge,
	}
}

// Routes returns the HTTP routes this handler serves.
func (a *App) Routes() []string {
	return []string{"/", "/auth/spotify", "/callback", "/remember", "/logout"}
}

// ServeHTTP dispatches to the page handlers.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		a.Index(w, r)
	case "/auth/spotify":
		a.AuthRedirect(w, r)
	case "/callback":
		a.Callback(w, r)
	case "/remember":
		a.Remember(w, r)
	case "/logout":
		a.Logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Index renders the landing page for anonymous visitors, or the now-playing
// lyrics page for an authenticated one.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFrom(r.Context())
	if !ok {
		a.render(w, http.StatusOK, "index.html", nil)
		return
	}

	access, err := a.flow.GrantAccess(r.Context(), userID)
	if err != nil {
		// An upstream auth failure is rendered as such, never masked as
		// "not logged in".
		if errors.Is(err, shared.ErrProvider) {
			a.renderDialog(w, http.StatusBadGateway, "ERROR", "Could not establish a connection with Spotify.")
			return
		}
		a.logger.Error("failed to grant access", "user", userID, "error", err)
		a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
		return
	}

	playback, err := a.flow.NowPlaying(r.Context(), access)
	if err != nil {
		a.renderDialog(w, http.StatusBadGateway, "ERROR", fmt.Sprintf("Could not get the currently playing song. %v", err))
		return
	}

	if playback.Track == nil {
		a.renderDialog(w, http.StatusOK, "NOTHING PLAYING", "Could not get the currently playing song. Try disabling private mode or play a song.")
		return
	}

	a.render(w, http.StatusOK, "lyrics.html", playback)
}

// AuthRedirect sends the visitor to the provider consent screen with a
// single-use state value pinned in a short-lived cookie.
func (a *App) AuthRedirect(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   stateMaxAge,
	})

	http.Redirect(w, r, a.provider.AuthURL(state), http.StatusFound)
}

// Callback completes the authorization-code exchange, stores the refresh
// token, establishes a session, and offers persistent login.
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	stateParam := r.URL.Query().Get("state")
	c, err := r.Cookie(stateCookie)
	if err != nil || stateParam == "" || c.Value != stateParam {
		a.renderDialog(w, http.StatusBadRequest, "ERROR", "Invalid state parameter.")
		return
	}
	a.clearCookie(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		a.renderDialog(w, http.StatusBadRequest, "ERROR", "Authorization failed.")
		return
	}

	userID, err := a.flow.Authorize(r.Context(), code)
	if err != nil {
		if errors.Is(err, shared.ErrProvider) {
			a.renderDialog(w, http.StatusBadGateway, "ERROR", "Could not establish a connection with Spotify.")
			return
		}
		a.logger.Error("authorization failed", "error", err)
		a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
		return
	}

	if err := a.establishSession(w, userID); err != nil {
		a.logger.Error("failed to establish session", "user", userID, "error", err)
		a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
		return
	}

	a.render(w, http.StatusOK, "dialog.html", dialogData{Title: "REMEMBER USER?", ShowRemember: true})
}

// Remember opts the current user in to persistent login. The plaintext token
// travels only in the cookie; it is never logged or echoed elsewhere.
func (a *App) Remember(w http.ResponseWriter, r *http.Request) {
	userID, ok := IdentityFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	token, err := a.flow.Remember(userID)
	if err != nil {
		a.logger.Error("failed to issue remember token", "user", userID, "error", err)
		a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
		return
	}

	a.setRememberCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears both cookies and deletes the identity; the store cascades to
// its remember tokens.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.clearCookie(w, rememberCookie)
	a.clearCookie(w, sessionCookie)

	userID, ok := IdentityFrom(r.Context())
	if ok {
		if err := a.flow.Logout(userID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			a.logger.Error("logout cleanup failed", "user", userID, "error", err)
			a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// establishSession signs and sets the session cookie for a user.
func (a *App) establishSession(w http.ResponseWriter, userID string) error {
	signed, err := a.sessions.Sign(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
	})

	return nil
}

func (a *App) setRememberCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   a.rememberMaxAge,
	})
}

func (a *App) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
