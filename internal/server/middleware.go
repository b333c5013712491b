package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrix/internal/tasks"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom extracts the resolved user identity from a request context.
func IdentityFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(identityKey).(string)
	return userID, ok && userID != ""
}

// WithLogging logs every request with method, path, status, and duration.
func WithLogging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithSession resolves the inbound session or remember-me cookie before any
// handler runs.
//
// A valid session short-circuits token validation. A presented remember-me
// token is consumed and rotated; the replacement goes back out on the same
// cookie and a fresh session is established. An invalid token just clears
// the cookie and continues anonymously, so the response does not reveal
// whether a guessed value ever existed.
func (a *App) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := tasks.Credentials{}

		if c, err := r.Cookie(sessionCookie); err == nil {
			if userID, err := a.sessions.Verify(c.Value); err == nil {
				creds.UserID = userID
			}
		}

		presentedToken := false
		if creds.UserID == "" {
			if c, err := r.Cookie(rememberCookie); err == nil && c.Value != "" {
				creds.RememberToken = c.Value
				presentedToken = true
			}
		}

		resolution, err := a.flow.ResolveIdentity(creds)
		if err != nil {
			a.logger.Error("session resolution failed", "error", err)
			a.renderDialog(w, http.StatusInternalServerError, "ERROR", "Something went wrong. Please try again.")
			return
		}

		if resolution.State != tasks.Authenticated {
			if presentedToken {
				a.clearCookie(w, rememberCookie)
			}
			next.ServeHTTP(w, r)
			return
		}

		if presentedToken {
			if err := a.establishSession(w, resolution.UserID); err != nil {
				a.logger.Error("failed to establish session", "user", resolution.UserID, "error", err)
			}
			if resolution.RememberToken != "" {
				a.setRememberCookie(w, resolution.RememberToken)
			} else {
				// Consumed but not re-armed; drop the dead value.
				a.clearCookie(w, rememberCookie)
			}
		}

		ctx := context.WithValue(r.Context(), identityKey, resolution.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
