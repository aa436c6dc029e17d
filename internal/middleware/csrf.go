// Package middleware provides HTTP middleware for the daily report application.
package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/nippo-app/nippo/internal/session"
)

// CSRFFieldName is the form field carrying the anti-forgery token.
const CSRFFieldName = "csrf_token"

// Guard issues and verifies anti-forgery tokens. The token is the session
// token itself: forms embed it as a hidden field, and a mutating request is
// accepted only when the submitted value matches the token of the session
// that sent it. An attacker's page cannot read the victim's session token,
// so it cannot forge the field.
//
// Everything token-related goes through this type, so swapping in an
// independent per-session random value later touches only this file.
type Guard struct {
	sm *session.Manager
}

// NewGuard creates a Guard bound to the session manager.
func NewGuard(sm *session.Manager) *Guard {
	return &Guard{sm: sm}
}

// Issue returns the token forms must embed for the current session.
func (g *Guard) Issue(ctx context.Context) string {
	return g.sm.Token(ctx)
}

// Verify reports whether the supplied form value is the current session's
// token. An empty token on either side never verifies.
func (g *Guard) Verify(ctx context.Context, supplied string) bool {
	expected := g.sm.Token(ctx)
	if expected == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// Middleware rejects mutating requests whose form token does not verify.
// The check runs before the wrapped handler, so a forged request never
// reaches validation or persistence. GET and HEAD pass through untouched.
// Rejections are answered by forbidden; a nil forbidden falls back to a
// plain-text 403.
func (g *Guard) Middleware(forbidden http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !g.Verify(r.Context(), r.PostFormValue(CSRFFieldName)) {
				slog.WarnContext(r.Context(), "anti-forgery token mismatch",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				if forbidden != nil {
					forbidden(w, r)
					return
				}
				http.Error(w, "Forbidden - invalid anti-forgery token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
