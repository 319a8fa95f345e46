package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/seanmccall/folio/internal/models"
	httputil "github.com/seanmccall/folio/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the session view in context
	SessionContextKey contextKey = "session"
)

// RequireSession validates the session token from the cookie or the
// Authorization header, runs the renewal policy, and injects the redacted
// session view into the request context. Raw provider tokens never leave
// this middleware.
func RequireSession(sm *SessionManager, refresher TokenRefresher, cookies CookieConfig, cookieMaxAge int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			claims, err := sm.Validate(tokenString)
			if err != nil {
				httputil.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			now := time.Now()
			renewed := Renew(r.Context(), claims, now, refresher)

			if renewed != claims || sm.ShouldReissue(renewed, now) {
				if signed, err := sm.Reissue(renewed); err == nil {
					SetSessionCookie(w, signed, cookieMaxAge, cookies)
				}
				// Re-sign failure is not fatal: the current token is still valid
			}

			ctx := WithSession(r.Context(), View(renewed))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces owner-only access. Must run after RequireSession.
// Denials are deliberately uniform so they reveal nothing about the
// resource behind the gate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Authorize(GetSessionFromContext(r)) {
			httputil.WriteForbidden(w, "not authorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authorize is the single admission decision: a present session with the
// admin flag set. Everything else, including no session at all, is denied.
func Authorize(view *models.SessionView) bool {
	return view != nil && view.IsAdmin
}

// WithSession returns a context carrying the session view
func WithSession(ctx context.Context, view *models.SessionView) context.Context {
	return context.WithValue(ctx, SessionContextKey, view)
}

// GetSessionFromContext extracts the session view from request context
func GetSessionFromContext(r *http.Request) *models.SessionView {
	view, ok := r.Context().Value(SessionContextKey).(*models.SessionView)
	if !ok {
		return nil
	}
	return view
}

// extractToken prefers the session cookie, falling back to a Bearer token
// for non-browser clients.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
