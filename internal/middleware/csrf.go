package middleware

import (
	"log/slog"
	"net/http"

	"github.com/seanmccall/folio/internal/auth"
)

// CSRFProtection validates CSRF tokens on state-changing admin requests.
// Runs after the session middleware; the token arrives in the X-CSRF-Token
// header and must belong to the signed-in user.
func CSRFProtection(csrfManager *auth.CSRFTokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			view := auth.GetSessionFromContext(r)
			if view == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			// Bearer-token clients are not cookie-authenticated and carry no
			// CSRF exposure.
			if _, err := r.Cookie(auth.SessionCookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			csrfToken := r.Header.Get("X-CSRF-Token")
			if csrfToken == "" {
				logger.Warn("CSRF token missing in request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("user_id", view.UserID))
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if !csrfManager.ValidateToken(csrfToken, view.UserID) {
				logger.Warn("CSRF token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("user_id", view.UserID))
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
