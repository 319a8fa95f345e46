package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// AuthServiceInterface defines the interface for credentials auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, mfaCode string, meta services.LoginMetadata) (*services.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	csrf         *auth.CSRFTokenManager
	cookies      auth.CookieConfig
	cookieMaxAge int
	ipConfig     *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, csrf *auth.CSRFTokenManager, cookies auth.CookieConfig, cookieMaxAge int, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		csrf:         csrf,
		cookies:      cookies,
		cookieMaxAge: cookieMaxAge,
		ipConfig:     ipConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	MFACode  string `json:"mfa_code,omitempty"`
}

// LoginResponse returns the signed-in identity; the session itself travels
// in the httpOnly cookie.
type LoginResponse struct {
	User models.Identity `json:"user"`
}

// Login handles credentials sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	meta := services.LoginMetadata{
		IP:        pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, req.MFACode, meta)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMFACodeRequired):
			pkghttp.WriteError(w, http.StatusUnauthorized, "mfa_required", "A verification code is required")
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, result.Token, h.cookieMaxAge, h.cookies)
	if csrfToken, err := h.csrf.GenerateToken(result.User.ID); err == nil {
		auth.SetCSRFTokenCookie(w, csrfToken, h.cookieMaxAge, h.cookies)
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{User: result.User})
}

// Logout clears the session and CSRF cookies. The session token itself is
// stateless, so logout is purely a client-side affair.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := auth.GetCSRFTokenCookie(r); err == nil {
		h.csrf.RevokeToken(token)
	}

	auth.ClearSessionCookie(w, h.cookies)
	auth.ClearCSRFTokenCookie(w, h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session returns the redacted view of the current session. Runs behind
// the session middleware; provider tokens are never part of the payload.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"session": view})
}

// CSRFToken issues a fresh CSRF token for the signed-in user
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	token, err := h.csrf.GenerateToken(view.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.SetCSRFTokenCookie(w, token, h.cookieMaxAge, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}
