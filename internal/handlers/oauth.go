package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// OAuthServiceInterface defines the interface for the provider sign-in flow
type OAuthServiceInterface interface {
	AuthCodeURL(state string) string
	SignIn(ctx context.Context, code string, meta services.LoginMetadata) (*services.LoginResult, error)
}

// OAuthHandler handles the provider authorization round trip
type OAuthHandler struct {
	service      OAuthServiceInterface
	csrf         *auth.CSRFTokenManager
	cookies      auth.CookieConfig
	cookieMaxAge int
	ipConfig     *pkghttp.IPConfig
	appBaseURL   string
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(service OAuthServiceInterface, csrf *auth.CSRFTokenManager, cookies auth.CookieConfig, cookieMaxAge int, ipConfig *pkghttp.IPConfig, appBaseURL string) *OAuthHandler {
	return &OAuthHandler{
		service:      service,
		csrf:         csrf,
		cookies:      cookies,
		cookieMaxAge: cookieMaxAge,
		ipConfig:     ipConfig,
		appBaseURL:   appBaseURL,
	}
}

// Begin starts the authorization flow: mints a state nonce, stores it in a
// short-lived cookie, and redirects to the provider.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	state := hex.EncodeToString(stateBytes)

	auth.SetStateCookie(w, state, h.cookies)
	http.Redirect(w, r, h.service.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the authorization flow. The state nonce from the query
// must match the one set at Begin, then the code is exchanged for a session.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// Headers are buffered until the first write, so the cleanup cookie can
	// be set up front regardless of which branch responds.
	auth.ClearStateCookie(w, h.cookies)

	wantState, err := auth.GetStateCookie(r)
	if err != nil || wantState == "" || r.URL.Query().Get("state") != wantState {
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		// The user declined at the consent screen
		h.redirectWithError(w, r, "access_denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	meta := services.LoginMetadata{
		IP:        pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}

	result, err := h.service.SignIn(r.Context(), code, meta)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrProviderLinkConflict):
			h.redirectWithError(w, r, "account_conflict")
		case errors.Is(err, models.ErrUnauthorized):
			h.redirectWithError(w, r, "sign_in_failed")
		default:
			h.redirectWithError(w, r, "server_error")
		}
		return
	}

	auth.SetSessionCookie(w, result.Token, h.cookieMaxAge, h.cookies)
	if csrfToken, err := h.csrf.GenerateToken(result.User.ID); err == nil {
		auth.SetCSRFTokenCookie(w, csrfToken, h.cookieMaxAge, h.cookies)
	}

	http.Redirect(w, r, h.appBaseURL, http.StatusFound)
}

// redirectWithError sends the browser back to the app with an error code in
// the query string so the frontend can show something useful.
func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	target := h.appBaseURL + "/login?error=" + url.QueryEscape(code)
	http.Redirect(w, r, target, http.StatusFound)
}
