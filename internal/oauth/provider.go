// Package oauth wraps the third-party identity provider: the initial
// authorization-code exchange and the refresh-token exchange. Every outbound
// call is bounded by a timeout; a timed-out refresh is indistinguishable
// from a rejected one.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/seanmccall/folio/internal/models"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Token is the provider token set carried into the session.
type Token struct {
	AccessToken  string
	RefreshToken string // may be empty; providers often omit it on refresh
	Expiry       time.Time
}

// Claims is the identity the provider asserts about the signed-in account.
type Claims struct {
	ProviderAccountID string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	Picture           string `json:"picture"`
}

// Provider performs the code and refresh exchanges against one identity
// provider.
type Provider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

// NewGoogleProvider configures the Google endpoints.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, timeout time.Duration) *Provider {
	return NewProvider("google", &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}, googleUserInfoURL, timeout)
}

// NewProvider builds a provider from explicit endpoints. Tests point this at
// a local token server.
func NewProvider(name string, cfg *oauth2.Config, userInfoURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		name:        name,
		cfg:         cfg,
		userInfoURL: userInfoURL,
		timeout:     timeout,
	}
}

func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL returns the consent-screen URL for the given CSRF state.
// Offline access is requested so the provider issues a refresh token.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token set and fetches the
// identity claims it grants access to.
func (p *Provider) Exchange(ctx context.Context, code string) (*Token, *Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("code exchange with %s failed: %w", p.name, err)
	}

	claims, err := p.fetchClaims(ctx, tok)
	if err != nil {
		return nil, nil, err
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, claims, nil
}

// Refresh trades a refresh token for a new access token. The returned
// RefreshToken may be empty when the provider does not rotate it; the
// caller retains the prior one in that case. Failures (including timeouts)
// map to models.ErrRefreshFailed.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, models.ErrNoRefreshToken
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	src := p.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRefreshFailed, err)
	}

	refreshed := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	return refreshed, nil
}

func (p *Provider) fetchClaims(ctx context.Context, tok *oauth2.Token) (*Claims, error) {
	client := p.cfg.Client(ctx, tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching identity from %s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity endpoint returned status %d", resp.StatusCode)
	}

	var claims Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("decoding identity claims: %w", err)
	}

	if claims.ProviderAccountID == "" || claims.Email == "" {
		return nil, fmt.Errorf("identity claims missing subject or email")
	}

	return &claims, nil
}
