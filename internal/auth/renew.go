package auth

import (
	"context"
	"time"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
)

// TokenRefresher exchanges a provider refresh token for a fresh token set.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// Renew applies the token renewal policy to a validated session and returns
// the claims to continue with. The input claims are never mutated.
//
// A session whose provider access token is still valid, or that never
// carried one, passes through as-is. A session with an expired access token
// and no refresh token also passes through unchanged; it simply stays
// degraded. Only an expired access token with a refresh token on hand
// triggers a provider round trip. On success the token material is replaced
// and any previous error tag cleared; when the provider omits a new refresh
// token the old one is retained. On failure the claims are tagged
// RefreshFailed so the client can surface a re-authentication prompt.
func Renew(ctx context.Context, claims *models.SessionClaims, now time.Time, refresher TokenRefresher) *models.SessionClaims {
	if claims.AccessTokenExpires == 0 {
		// Credentials session, no provider tokens to maintain.
		return claims
	}

	if now.Unix() < claims.AccessTokenExpires {
		return claims
	}

	if claims.RefreshToken == "" || refresher == nil {
		return claims
	}

	out := *claims

	tok, err := refresher.Refresh(ctx, claims.RefreshToken)
	if err != nil {
		out.AuthError = models.SessionErrorRefreshFailed
		return &out
	}

	out.AccessToken = tok.AccessToken
	if !tok.Expiry.IsZero() {
		out.AccessTokenExpires = tok.Expiry.Unix()
	}
	if tok.RefreshToken != "" {
		out.RefreshToken = tok.RefreshToken
	}
	out.AuthError = ""

	return &out
}
