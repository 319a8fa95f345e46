package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Session error tags carried in the auth_error claim. They mark a degraded
// session whose provider-backed actions will fail until re-authentication.
const (
	SessionErrorRefreshFailed  = "RefreshFailed"
	SessionErrorNoRefreshToken = "NoRefreshTokenAvailable"
)

// SessionClaims is the signed, stateless session payload. For credential
// sign-ins AccessToken holds an opaque per-session id and the provider
// fields stay empty; for OAuth sign-ins it carries the provider tokens and
// the access-token expiry as a unix second.
type SessionClaims struct {
	UserID             string `json:"user_id"`
	IsAdmin            bool   `json:"is_admin"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	Image              string `json:"image,omitempty"`
	AccessToken        string `json:"access_token,omitempty"`
	RefreshToken       string `json:"refresh_token,omitempty"`
	AccessTokenExpires int64  `json:"access_token_expires,omitempty"`
	AuthError          string `json:"auth_error,omitempty"`
	jwt.RegisteredClaims
}

// SessionView is the redacted session handed outside the auth package.
// Raw provider tokens never appear here.
type SessionView struct {
	UserID    string `json:"user_id"`
	IsAdmin   bool   `json:"is_admin"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Image     string `json:"image,omitempty"`
	AuthError string `json:"auth_error,omitempty"`
}
