package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
)

// UserTokenKeyFetcher retrieves a user's per-user signing key component.
type UserTokenKeyFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionManager signs and validates the stateless session token. Sessions
// are never stored server-side; rotating a user's token key is the only
// way to invalidate them early.
type SessionManager struct {
	secret     string
	lifetime   time.Duration
	renewAfter float64 // fraction of lifetime after which a token is re-signed on use
	userRepo   UserTokenKeyFetcher
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(secret string, lifetime time.Duration, renewAfter float64) *SessionManager {
	return &SessionManager{
		secret:     secret,
		lifetime:   lifetime,
		renewAfter: renewAfter,
	}
}

// SetUserRepo enables composite signing with the per-user token key.
func (sm *SessionManager) SetUserRepo(repo UserTokenKeyFetcher) {
	sm.userRepo = repo
}

// getSigningKey returns composite key (global secret + user token key) or the global secret
func (sm *SessionManager) getSigningKey(userID string) []byte {
	if sm.userRepo == nil {
		return []byte(sm.secret)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	user, err := sm.userRepo.GetByID(ctx, userID)
	if err != nil {
		// Graceful degradation: global secret when the user lookup fails
		return []byte(sm.secret)
	}

	return []byte(sm.secret + user.TokenKey)
}

// IssueCredentials mints a session for a password sign-in. An opaque
// per-session id stands in for a provider access token.
func (sm *SessionManager) IssueCredentials(user *models.User) (string, error) {
	claims := sm.baseClaims(user)
	claims.AccessToken = uuid.New().String()
	return sm.sign(claims)
}

// IssueOAuth mints a session carrying the provider token set.
func (sm *SessionManager) IssueOAuth(user *models.User, tok *oauth.Token) (string, error) {
	claims := sm.baseClaims(user)
	claims.AccessToken = tok.AccessToken
	claims.RefreshToken = tok.RefreshToken
	if !tok.Expiry.IsZero() {
		claims.AccessTokenExpires = tok.Expiry.Unix()
	}
	return sm.sign(claims)
}

// Reissue re-signs existing claims with a fresh validity window. Used after
// renewal changed the token contents, and for the sliding-lifetime refresh
// of long-lived sessions.
func (sm *SessionManager) Reissue(claims *models.SessionClaims) (string, error) {
	now := time.Now()
	out := *claims
	out.RegisteredClaims = jwt.RegisteredClaims{
		ID:        claims.ID,
		ExpiresAt: jwt.NewNumericDate(now.Add(sm.lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return sm.sign(&out)
}

// ShouldReissue reports whether a valid session is old enough for its
// sliding renewal: past the configured fraction of the lifetime.
func (sm *SessionManager) ShouldReissue(claims *models.SessionClaims, now time.Time) bool {
	if claims.IssuedAt == nil {
		return false
	}
	age := now.Sub(claims.IssuedAt.Time)
	return age > time.Duration(float64(sm.lifetime)*sm.renewAfter)
}

func (sm *SessionManager) baseClaims(user *models.User) *models.SessionClaims {
	now := time.Now()
	return &models.SessionClaims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		Name:    user.Name,
		Email:   user.Email,
		Image:   user.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
}

func (sm *SessionManager) sign(claims *models.SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(sm.getSigningKey(claims.UserID))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a session token and returns its claims
func (sm *SessionManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		if tmpClaims, ok := token.Claims.(*models.SessionClaims); ok && tmpClaims.UserID != "" {
			return sm.getSigningKey(tmpClaims.UserID), nil
		}

		return []byte(sm.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid session: missing user id")
	}

	return claims, nil
}

// View derives the redacted session exposure. Raw provider tokens stay
// inside this package.
func View(claims *models.SessionClaims) *models.SessionView {
	if claims == nil {
		return nil
	}
	return &models.SessionView{
		UserID:    claims.UserID,
		IsAdmin:   claims.IsAdmin,
		Name:      claims.Name,
		Email:     claims.Email,
		Image:     claims.Image,
		AuthError: claims.AuthError,
	}
}
