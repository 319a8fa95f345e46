package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
)

type mockUserKeyFetcher struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserKeyFetcher) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func testUser() *models.User {
	return &models.User{
		ID:      "user-123",
		Email:   "owner@example.com",
		Name:    "Sean",
		IsAdmin: true,
	}
}

func TestSessionManager_IssueCredentialsRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.AccessToken, "credentials sessions carry an opaque session id")
	assert.Empty(t, claims.RefreshToken)
	assert.Zero(t, claims.AccessTokenExpires)
}

func TestSessionManager_IssueOAuthCarriesProviderTokens(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)
	expiry := time.Now().Add(time.Hour)

	token, err := sm.IssueOAuth(testUser(), &oauth.Token{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		Expiry:       expiry,
	})
	require.NoError(t, err)

	claims, err := sm.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "ya29.access", claims.AccessToken)
	assert.Equal(t, "1//refresh", claims.RefreshToken)
	assert.Equal(t, expiry.Unix(), claims.AccessTokenExpires)
}

func TestSessionManager_ValidateRejectsTamperedToken(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)

	_, err = sm.Validate(token + "tampered")
	assert.Error(t, err)
}

func TestSessionManager_ValidateRejectsWrongSecret(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)
	other := NewSessionManager("a-completely-different-secret-key", 7*24*time.Hour, 0.5)

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_CompositeKeyRotationInvalidatesSessions(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)

	tokenKey := "original-token-key"
	sm.SetUserRepo(&mockUserKeyFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			u := testUser()
			u.TokenKey = tokenKey
			return u, nil
		},
	})

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)

	_, err = sm.Validate(token)
	require.NoError(t, err)

	// Rotating the per-user key kills every outstanding session
	tokenKey = "rotated-token-key"
	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_ShouldReissue(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)

	claims, err := sm.Validate(token)
	require.NoError(t, err)

	issued := claims.IssuedAt.Time
	assert.False(t, sm.ShouldReissue(claims, issued.Add(time.Hour)))
	assert.False(t, sm.ShouldReissue(claims, issued.Add(3*24*time.Hour)))
	assert.True(t, sm.ShouldReissue(claims, issued.Add(4*24*time.Hour)))
}

func TestSessionManager_ReissueExtendsWindow(t *testing.T) {
	sm := NewSessionManager("test-secret-key-that-is-long-enough", 7*24*time.Hour, 0.5)

	token, err := sm.IssueCredentials(testUser())
	require.NoError(t, err)

	claims, err := sm.Validate(token)
	require.NoError(t, err)

	reissued, err := sm.Reissue(claims)
	require.NoError(t, err)

	fresh, err := sm.Validate(reissued)
	require.NoError(t, err)

	assert.Equal(t, claims.UserID, fresh.UserID)
	assert.Equal(t, claims.AccessToken, fresh.AccessToken, "token contents survive a reissue")
	assert.False(t, fresh.ExpiresAt.Time.Before(claims.ExpiresAt.Time))
}

func TestView_RedactsProviderTokens(t *testing.T) {
	claims := &models.SessionClaims{
		UserID:       "user-123",
		IsAdmin:      true,
		Name:         "Sean",
		Email:        "owner@example.com",
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		AuthError:    models.SessionErrorRefreshFailed,
	}

	view := View(claims)
	require.NotNil(t, view)

	assert.Equal(t, "user-123", view.UserID)
	assert.Equal(t, models.SessionErrorRefreshFailed, view.AuthError)

	// The view struct has no token fields at all; this is the only shape
	// handlers ever see.
	assert.Equal(t, &models.SessionView{
		UserID:    "user-123",
		IsAdmin:   true,
		Name:      "Sean",
		Email:     "owner@example.com",
		AuthError: models.SessionErrorRefreshFailed,
	}, view)
}

func TestView_NilClaims(t *testing.T) {
	assert.Nil(t, View(nil))
}
