package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/services"
)

func newAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, auth.NewCSRFTokenManager(), auth.CookieConfig{SameSite: "strict"}, 3600, testIPConfig())
}

func loginBody(t *testing.T, email, password, code string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(LoginRequest{Email: email, Password: password, MFACode: code})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, mfaCode string, meta services.LoginMetadata) (*services.LoginResult, error) {
			assert.Equal(t, "owner@example.com", email)
			return &services.LoginResult{
				Token: "signed-session-token",
				User:  models.Identity{ID: "user-1", Email: email, IsAdmin: true},
			}, nil
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody(t, "Owner@Example.com", "Correct-Horse-9", ""))

	newAuthHandler(service).Login(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	cookie := sessionCookieFrom(rr)
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.Equal(t, "signed-session-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody(t, "owner@example.com", "wrong", ""))

	newAuthHandler(&MockAuthService{}).Login(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, sessionCookieFrom(rr))
}

func TestAuthHandler_Login_MFARequired(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, mfaCode string, meta services.LoginMetadata) (*services.LoginResult, error) {
			return nil, models.ErrMFACodeRequired
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody(t, "owner@example.com", "Correct-Horse-9", ""))

	newAuthHandler(service).Login(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "mfa_required")
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))

	newAuthHandler(&MockAuthService{}).Login(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody(t, "not-an-email", "", ""))

	newAuthHandler(&MockAuthService{}).Login(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthHandler_Logout_ClearsCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "whatever"})

	newAuthHandler(&MockAuthService{}).Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	cookie := sessionCookieFrom(rr)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandler_Session(t *testing.T) {
	h := newAuthHandler(&MockAuthService{})

	// Without a session the endpoint denies
	rr := httptest.NewRecorder()
	h.Session(rr, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// With one it returns the redacted view
	rr = httptest.NewRecorder()
	h.Session(rr, withAdminSession(httptest.NewRequest(http.MethodGet, "/auth/session", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "owner@example.com")
	assert.NotContains(t, rr.Body.String(), "access_token")
}
