package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// MockAuthService implements AuthServiceInterface with function fields
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password, mfaCode string, meta services.LoginMetadata) (*services.LoginResult, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, mfaCode string, meta services.LoginMetadata) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, mfaCode, meta)
	}
	return nil, models.ErrInvalidCredentials
}

// MockOAuthService implements OAuthServiceInterface with function fields
type MockOAuthService struct {
	AuthCodeURLFunc func(state string) string
	SignInFunc      func(ctx context.Context, code string, meta services.LoginMetadata) (*services.LoginResult, error)
}

func (m *MockOAuthService) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://provider.example.com/auth?state=" + state
}

func (m *MockOAuthService) SignIn(ctx context.Context, code string, meta services.LoginMetadata) (*services.LoginResult, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, code, meta)
	}
	return nil, models.ErrUnauthorized
}

// MockEmailService implements services.EmailService with function fields
type MockEmailService struct {
	SendContactMessageFunc func(ctx context.Context, msg services.ContactMessage) error
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, msg services.ContactMessage) error {
	if m.SendContactMessageFunc != nil {
		return m.SendContactMessageFunc(ctx, msg)
	}
	return nil
}

// withAdminSession attaches an admin session view to the request context,
// standing in for the session middleware.
func withAdminSession(r *http.Request) *http.Request {
	view := &models.SessionView{UserID: "user-1", IsAdmin: true, Name: "Sean", Email: "owner@example.com"}
	return r.WithContext(auth.WithSession(r.Context(), view))
}

// testIPConfig trusts no proxies, so RemoteAddr is used directly
func testIPConfig() *pkghttp.IPConfig {
	return &pkghttp.IPConfig{}
}

// withChiParam injects a chi route parameter for handlers that read URL params
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testHandlerLogger returns a logger that discards output during tests
func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testHandlerAuditLogger returns an audit logger backed by the discard logger
func testHandlerAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testHandlerLogger())
}

// sessionCookieFrom digs the session cookie out of a recorded response
func sessionCookieFrom(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}
