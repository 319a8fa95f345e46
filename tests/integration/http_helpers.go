package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/handlers"
	middlewareCustom "github.com/seanmccall/folio/internal/middleware"
	"github.com/seanmccall/folio/internal/oauth"
	"github.com/seanmccall/folio/internal/repositories"
	"github.com/seanmccall/folio/internal/routes"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// MockEmailService captures contact messages for test assertions
type MockEmailService struct {
	Sent []services.ContactMessage
	mu   sync.Mutex
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, msg services.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// GetLastMessage returns the most recent captured message
func (m *MockEmailService) GetLastMessage() *services.ContactMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Client       *http.Client

	CSRFManager *auth.CSRFTokenManager
	logger      *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and mocked email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	linkRepo := repositories.NewAccountLinkRepository(db)
	loginEventRepo := repositories.NewLoginEventRepository(db)
	certRepo := repositories.NewCertificationRepository(db)
	expRepo := repositories.NewExperienceRepository(db)
	svcRepo := repositories.NewServiceItemRepository(db)

	mockEmail := &MockEmailService{}

	sessionManager := auth.NewSessionManager(
		"test-secret-32-characters-long-for-testing",
		7*24*time.Hour,
		0.5,
	)
	sessionManager.SetUserRepo(userRepo)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// No artificial delays in tests
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})

	csrfManager := auth.NewCSRFTokenManager()
	totpManager := auth.NewTOTPManager("FolioTest")

	authService := services.NewAuthService(userRepo, loginEventRepo, sessionManager, totpManager, timingDelay, logger, auditLogger)
	oauthService := services.NewOAuthService(userRepo, linkRepo, stubProvider{}, loginEventRepo, sessionManager, logger, auditLogger)
	contentService := services.NewContentService(logger, auditLogger)

	cookies := auth.CookieConfig{SameSite: "lax"}
	cookieMaxAge := int((7 * 24 * time.Hour).Seconds())
	ipConfig := &pkghttp.IPConfig{}

	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService, csrfManager, cookies, cookieMaxAge, ipConfig),
		OAuth:          handlers.NewOAuthHandler(oauthService, csrfManager, cookies, cookieMaxAge, ipConfig, "http://localhost:3000"),
		Profile:        handlers.NewProfileHandler(userRepo, authService),
		Security:       handlers.NewSecurityHandler(authService),
		Contact:        handlers.NewContactHandler(mockEmail),
		Certifications: handlers.NewCertificationHandler(certRepo, contentService),
		Experiences:    handlers.NewExperienceHandler(expRepo, contentService),
		ServiceItems:   handlers.NewServiceItemHandler(svcRepo, contentService),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, h, sessionManager, nil, csrfManager, cookies, cookieMaxAge, logger)

	server := httptest.NewServer(r)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		Client:       client,
		CSRFManager:  csrfManager,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server, reusing the cookie jar
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return ts.Client.Do(req)
}

// Login signs in as the given user and returns the CSRF token for admin requests
func (ts *TestServer) Login(email, password string) (string, error) {
	resp, err := ts.Request("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	csrfResp, err := ts.Request("GET", "/auth/csrf", nil, nil)
	if err != nil {
		return "", err
	}
	defer csrfResp.Body.Close()

	var parsed struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.NewDecoder(csrfResp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.CSRFToken, nil
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// stubProvider stands in for Google; integration tests exercise the
// credentials flow, not the provider round trip.
type stubProvider struct{}

func (stubProvider) Name() string { return "google" }

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (stubProvider) Exchange(ctx context.Context, code string) (*oauth.Token, *oauth.Claims, error) {
	return nil, nil, errors.New("provider not configured in tests")
}

func (stubProvider) Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	return nil, errors.New("provider not configured in tests")
}
