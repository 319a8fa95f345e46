package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/background"
	"github.com/seanmccall/folio/internal/config"
	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/handlers"
	middlewareCustom "github.com/seanmccall/folio/internal/middleware"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
	"github.com/seanmccall/folio/internal/repositories"
	"github.com/seanmccall/folio/internal/routes"
	"github.com/seanmccall/folio/internal/services"
	pkgauth "github.com/seanmccall/folio/pkg/auth"
	pkghttp "github.com/seanmccall/folio/pkg/http"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	linkRepo := repositories.NewAccountLinkRepository(db)
	loginEventRepo := repositories.NewLoginEventRepository(db)
	certRepo := repositories.NewCertificationRepository(db)
	expRepo := repositories.NewExperienceRepository(db)
	svcRepo := repositories.NewServiceItemRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(loginEventRepo, logger, cfg.Session.CleanupInterval, cfg.Session.LoginHistoryMaxAge)

	// Initialize session manager
	sessionManager := auth.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.Lifetime,
		cfg.Session.RenewAfter,
	)

	// Enable composite signing with per-user TokenKey
	sessionManager.SetUserRepo(userRepo)

	// Initialize security services
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Timing delay for auth security
	timingConfig := auth.TimingConfig{
		BaseDelayMs:   cfg.Session.TimingDelayBaseMs,
		RandomDelayMs: cfg.Session.TimingDelayRandomMs,
	}
	timingDelay := auth.NewTimingDelay(timingConfig)

	// CSRF token manager
	csrfManager := auth.NewCSRFTokenManager()

	totpManager := auth.NewTOTPManager("Folio")

	// OAuth provider
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.RedirectURL,
		cfg.OAuth.ProviderTimeout,
	)

	// AWS SES email service for the contact form
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.ContactAddress,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, loginEventRepo, sessionManager, totpManager, timingDelay, logger, auditLogger)
	oauthService := services.NewOAuthService(userRepo, linkRepo, googleProvider, loginEventRepo, sessionManager, logger, auditLogger)
	contentService := services.NewContentService(logger, auditLogger)

	// Cookie and client IP configuration
	cookies := auth.CookieConfig{
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		SameSite: "lax",
	}
	cookieMaxAge := int(cfg.Session.Lifetime.Seconds())
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Initialize handlers
	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService, csrfManager, cookies, cookieMaxAge, ipConfig),
		OAuth:          handlers.NewOAuthHandler(oauthService, csrfManager, cookies, cookieMaxAge, ipConfig, cfg.Server.PublicURL),
		Profile:        handlers.NewProfileHandler(userRepo, authService),
		Security:       handlers.NewSecurityHandler(authService),
		Contact:        handlers.NewContactHandler(emailService),
		Certifications: handlers.NewCertificationHandler(certRepo, contentService),
		Experiences:    handlers.NewExperienceHandler(expRepo, contentService),
		ServiceItems:   handlers.NewServiceItemHandler(svcRepo, contentService),
	}

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, h, sessionManager, googleProvider, csrfManager, cookies, cookieMaxAge, logger)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the site owner account if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	// Hash password
	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	// Create admin user
	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		IsAdmin:      true,
	}

	_, err = userRepo.Create(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
