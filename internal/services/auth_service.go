package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	pkgauth "github.com/seanmccall/folio/pkg/auth"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// UserRepository defines the persistence operations services need for users
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateMFA(ctx context.Context, id, totpSecret string, enabled bool) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// LoginEventRepository records and queries sign-in history
type LoginEventRepository interface {
	Create(ctx context.Context, event *models.LoginEvent) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error)
}

// LoginMetadata carries request context worth recording with a sign-in
type LoginMetadata struct {
	IP        string
	UserAgent string
}

// LoginResult is the outcome of a successful credentials sign-in
type LoginResult struct {
	Token string
	User  models.Identity
}

// AuthService handles credentials authentication business logic
type AuthService struct {
	users       UserRepository
	logins      LoginEventRepository
	sm          *auth.SessionManager
	totp        *auth.TOTPManager
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, logins LoginEventRepository, sm *auth.SessionManager, totp *auth.TOTPManager, timing *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		users:       users,
		logins:      logins,
		sm:          sm,
		totp:        totp,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Login verifies a credentials pair and issues a session token. Every
// failure mode a caller can probe (unknown email, wrong password, account
// without a password) collapses into the same ErrInvalidCredentials with
// comparable timing.
func (s *AuthService) Login(ctx context.Context, email, password, mfaCode string, meta LoginMetadata) (*LoginResult, error) {
	start := time.Now()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     meta.IP,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			s.timing.WaitFrom(start, false)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Accounts created through an identity provider have no password hash
	// and can never pass credentials login.
	if user.PasswordHash == "" {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     meta.IP,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     meta.IP,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if mfaCode == "" {
			return nil, models.ErrMFACodeRequired
		}
		valid, err := s.totp.ValidateTOTP(user.TOTPSecret, mfaCode)
		if err != nil || !valid {
			s.logger.Info("login failed: invalid mfa code", slog.String("user_id", user.ID))
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				UserID:        user.ID,
				IPAddress:     meta.IP,
				FailureReason: "invalid_mfa_code",
				Success:       false,
			})
			s.timing.WaitFrom(start, false)
			return nil, models.ErrInvalidCredentials
		}
	}

	token, err := s.sm.IssueCredentials(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordLogin(ctx, user.ID, "credentials", meta)

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: meta.IP,
		Success:   true,
	})

	return &LoginResult{Token: token, User: user.Identity()}, nil
}

// ChangePassword verifies the current password before replacing it.
// The repository rotates the token key, so every other session dies.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for password change", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.PasswordHash == "" || pkgauth.ComparePassword(user.PasswordHash, currentPassword) != nil {
		return models.ErrInvalidCredentials
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("password_changed", userID, "", nil)
	return nil
}

// MFASetup holds the enrollment material returned to the owner
type MFASetup struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
}

// SetupMFA generates TOTP enrollment material. Nothing is persisted until
// the owner confirms with a valid code via EnableMFA.
func (s *AuthService) SetupMFA(ctx context.Context, userID string) (*MFASetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	secret, qrDataURL, err := s.totp.GenerateSecretWithQR(user.Email)
	if err != nil {
		s.logger.Error("failed to generate TOTP secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &MFASetup{Secret: secret, QRCodeURL: qrDataURL}, nil
}

// EnableMFA persists the enrollment once the owner proves they hold the secret
func (s *AuthService) EnableMFA(ctx context.Context, userID, secret, code string) error {
	valid, err := s.totp.ValidateTOTP(secret, code)
	if err != nil || !valid {
		return models.ErrBadRequest
	}

	if err := s.users.UpdateMFA(ctx, userID, secret, true); err != nil {
		s.logger.Error("failed to enable MFA", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("mfa_enabled", userID, "", nil)
	return nil
}

// DisableMFA requires a live code before dropping the enrollment
func (s *AuthService) DisableMFA(ctx context.Context, userID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.ErrInternalServer
	}

	if !user.MFAEnabled {
		return models.ErrBadRequest
	}

	valid, err := s.totp.ValidateTOTP(user.TOTPSecret, code)
	if err != nil || !valid {
		return models.ErrBadRequest
	}

	if err := s.users.UpdateMFA(ctx, userID, "", false); err != nil {
		s.logger.Error("failed to disable MFA", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("mfa_disabled", userID, "", nil)
	return nil
}

// LoginHistory returns the newest sign-ins for the owner dashboard
func (s *AuthService) LoginHistory(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	events, err := s.logins.ListRecent(ctx, userID, limit)
	if err != nil {
		s.logger.Error("failed to list login events", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return events, nil
}

// recordLogin best-effort records a successful sign-in; failures are logged
// but never block the login itself.
func (s *AuthService) recordLogin(ctx context.Context, userID, method string, meta LoginMetadata) {
	now := time.Now()

	if err := s.logins.Create(ctx, &models.LoginEvent{
		UserID:    userID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Method:    method,
	}); err != nil {
		s.logger.Error("failed to record login event", slog.String("user_id", userID), slog.Any("error", err))
	}

	if err := s.users.RecordLogin(ctx, userID, now); err != nil {
		s.logger.Error("failed to stamp last login", slog.String("user_id", userID), slog.Any("error", err))
	}
}
