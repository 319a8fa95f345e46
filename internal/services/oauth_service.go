package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// AccountLinkRepository defines the persistence operations for provider links
type AccountLinkRepository interface {
	GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.AccountLink, error)
	ListByUser(ctx context.Context, userID string) ([]*models.AccountLink, error)
	Create(ctx context.Context, link *models.AccountLink) (*models.AccountLink, error)
}

// OAuthProvider is the slice of the provider client this service uses
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Token, *oauth.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// OAuthService handles the provider sign-in flow: code exchange, account
// linking, and session issuance.
type OAuthService struct {
	users       UserRepository
	links       AccountLinkRepository
	provider    OAuthProvider
	logins      LoginEventRepository
	sm          *auth.SessionManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(users UserRepository, links AccountLinkRepository, provider OAuthProvider, logins LoginEventRepository, sm *auth.SessionManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *OAuthService {
	return &OAuthService{
		users:       users,
		links:       links,
		provider:    provider,
		logins:      logins,
		sm:          sm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AuthCodeURL builds the provider authorization URL for a state nonce
func (s *OAuthService) AuthCodeURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// SignIn completes a provider callback: exchanges the code, resolves or
// creates the local account, and issues a session.
//
// The provider account id is the stable identity. Signing in again with a
// provider identity that is already linked reuses the existing link; a
// provider identity whose verified email belongs to a different local user
// than its link is rejected with ErrProviderLinkConflict rather than
// silently merging accounts.
func (s *OAuthService) SignIn(ctx context.Context, code string, meta LoginMetadata) (*LoginResult, error) {
	tok, claims, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Info("oauth code exchange failed", slog.Any("error", err))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "oauth_login_failed",
			IPAddress:     meta.IP,
			Provider:      s.provider.Name(),
			FailureReason: "code_exchange_failed",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	user, err := s.resolveUser(ctx, claims)
	if err != nil {
		if errors.Is(err, models.ErrProviderLinkConflict) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "oauth_login_failed",
				IPAddress:     meta.IP,
				Provider:      s.provider.Name(),
				FailureReason: "provider_link_conflict",
				Success:       false,
			})
		}
		return nil, err
	}

	token, err := s.sm.IssueOAuth(user, tok)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordLogin(ctx, user.ID, "oauth:"+s.provider.Name(), meta)

	s.logger.Info("user logged in via provider",
		slog.String("user_id", user.ID),
		slog.String("provider", s.provider.Name()))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "oauth_login_success",
		UserID:    user.ID,
		IPAddress: meta.IP,
		Provider:  s.provider.Name(),
		Success:   true,
	})

	return &LoginResult{Token: token, User: user.Identity()}, nil
}

// resolveUser maps a provider identity onto a local account
func (s *OAuthService) resolveUser(ctx context.Context, claims *oauth.Claims) (*models.User, error) {
	link, err := s.links.GetByProviderAccount(ctx, s.provider.Name(), claims.ProviderAccountID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up account link", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))

	if link != nil {
		user, err := s.users.GetByID(ctx, link.UserID)
		if err != nil {
			s.logger.Error("linked user missing", slog.String("user_id", link.UserID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		// Detect an identity whose email has been claimed by someone else
		emailUser, err := s.users.GetByEmail(ctx, email)
		if err == nil && emailUser.ID != user.ID {
			s.logger.Warn("provider link conflict",
				slog.String("linked_user_id", user.ID),
				slog.String("email_user_id", emailUser.ID))
			return nil, models.ErrProviderLinkConflict
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInternalServer
		}

		return user, nil
	}

	// First sign-in with this provider identity: attach it to the account
	// owning the verified email, or create a fresh account.
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		if !claims.EmailVerified {
			s.logger.Info("oauth sign-in rejected: unverified email")
			return nil, models.ErrUnauthorized
		}
		user, err = s.users.Create(ctx, &models.User{
			Email: email,
			Name:  claims.Name,
			Image: claims.Picture,
		})
	}
	if err != nil {
		s.logger.Error("failed to resolve user for oauth sign-in", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	_, err = s.links.Create(ctx, &models.AccountLink{
		UserID:            user.ID,
		Provider:          s.provider.Name(),
		ProviderAccountID: claims.ProviderAccountID,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent first sign-in. Re-read the link
			// and accept it only if it points at the same account.
			existing, gerr := s.links.GetByProviderAccount(ctx, s.provider.Name(), claims.ProviderAccountID)
			if gerr != nil {
				return nil, models.ErrInternalServer
			}
			if existing.UserID != user.ID {
				return nil, models.ErrProviderLinkConflict
			}
			return user, nil
		}
		s.logger.Error("failed to create account link", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("provider_linked", user.ID, s.provider.Name(), nil)
	return user, nil
}

// recordLogin best-effort records a successful provider sign-in
func (s *OAuthService) recordLogin(ctx context.Context, userID, method string, meta LoginMetadata) {
	if err := s.logins.Create(ctx, &models.LoginEvent{
		UserID:    userID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Method:    method,
	}); err != nil {
		s.logger.Error("failed to record login event", slog.String("user_id", userID), slog.Any("error", err))
	}

	if err := s.users.RecordLogin(ctx, userID, time.Now()); err != nil {
		s.logger.Error("failed to stamp last login", slog.String("user_id", userID), slog.Any("error", err))
	}
}
