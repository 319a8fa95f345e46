package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/oauth"
	"github.com/seanmccall/folio/internal/reorder"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// MockUserRepository implements UserRepository with function fields so each
// test overrides only the calls it cares about.
type MockUserRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfileFunc  func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
	UpdateMFAFunc      func(ctx context.Context, id, totpSecret string, enabled bool) error
	RecordLoginFunc    func(ctx context.Context, id string, at time.Time) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) UpdateMFA(ctx context.Context, id, totpSecret string, enabled bool) error {
	if m.UpdateMFAFunc != nil {
		return m.UpdateMFAFunc(ctx, id, totpSecret, enabled)
	}
	return nil
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, id, at)
	}
	return nil
}

// MockLoginEventRepository implements LoginEventRepository with function fields
type MockLoginEventRepository struct {
	CreateFunc     func(ctx context.Context, event *models.LoginEvent) error
	ListRecentFunc func(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error)
}

func (m *MockLoginEventRepository) Create(ctx context.Context, event *models.LoginEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockLoginEventRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, userID, limit)
	}
	return []*models.LoginEvent{}, nil
}

// MockAccountLinkRepository implements AccountLinkRepository with function fields
type MockAccountLinkRepository struct {
	GetByProviderAccountFunc func(ctx context.Context, provider, providerAccountID string) (*models.AccountLink, error)
	ListByUserFunc           func(ctx context.Context, userID string) ([]*models.AccountLink, error)
	CreateFunc               func(ctx context.Context, link *models.AccountLink) (*models.AccountLink, error)
}

func (m *MockAccountLinkRepository) GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.AccountLink, error) {
	if m.GetByProviderAccountFunc != nil {
		return m.GetByProviderAccountFunc(ctx, provider, providerAccountID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountLinkRepository) ListByUser(ctx context.Context, userID string) ([]*models.AccountLink, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.AccountLink{}, nil
}

func (m *MockAccountLinkRepository) Create(ctx context.Context, link *models.AccountLink) (*models.AccountLink, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, link)
	}
	return link, nil
}

// MockOAuthProvider implements OAuthProvider with function fields
type MockOAuthProvider struct {
	NameFunc        func() string
	AuthCodeURLFunc func(state string) string
	ExchangeFunc    func(ctx context.Context, code string) (*oauth.Token, *oauth.Claims, error)
	RefreshFunc     func(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

func (m *MockOAuthProvider) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "google"
}

func (m *MockOAuthProvider) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://provider.example.com/auth?state=" + state
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, code string) (*oauth.Token, *oauth.Claims, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, nil, models.ErrUnauthorized
}

func (m *MockOAuthProvider) Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, models.ErrRefreshFailed
}

// MockOrderedCollection implements OrderedCollection with function fields
type MockOrderedCollection struct {
	ListItemsFunc    func(ctx context.Context) ([]reorder.Item, error)
	UpdateOrdersFunc func(ctx context.Context, updates []reorder.Update) error
}

func (m *MockOrderedCollection) ListItems(ctx context.Context) ([]reorder.Item, error) {
	if m.ListItemsFunc != nil {
		return m.ListItemsFunc(ctx)
	}
	return []reorder.Item{}, nil
}

func (m *MockOrderedCollection) UpdateOrders(ctx context.Context, updates []reorder.Update) error {
	if m.UpdateOrdersFunc != nil {
		return m.UpdateOrdersFunc(ctx, updates)
	}
	return nil
}

// testLogger returns a logger that discards output during tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAuditLogger returns an audit logger backed by the discard logger
func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}
