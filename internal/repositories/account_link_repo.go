package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
)

type AccountLinkRepository struct {
	pool *pgxpool.Pool
}

func NewAccountLinkRepository(db *database.DB) *AccountLinkRepository {
	return &AccountLinkRepository{pool: db.Pool}
}

func scanAccountLinkRow(scanner rowScanner) (*models.AccountLink, error) {
	var link models.AccountLink

	err := scanner.Scan(
		&link.ID, &link.UserID, &link.Provider, &link.ProviderAccountID, &link.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &link, nil
}

// GetByProviderAccount looks up a link by its (provider, provider account id)
// identity. Returns models.ErrNotFound when the identity has never signed in.
func (r *AccountLinkRepository) GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.AccountLink, error) {
	query := `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM account_links WHERE provider = $1 AND provider_account_id = $2
	`

	return scanAccountLinkRow(r.pool.QueryRow(ctx, query, provider, providerAccountID))
}

// ListByUser returns all provider identities linked to a local user
func (r *AccountLinkRepository) ListByUser(ctx context.Context, userID string) ([]*models.AccountLink, error) {
	query := `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM account_links WHERE user_id = $1 ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	links := make([]*models.AccountLink, 0)
	for rows.Next() {
		link, err := scanAccountLinkRow(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return links, nil
}

// Create inserts a provider link. The unique constraint on
// (provider, provider_account_id) surfaces concurrent duplicate links as
// models.ErrConflict; callers re-fetch and compare.
func (r *AccountLinkRepository) Create(ctx context.Context, link *models.AccountLink) (*models.AccountLink, error) {
	link.ID = uuid.New().String()
	link.CreatedAt = time.Now()

	query := `
		INSERT INTO account_links (id, user_id, provider, provider_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, provider, provider_account_id, created_at
	`

	return scanAccountLinkRow(r.pool.QueryRow(ctx, query,
		link.ID, link.UserID, link.Provider, link.ProviderAccountID, link.CreatedAt,
	))
}
