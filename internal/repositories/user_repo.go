package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/pkg/auth"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, email, password_hash, name, image, bio, location, is_admin, token_key, totp_secret, mfa_enabled, last_login, password_changed_at, created_at, updated_at`

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash, image, bio, location, totpSecret *string
	var lastLogin, passwordChangedAt *time.Time

	err := scanner.Scan(
		&user.ID, &user.Email, &passwordHash, &user.Name,
		&image, &bio, &location,
		&user.IsAdmin, &user.TokenKey, &totpSecret, &user.MFAEnabled,
		&lastLogin, &passwordChangedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if image != nil {
		user.Image = *image
	}
	if bio != nil {
		user.Bio = *bio
	}
	if location != nil {
		user.Location = *location
	}
	if totpSecret != nil {
		user.TOTPSecret = *totpSecret
	}
	user.LastLogin = lastLogin
	user.PasswordChangedAt = passwordChangedAt

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	tokenKey, err := auth.GenerateTokenKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token key: %w", err)
	}
	user.TokenKey = tokenKey

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, name, image, bio, location, is_admin, token_key, password_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + userColumns

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, passwordHash, user.Name,
		nullable(user.Image), nullable(user.Bio), nullable(user.Location),
		user.IsAdmin, user.TokenKey,
		user.PasswordChangedAt, user.CreatedAt, user.UpdatedAt,
	))
}

// UpdateProfile persists the owner-editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, image = $2, bio = $3, location = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Name, nullable(user.Image), nullable(user.Bio), nullable(user.Location), time.Now(), id,
	))
}

// UpdatePassword replaces the password hash and rotates the token key so
// outstanding sessions are invalidated.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tokenKey, err := auth.GenerateTokenKey()
	if err != nil {
		return fmt.Errorf("failed to generate token key: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE users SET password_hash = $1, token_key = $2, password_changed_at = $3, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, passwordHash, tokenKey, now, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateMFA stores or clears the TOTP enrollment
func (r *UserRepository) UpdateMFA(ctx context.Context, id, totpSecret string, enabled bool) error {
	query := `UPDATE users SET totp_secret = $1, mfa_enabled = $2, updated_at = $3 WHERE id = $4`

	result, err := r.pool.Exec(ctx, query, nullable(totpSecret), enabled, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// RecordLogin stamps last_login
func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// nullable maps empty strings to NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
