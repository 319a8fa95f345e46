package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
)

type LoginEventRepository struct {
	pool *pgxpool.Pool
}

func NewLoginEventRepository(db *database.DB) *LoginEventRepository {
	return &LoginEventRepository{pool: db.Pool}
}

// Create records a successful sign-in
func (r *LoginEventRepository) Create(ctx context.Context, event *models.LoginEvent) error {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO login_events (id, user_id, ip_address, user_agent, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.UserID, event.IP, event.UserAgent, event.Method, event.CreatedAt,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// ListRecent returns the newest sign-ins for a user, newest first
func (r *LoginEventRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, method, created_at
		FROM login_events WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	events := make([]*models.LoginEvent, 0)
	for rows.Next() {
		var event models.LoginEvent
		err := rows.Scan(&event.ID, &event.UserID, &event.IP, &event.UserAgent, &event.Method, &event.CreatedAt)
		if err != nil {
			return nil, database.MapPostgresError(err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return events, nil
}

// DeleteOlderThan prunes login history past the retention window.
// Returns the number of rows removed.
func (r *LoginEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_events WHERE created_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
