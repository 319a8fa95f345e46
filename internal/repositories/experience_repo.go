package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
)

type ExperienceRepository struct {
	orderedTable
}

func NewExperienceRepository(db *database.DB) *ExperienceRepository {
	return &ExperienceRepository{orderedTable{pool: db.Pool, table: "experiences"}}
}

const experienceColumns = `id, role, company, summary, start_date, end_date, "order", created_at, updated_at`

func scanExperienceRow(scanner rowScanner) (*models.Experience, error) {
	var exp models.Experience
	var summary *string
	var endDate *time.Time

	err := scanner.Scan(
		&exp.ID, &exp.Role, &exp.Company, &summary, &exp.StartDate, &endDate,
		&exp.Order, &exp.CreatedAt, &exp.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if summary != nil {
		exp.Summary = *summary
	}
	exp.EndDate = endDate

	return &exp, nil
}

// List returns all experiences in display order
func (r *ExperienceRepository) List(ctx context.Context) ([]*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences ORDER BY "order", created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	exps := make([]*models.Experience, 0)
	for rows.Next() {
		exp, err := scanExperienceRow(rows)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return exps, nil
}

func (r *ExperienceRepository) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`

	return scanExperienceRow(r.pool.QueryRow(ctx, query, id))
}

// Create appends the new experience at the end of the display order
func (r *ExperienceRepository) Create(ctx context.Context, exp *models.Experience) (*models.Experience, error) {
	exp.ID = uuid.New().String()
	now := time.Now()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	order, err := r.nextOrder(ctx, tx)
	if err != nil {
		return nil, err
	}
	exp.Order = order

	query := `
		INSERT INTO experiences (id, role, company, summary, start_date, end_date, "order", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + experienceColumns

	created, err := scanExperienceRow(tx.QueryRow(ctx, query,
		exp.ID, exp.Role, exp.Company, nullable(exp.Summary), exp.StartDate, exp.EndDate,
		exp.Order, exp.CreatedAt, exp.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

func (r *ExperienceRepository) Update(ctx context.Context, id string, exp *models.Experience) (*models.Experience, error) {
	query := `
		UPDATE experiences SET role = $1, company = $2, summary = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + experienceColumns

	return scanExperienceRow(r.pool.QueryRow(ctx, query,
		exp.Role, exp.Company, nullable(exp.Summary), exp.StartDate, exp.EndDate, time.Now(), id,
	))
}

func (r *ExperienceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM experiences WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
