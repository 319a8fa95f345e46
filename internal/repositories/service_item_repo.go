package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
)

type ServiceItemRepository struct {
	orderedTable
}

func NewServiceItemRepository(db *database.DB) *ServiceItemRepository {
	return &ServiceItemRepository{orderedTable{pool: db.Pool, table: "service_items"}}
}

const serviceItemColumns = `id, title, description, icon, "order", created_at, updated_at`

func scanServiceItemRow(scanner rowScanner) (*models.ServiceItem, error) {
	var item models.ServiceItem
	var description, icon *string

	err := scanner.Scan(
		&item.ID, &item.Title, &description, &icon,
		&item.Order, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if description != nil {
		item.Description = *description
	}
	if icon != nil {
		item.Icon = *icon
	}

	return &item, nil
}

// List returns all service items in display order
func (r *ServiceItemRepository) List(ctx context.Context) ([]*models.ServiceItem, error) {
	query := `SELECT ` + serviceItemColumns + ` FROM service_items ORDER BY "order", created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	items := make([]*models.ServiceItem, 0)
	for rows.Next() {
		item, err := scanServiceItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return items, nil
}

func (r *ServiceItemRepository) GetByID(ctx context.Context, id string) (*models.ServiceItem, error) {
	query := `SELECT ` + serviceItemColumns + ` FROM service_items WHERE id = $1`

	return scanServiceItemRow(r.pool.QueryRow(ctx, query, id))
}

// Create appends the new service item at the end of the display order
func (r *ServiceItemRepository) Create(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error) {
	item.ID = uuid.New().String()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	order, err := r.nextOrder(ctx, tx)
	if err != nil {
		return nil, err
	}
	item.Order = order

	query := `
		INSERT INTO service_items (id, title, description, icon, "order", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + serviceItemColumns

	created, err := scanServiceItemRow(tx.QueryRow(ctx, query,
		item.ID, item.Title, nullable(item.Description), nullable(item.Icon),
		item.Order, item.CreatedAt, item.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

func (r *ServiceItemRepository) Update(ctx context.Context, id string, item *models.ServiceItem) (*models.ServiceItem, error) {
	query := `
		UPDATE service_items SET title = $1, description = $2, icon = $3, updated_at = $4
		WHERE id = $5
		RETURNING ` + serviceItemColumns

	return scanServiceItemRow(r.pool.QueryRow(ctx, query,
		item.Title, nullable(item.Description), nullable(item.Icon), time.Now(), id,
	))
}

func (r *ServiceItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM service_items WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
