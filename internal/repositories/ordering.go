package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/reorder"
)

// orderedTable gives a content table the persistence half of the reorder
// machinery: a snapshot of (id, "order", created_at) rows and a batched
// order writeback. Each content repository embeds one.
type orderedTable struct {
	pool  *pgxpool.Pool
	table string
}

// ListItems returns the ordering projection of every row in the table
func (t *orderedTable) ListItems(ctx context.Context) ([]reorder.Item, error) {
	query := fmt.Sprintf(`SELECT id, "order", created_at FROM %s`, t.table)

	rows, err := t.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	items := make([]reorder.Item, 0)
	for rows.Next() {
		var item reorder.Item
		if err := rows.Scan(&item.ID, &item.Order, &item.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return items, nil
}

// UpdateOrders applies a set of position changes as one batch inside a
// transaction, so a reorder either lands whole or not at all.
func (t *orderedTable) UpdateOrders(ctx context.Context, updates []reorder.Update) error {
	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET "order" = $1, updated_at = now() WHERE id = $2`, t.table)

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return database.MapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Order, u.ID)
	}

	results := tx.SendBatch(ctx, batch)
	for range updates {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return database.MapPostgresError(err)
		}
	}
	if err := results.Close(); err != nil {
		return database.MapPostgresError(err)
	}

	return tx.Commit(ctx)
}

// nextOrder returns the append position for a new row
func (t *orderedTable) nextOrder(ctx context.Context, tx pgx.Tx) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX("order") + 1, 0) FROM %s`, t.table)

	var next int
	if err := tx.QueryRow(ctx, query).Scan(&next); err != nil {
		return 0, database.MapPostgresError(err)
	}

	return next, nil
}
