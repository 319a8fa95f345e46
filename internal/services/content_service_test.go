package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/reorder"
)

func fixedItems() []reorder.Item {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []reorder.Item{
		{ID: "a", Order: 0, CreatedAt: base},
		{ID: "b", Order: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "c", Order: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
}

func TestContentService_Reorder(t *testing.T) {
	var applied []reorder.Update
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			return fixedItems(), nil
		},
		UpdateOrdersFunc: func(ctx context.Context, updates []reorder.Update) error {
			applied = updates
			return nil
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	err := svc.Reorder(context.Background(), "certifications", col, []string{"c", "a", "b"}, "user-1")

	require.NoError(t, err)
	assert.Len(t, applied, 3)
}

func TestContentService_Reorder_UnknownIDIsBadRequest(t *testing.T) {
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			return fixedItems(), nil
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	err := svc.Reorder(context.Background(), "certifications", col, []string{"c", "a", "zzz"}, "user-1")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestContentService_Reorder_PersistenceFailureSurfacesReorderError(t *testing.T) {
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			return fixedItems(), nil
		},
		UpdateOrdersFunc: func(ctx context.Context, updates []reorder.Update) error {
			return errors.New("connection reset")
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	err := svc.Reorder(context.Background(), "experiences", col, []string{"c", "a", "b"}, "user-1")

	assert.ErrorIs(t, err, models.ErrReorderFailed)
}

func TestContentService_Move_BoundaryIsNoOp(t *testing.T) {
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			return fixedItems(), nil
		},
		UpdateOrdersFunc: func(ctx context.Context, updates []reorder.Update) error {
			t.Fatal("a boundary move must not touch the store")
			return nil
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	err := svc.Move(context.Background(), "service_items", col, "a", reorder.DirectionUp, "user-1")

	assert.NoError(t, err)
}

func TestContentService_Move_InvalidDirection(t *testing.T) {
	svc := NewContentService(testLogger(), testAuditLogger())
	err := svc.Move(context.Background(), "service_items", &MockOrderedCollection{}, "a", reorder.Direction("sideways"), "user-1")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestContentService_Compact_ClosesGaps(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var applied []reorder.Update
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			// Position 1 was deleted, leaving a gap
			return []reorder.Item{
				{ID: "a", Order: 0, CreatedAt: base},
				{ID: "c", Order: 2, CreatedAt: base.Add(2 * time.Minute)},
				{ID: "d", Order: 5, CreatedAt: base.Add(3 * time.Minute)},
			}, nil
		},
		UpdateOrdersFunc: func(ctx context.Context, updates []reorder.Update) error {
			applied = updates
			return nil
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	require.NoError(t, svc.Compact(context.Background(), "experiences", col))

	assert.ElementsMatch(t, []reorder.Update{
		{ID: "c", Order: 1},
		{ID: "d", Order: 2},
	}, applied, "only rows whose position changes are written")
}

func TestContentService_Compact_AlreadyContiguousSkipsWrite(t *testing.T) {
	col := &MockOrderedCollection{
		ListItemsFunc: func(ctx context.Context) ([]reorder.Item, error) {
			return fixedItems(), nil
		},
		UpdateOrdersFunc: func(ctx context.Context, updates []reorder.Update) error {
			t.Fatal("a contiguous collection must not be rewritten")
			return nil
		},
	}

	svc := NewContentService(testLogger(), testAuditLogger())
	assert.NoError(t, svc.Compact(context.Background(), "experiences", col))
}
