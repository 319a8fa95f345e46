package reorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seanmccall/folio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore records every batch it receives and can be told to fail.
type mockStore struct {
	batches [][]Update
	err     error
}

func (m *mockStore) UpdateOrders(ctx context.Context, updates []Update) error {
	m.batches = append(m.batches, updates)
	return m.err
}

func makeItems(ids ...string) []Item {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Order: i, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	return items
}

func orderedIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestPlan_MoveLastToFront(t *testing.T) {
	current := makeItems("a", "b", "c", "d")

	updates, err := Plan(current, []string{"d", "a", "b", "c"})
	require.NoError(t, err)

	// Every record shifts, so every record gets an update.
	assert.Equal(t, []Update{
		{ID: "d", Order: 0},
		{ID: "a", Order: 1},
		{ID: "b", Order: 2},
		{ID: "c", Order: 3},
	}, updates)
}

func TestPlan_OnlyChangedRecords(t *testing.T) {
	current := makeItems("a", "b", "c", "d")

	// Swap the last two; the first two keep their positions.
	updates, err := Plan(current, []string{"a", "b", "d", "c"})
	require.NoError(t, err)

	assert.Equal(t, []Update{
		{ID: "d", Order: 2},
		{ID: "c", Order: 3},
	}, updates)
}

func TestPlan_IdentityPermutationIsEmpty(t *testing.T) {
	current := makeItems("a", "b", "c")

	updates, err := Plan(current, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestPlan_RejectsUnknownID(t *testing.T) {
	current := makeItems("a", "b")

	_, err := Plan(current, []string{"a", "z"})
	assert.ErrorIs(t, err, models.ErrUnknownRecord)
}

func TestPlan_RejectsWrongLength(t *testing.T) {
	current := makeItems("a", "b", "c")

	_, err := Plan(current, []string{"a", "b"})
	assert.ErrorIs(t, err, models.ErrUnknownRecord)
}

func TestPlan_RejectsDuplicateID(t *testing.T) {
	current := makeItems("a", "b")

	_, err := Plan(current, []string{"a", "a"})
	assert.ErrorIs(t, err, models.ErrUnknownRecord)
}

func TestPlanMove_SwapsAdjacentOrders(t *testing.T) {
	current := makeItems("a", "b", "c")

	updates, err := PlanMove(current, "b", DirectionUp)
	require.NoError(t, err)

	// Exactly two updates: the record and its neighbor exchange orders.
	assert.Equal(t, []Update{
		{ID: "b", Order: 0},
		{ID: "a", Order: 1},
	}, updates)
}

func TestPlanMove_Down(t *testing.T) {
	current := makeItems("a", "b", "c")

	updates, err := PlanMove(current, "b", DirectionDown)
	require.NoError(t, err)

	assert.Equal(t, []Update{
		{ID: "b", Order: 2},
		{ID: "c", Order: 1},
	}, updates)
}

func TestPlanMove_BoundaryNoOp(t *testing.T) {
	current := makeItems("a", "b", "c")

	up, err := PlanMove(current, "a", DirectionUp)
	require.NoError(t, err)
	assert.Nil(t, up)

	down, err := PlanMove(current, "c", DirectionDown)
	require.NoError(t, err)
	assert.Nil(t, down)
}

func TestPlanMove_InvalidDirection(t *testing.T) {
	current := makeItems("a", "b")

	_, err := PlanMove(current, "a", Direction("sideways"))
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPlanMove_UnknownID(t *testing.T) {
	current := makeItems("a", "b")

	_, err := PlanMove(current, "z", DirectionUp)
	assert.ErrorIs(t, err, models.ErrUnknownRecord)
}

func TestSort_TieBreaksByCreationTimeThenID(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "late", Order: 1, CreatedAt: base.Add(time.Hour)},
		{ID: "b", Order: 1, CreatedAt: base},
		{ID: "a", Order: 1, CreatedAt: base},
		{ID: "first", Order: 0, CreatedAt: base.Add(2 * time.Hour)},
	}

	Sort(items)

	assert.Equal(t, []string{"first", "a", "b", "late"}, orderedIDs(items))
}

func TestReconciler_ReorderPersistsAndReorders(t *testing.T) {
	store := &mockStore{}
	rec := NewReconciler(store, makeItems("a", "b", "c", "d"))

	err := rec.Reorder(context.Background(), []string{"d", "a", "b", "c"})
	require.NoError(t, err)

	// Sorting by order reproduces exactly the requested permutation.
	assert.Equal(t, []string{"d", "a", "b", "c"}, orderedIDs(rec.Items()))
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 4)
}

func TestReconciler_BoundaryMoveSkipsPersistence(t *testing.T) {
	store := &mockStore{}
	rec := NewReconciler(store, makeItems("a", "b", "c"))

	err := rec.Move(context.Background(), "a", DirectionUp)
	require.NoError(t, err)

	assert.Empty(t, store.batches, "boundary move must not reach the store")
	assert.Equal(t, []string{"a", "b", "c"}, orderedIDs(rec.Items()))
}

func TestReconciler_RollbackOnStoreFailure(t *testing.T) {
	store := &mockStore{err: errors.New("connection reset")}
	rec := NewReconciler(store, makeItems("a", "b", "c", "d"))
	before := rec.Items()

	err := rec.Reorder(context.Background(), []string{"d", "c", "b", "a"})

	// Exactly one failure event, and the working copy equals the exact
	// pre-reorder snapshot (orders included).
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrReorderFailed)
	assert.Equal(t, before, rec.Items())
	assert.Len(t, store.batches, 1)
}

func TestReconciler_MoveRollback(t *testing.T) {
	store := &mockStore{err: errors.New("timeout")}
	rec := NewReconciler(store, makeItems("a", "b", "c"))
	before := rec.Items()

	err := rec.Move(context.Background(), "c", DirectionUp)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrReorderFailed)
	assert.Equal(t, before, rec.Items())
}

// Dragging certification C to position 0: on success orders become
// A=1 B=2 C=0 with a persisted batch of three updates; on failure the list
// reverts to A,B,C with orders 0,1,2.
func TestReconciler_DragToFrontScenario(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := &mockStore{}
		rec := NewReconciler(store, makeItems("A", "B", "C"))

		err := rec.Reorder(context.Background(), []string{"C", "A", "B"})
		require.NoError(t, err)

		require.Len(t, store.batches, 1)
		assert.Len(t, store.batches[0], 3)

		got := map[string]int{}
		for _, item := range rec.Items() {
			got[item.ID] = item.Order
		}
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 0}, got)
	})

	t.Run("network failure", func(t *testing.T) {
		store := &mockStore{err: errors.New("network unreachable")}
		rec := NewReconciler(store, makeItems("A", "B", "C"))

		err := rec.Reorder(context.Background(), []string{"C", "A", "B"})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrReorderFailed)

		got := rec.Items()
		assert.Equal(t, []string{"A", "B", "C"}, orderedIDs(got))
		for i, item := range got {
			assert.Equal(t, i, item.Order)
		}
	})
}
