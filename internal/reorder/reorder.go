// Package reorder computes and applies the persistence operations needed to
// realize a requested reordering of a display-ordered collection.
//
// Records carry an integer order field that must stay contiguous (0..n-1).
// Callers either supply a full target permutation (drag end) or a
// single-step move (move up/down). The working copy is mutated before
// persistence is confirmed; a failed persistence restores the exact prior
// snapshot rather than re-fetching, so a concurrent edit is never silently
// discarded.
package reorder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seanmccall/folio/internal/models"
)

// Item is the ordering projection of any orderable record.
type Item struct {
	ID        string
	Order     int
	CreatedAt time.Time
}

// Update is one pending persistence operation: set the record's order.
type Update struct {
	ID    string
	Order int
}

// Direction of a single-step move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Store persists a batch of per-record order updates. The batch is not
// required to be atomic; partial application is tolerated by the rollback
// policy in Reconciler.
type Store interface {
	UpdateOrders(ctx context.Context, updates []Update) error
}

// Sort orders items by their order field. Ties (which only arise from a
// partial-failure history) break by creation time, then id, so display
// order stays deterministic.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Plan computes the updates for a full reorder. orderedIDs is the complete
// target permutation; each record's new order is its 0-based position.
// Only records whose order actually changes produce an update. The id set
// must match the current items exactly.
func Plan(current []Item, orderedIDs []string) ([]Update, error) {
	if len(orderedIDs) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids for %d records", models.ErrUnknownRecord, len(orderedIDs), len(current))
	}

	byID := make(map[string]Item, len(current))
	for _, item := range current {
		byID[item.ID] = item
	}

	updates := make([]Update, 0, len(orderedIDs))
	seen := make(map[string]bool, len(orderedIDs))
	for pos, id := range orderedIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownRecord, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate id %q", models.ErrUnknownRecord, id)
		}
		seen[id] = true

		if item.Order != pos {
			updates = append(updates, Update{ID: id, Order: pos})
		}
	}

	return updates, nil
}

// PlanMove computes the updates for a single-step move: the record swaps
// order values with its adjacent neighbor in the current display sequence.
// Moving the first record up or the last record down returns no updates and
// must not reach persistence.
func PlanMove(current []Item, id string, dir Direction) ([]Update, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction %q", models.ErrBadRequest, dir)
	}

	ordered := make([]Item, len(current))
	copy(ordered, current)
	Sort(ordered)

	idx := -1
	for i, item := range ordered {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownRecord, id)
	}

	var neighbor int
	switch dir {
	case DirectionUp:
		if idx == 0 {
			return nil, nil
		}
		neighbor = idx - 1
	case DirectionDown:
		if idx == len(ordered)-1 {
			return nil, nil
		}
		neighbor = idx + 1
	}

	return []Update{
		{ID: ordered[idx].ID, Order: ordered[neighbor].Order},
		{ID: ordered[neighbor].ID, Order: ordered[idx].Order},
	}, nil
}

// Reconciler holds a working copy of an ordered collection and applies
// reorders optimistically: the copy is mutated before the store call, and
// restored to the exact prior snapshot if the store call fails. Failures
// surface as a single wrapped models.ErrReorderFailed, never per record.
type Reconciler struct {
	store Store
	items []Item
}

func NewReconciler(store Store, items []Item) *Reconciler {
	working := make([]Item, len(items))
	copy(working, items)
	Sort(working)
	return &Reconciler{store: store, items: working}
}

// Items returns the current working copy in display order.
func (r *Reconciler) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Reorder applies a full target permutation.
func (r *Reconciler) Reorder(ctx context.Context, orderedIDs []string) error {
	updates, err := Plan(r.items, orderedIDs)
	if err != nil {
		return err
	}
	return r.apply(ctx, updates)
}

// Move applies a single-step move. Boundary moves are a no-op.
func (r *Reconciler) Move(ctx context.Context, id string, dir Direction) error {
	updates, err := PlanMove(r.items, id, dir)
	if err != nil {
		return err
	}
	return r.apply(ctx, updates)
}

func (r *Reconciler) apply(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}

	snapshot := make([]Item, len(r.items))
	copy(snapshot, r.items)

	// Optimistic: mutate the working copy before the store call so the
	// caller-visible list updates with zero perceived latency.
	byID := make(map[string]int, len(updates))
	for _, u := range updates {
		byID[u.ID] = u.Order
	}
	for i := range r.items {
		if order, ok := byID[r.items[i].ID]; ok {
			r.items[i].Order = order
		}
	}
	Sort(r.items)

	if err := r.store.UpdateOrders(ctx, updates); err != nil {
		r.items = snapshot
		return fmt.Errorf("%w: %v", models.ErrReorderFailed, err)
	}

	return nil
}
