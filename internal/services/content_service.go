package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/reorder"
	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// OrderedCollection is a content table that supports display reordering
type OrderedCollection interface {
	ListItems(ctx context.Context) ([]reorder.Item, error)
	UpdateOrders(ctx context.Context, updates []reorder.Update) error
}

// ContentService owns the display-order operations shared by every
// orderable collection. Item CRUD stays in the per-collection handlers;
// this service exists for the part where collections behave identically.
type ContentService struct {
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewContentService creates a new ContentService
func NewContentService(logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ContentService {
	return &ContentService{logger: logger, auditLogger: auditLogger}
}

// Reorder applies a full explicit ordering to a collection. The ordered id
// list must be a permutation of the collection's current ids.
func (s *ContentService) Reorder(ctx context.Context, collection string, col OrderedCollection, orderedIDs []string, actorID string) error {
	items, err := col.ListItems(ctx)
	if err != nil {
		s.logger.Error("failed to load collection for reorder",
			slog.String("collection", collection), slog.Any("error", err))
		return models.ErrInternalServer
	}

	rec := reorder.NewReconciler(col, items)
	if err := rec.Reorder(ctx, orderedIDs); err != nil {
		return s.mapReorderError(collection, actorID, err)
	}

	s.auditLogger.LogAccountAction("collection_reordered", actorID, "", map[string]string{
		"collection": collection,
		"count":      strconv.Itoa(len(orderedIDs)),
	})
	return nil
}

// Move shifts one item a single position up or down. Moves past either end
// of the collection are accepted and do nothing.
func (s *ContentService) Move(ctx context.Context, collection string, col OrderedCollection, id string, dir reorder.Direction, actorID string) error {
	if !dir.Valid() {
		return models.ErrBadRequest
	}

	items, err := col.ListItems(ctx)
	if err != nil {
		s.logger.Error("failed to load collection for move",
			slog.String("collection", collection), slog.Any("error", err))
		return models.ErrInternalServer
	}

	rec := reorder.NewReconciler(col, items)
	if err := rec.Move(ctx, id, dir); err != nil {
		return s.mapReorderError(collection, actorID, err)
	}

	return nil
}

// Compact closes positional gaps after a delete by reassigning contiguous
// positions in the current sort order. Only rows whose position actually
// changes are written.
func (s *ContentService) Compact(ctx context.Context, collection string, col OrderedCollection) error {
	items, err := col.ListItems(ctx)
	if err != nil {
		s.logger.Error("failed to load collection for compaction",
			slog.String("collection", collection), slog.Any("error", err))
		return models.ErrInternalServer
	}

	sorted := make([]reorder.Item, len(items))
	copy(sorted, items)
	reorder.Sort(sorted)

	ids := make([]string, len(sorted))
	for i, item := range sorted {
		ids[i] = item.ID
	}

	updates, err := reorder.Plan(items, ids)
	if err != nil {
		s.logger.Error("failed to plan compaction",
			slog.String("collection", collection), slog.Any("error", err))
		return models.ErrInternalServer
	}
	if len(updates) == 0 {
		return nil
	}

	if err := col.UpdateOrders(ctx, updates); err != nil {
		s.logger.Error("failed to persist compaction",
			slog.String("collection", collection), slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

func (s *ContentService) mapReorderError(collection, actorID string, err error) error {
	switch {
	case errors.Is(err, models.ErrUnknownRecord):
		return models.ErrBadRequest
	case errors.Is(err, models.ErrReorderFailed):
		s.logger.Error("reorder failed, collection rolled back",
			slog.String("collection", collection), slog.Any("error", err))
		s.auditLogger.LogAccountAction("collection_reorder_failed", actorID, "", map[string]string{
			"collection": collection,
		})
		return err
	default:
		return models.ErrInternalServer
	}
}
