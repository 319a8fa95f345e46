package handlers

import (
	"errors"
	"net/http"

	"github.com/seanmccall/folio/internal/models"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// ReorderRequest carries a full explicit ordering for a collection
type ReorderRequest struct {
	OrderedIDs []string `json:"ordered_ids" validate:"required,min=1,dive,required"`
}

// MoveRequest shifts a single item one position
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// writeContentError maps service and repository errors for the content
// collections onto HTTP responses.
func writeContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Conflict")
	case errors.Is(err, models.ErrReorderFailed):
		pkghttp.WriteError(w, http.StatusInternalServerError, "reorder_failed",
			"The new order could not be saved and has been rolled back")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
