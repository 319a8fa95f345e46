package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/reorder"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// ServiceItemRepositoryInterface defines the persistence operations the handler needs
type ServiceItemRepositoryInterface interface {
	services.OrderedCollection
	List(ctx context.Context) ([]*models.ServiceItem, error)
	GetByID(ctx context.Context, id string) (*models.ServiceItem, error)
	Create(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error)
	Update(ctx context.Context, id string, item *models.ServiceItem) (*models.ServiceItem, error)
	Delete(ctx context.Context, id string) error
}

// ServiceItemHandler handles service-offering CRUD and ordering
type ServiceItemHandler struct {
	repo    ServiceItemRepositoryInterface
	content *services.ContentService
}

// NewServiceItemHandler creates a new ServiceItemHandler
func NewServiceItemHandler(repo ServiceItemRepositoryInterface, content *services.ContentService) *ServiceItemHandler {
	return &ServiceItemHandler{repo: repo, content: content}
}

// ServiceItemRequest is the request body for create and update
type ServiceItemRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Icon        string `json:"icon,omitempty" validate:"max=100"`
}

// List returns all service items in display order
func (h *ServiceItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, items)
}

// Get returns a single service item
func (h *ServiceItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, item)
}

// Create appends a new service item at the end of the display order
func (h *ServiceItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ServiceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	item, err := h.repo.Create(r.Context(), &models.ServiceItem{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, item)
}

// Update replaces the editable fields of a service item
func (h *ServiceItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ServiceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	item, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &models.ServiceItem{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, item)
}

// Delete removes a service item and closes the positional gap it leaves
func (h *ServiceItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeContentError(w, err)
		return
	}

	if err := h.content.Compact(r.Context(), "service_items", h.repo); err != nil {
		writeContentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a full explicit ordering
func (h *ServiceItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	actor := auth.GetSessionFromContext(r)
	if err := h.content.Reorder(r.Context(), "service_items", h.repo, req.OrderedIDs, actorID(actor)); err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}

// Move shifts one service item a single position up or down
func (h *ServiceItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	actor := auth.GetSessionFromContext(r)
	err := h.content.Move(r.Context(), "service_items", h.repo, chi.URLParam(r, "id"), reorder.Direction(req.Direction), actorID(actor))
	if err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}
