package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/reorder"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// ExperienceRepositoryInterface defines the persistence operations the handler needs
type ExperienceRepositoryInterface interface {
	services.OrderedCollection
	List(ctx context.Context) ([]*models.Experience, error)
	GetByID(ctx context.Context, id string) (*models.Experience, error)
	Create(ctx context.Context, exp *models.Experience) (*models.Experience, error)
	Update(ctx context.Context, id string, exp *models.Experience) (*models.Experience, error)
	Delete(ctx context.Context, id string) error
}

// ExperienceHandler handles work-experience CRUD and ordering
type ExperienceHandler struct {
	repo    ExperienceRepositoryInterface
	content *services.ContentService
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(repo ExperienceRepositoryInterface, content *services.ContentService) *ExperienceHandler {
	return &ExperienceHandler{repo: repo, content: content}
}

// ExperienceRequest is the request body for create and update
type ExperienceRequest struct {
	Role      string     `json:"role" validate:"required,max=200"`
	Company   string     `json:"company" validate:"required,max=200"`
	Summary   string     `json:"summary,omitempty" validate:"max=2000"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// List returns all experiences in display order
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	exps, err := h.repo.List(r.Context())
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, exps)
}

// Get returns a single experience
func (h *ExperienceHandler) Get(w http.ResponseWriter, r *http.Request) {
	exp, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, exp)
}

// Create appends a new experience at the end of the display order
func (h *ExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	exp, err := h.repo.Create(r.Context(), &models.Experience{
		Role:      req.Role,
		Company:   req.Company,
		Summary:   req.Summary,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, exp)
}

// Update replaces the editable fields of an experience
func (h *ExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	exp, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &models.Experience{
		Role:      req.Role,
		Company:   req.Company,
		Summary:   req.Summary,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, exp)
}

// Delete removes an experience and closes the positional gap it leaves
func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeContentError(w, err)
		return
	}

	if err := h.content.Compact(r.Context(), "experiences", h.repo); err != nil {
		writeContentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a full explicit ordering
func (h *ExperienceHandler) Reorder(w http.ResponseWriter, r *http.Request) {
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
	if err := h.content.Reorder(r.Context(), "experiences", h.repo, req.OrderedIDs, actorID(actor)); err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}

// Move shifts one experience a single position up or down
func (h *ExperienceHandler) Move(w http.ResponseWriter, r *http.Request) {
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
	err := h.content.Move(r.Context(), "experiences", h.repo, chi.URLParam(r, "id"), reorder.Direction(req.Direction), actorID(actor))
	if err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}
