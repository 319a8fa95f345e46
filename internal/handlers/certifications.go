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

// CertificationRepositoryInterface defines the persistence operations the handler needs
type CertificationRepositoryInterface interface {
	services.OrderedCollection
	List(ctx context.Context) ([]*models.Certification, error)
	GetByID(ctx context.Context, id string) (*models.Certification, error)
	Create(ctx context.Context, cert *models.Certification) (*models.Certification, error)
	Update(ctx context.Context, id string, cert *models.Certification) (*models.Certification, error)
	Delete(ctx context.Context, id string) error
}

// CertificationHandler handles certification CRUD and ordering
type CertificationHandler struct {
	repo    CertificationRepositoryInterface
	content *services.ContentService
}

// NewCertificationHandler creates a new CertificationHandler
func NewCertificationHandler(repo CertificationRepositoryInterface, content *services.ContentService) *CertificationHandler {
	return &CertificationHandler{repo: repo, content: content}
}

// CertificationRequest is the request body for create and update
type CertificationRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Issuer        string     `json:"issuer" validate:"required,max=200"`
	CredentialURL string     `json:"credential_url,omitempty" validate:"omitempty,url"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
}

// List returns all certifications in display order
func (h *CertificationHandler) List(w http.ResponseWriter, r *http.Request) {
	certs, err := h.repo.List(r.Context())
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, certs)
}

// Get returns a single certification
func (h *CertificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, cert)
}

// Create appends a new certification at the end of the display order
func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CertificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	cert, err := h.repo.Create(r.Context(), &models.Certification{
		Title:         req.Title,
		Issuer:        req.Issuer,
		CredentialURL: req.CredentialURL,
		IssuedAt:      req.IssuedAt,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, cert)
}

// Update replaces the editable fields of a certification
func (h *CertificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CertificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	cert, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &models.Certification{
		Title:         req.Title,
		Issuer:        req.Issuer,
		CredentialURL: req.CredentialURL,
		IssuedAt:      req.IssuedAt,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, cert)
}

// Delete removes a certification and closes the positional gap it leaves
func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeContentError(w, err)
		return
	}

	if err := h.content.Compact(r.Context(), "certifications", h.repo); err != nil {
		writeContentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a full explicit ordering
func (h *CertificationHandler) Reorder(w http.ResponseWriter, r *http.Request) {
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
	if err := h.content.Reorder(r.Context(), "certifications", h.repo, req.OrderedIDs, actorID(actor)); err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}

// Move shifts one certification a single position up or down
func (h *CertificationHandler) Move(w http.ResponseWriter, r *http.Request) {
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
	err := h.content.Move(r.Context(), "certifications", h.repo, chi.URLParam(r, "id"), reorder.Direction(req.Direction), actorID(actor))
	if err != nil {
		writeContentError(w, err)
		return
	}

	h.List(w, r)
}

// actorID tolerates a missing session for audit purposes
func actorID(view *models.SessionView) string {
	if view == nil {
		return ""
	}
	return view.UserID
}
