package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// SecurityServiceInterface covers the account-security operations
type SecurityServiceInterface interface {
	LoginHistory(ctx context.Context, userID string, limit int) ([]*models.LoginEvent, error)
	SetupMFA(ctx context.Context, userID string) (*services.MFASetup, error)
	EnableMFA(ctx context.Context, userID, secret, code string) error
	DisableMFA(ctx context.Context, userID, code string) error
}

// SecurityHandler exposes login history and MFA management for the owner
type SecurityHandler struct {
	service SecurityServiceInterface
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(service SecurityServiceInterface) *SecurityHandler {
	return &SecurityHandler{service: service}
}

// EnableMFARequest confirms an enrollment with a live code
type EnableMFARequest struct {
	Secret string `json:"secret" validate:"required"`
	Code   string `json:"code" validate:"required,len=6"`
}

// DisableMFARequest drops an enrollment, also code-gated
type DisableMFARequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// LoginHistory returns recent sign-ins for the owner dashboard
func (h *SecurityHandler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	events, err := h.service.LoginHistory(r.Context(), view.UserID, limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"logins": events})
}

// SetupMFA generates enrollment material for the authenticator app
func (h *SecurityHandler) SetupMFA(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	setup, err := h.service.SetupMFA(r.Context(), view.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, setup)
}

// EnableMFA confirms the enrollment with a code for the pending secret
func (h *SecurityHandler) EnableMFA(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req EnableMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.EnableMFA(r.Context(), view.UserID, req.Secret, req.Code); err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "MFA enabled"})
}

// DisableMFA drops the enrollment after verifying a live code
func (h *SecurityHandler) DisableMFA(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req DisableMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.DisableMFA(r.Context(), view.UserID, req.Code); err != nil {
		writeContentError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "MFA disabled"})
}
