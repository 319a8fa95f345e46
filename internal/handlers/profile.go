package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/models"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// ProfileRepositoryInterface defines the persistence operations the handler needs
type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error)
}

// PasswordChanger verifies and replaces the owner's password
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// ProfileHandler handles the owner's profile and password
type ProfileHandler struct {
	repo     ProfileRepositoryInterface
	password PasswordChanger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(repo ProfileRepositoryInterface, password PasswordChanger) *ProfileHandler {
	return &ProfileHandler{repo: repo, password: password}
}

// ProfileResponse is the safe projection of the owner account
type ProfileResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Image      string     `json:"image,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Location   string     `json:"location,omitempty"`
	MFAEnabled bool       `json:"mfa_enabled"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UpdateProfileRequest is the request body for profile updates
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Image    string `json:"image,omitempty" validate:"omitempty,url"`
	Bio      string `json:"bio,omitempty" validate:"max=5000"`
	Location string `json:"location,omitempty" validate:"max=200"`
}

// ChangePasswordRequest is the request body for password changes
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// Get returns the signed-in owner's profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	user, err := h.repo.GetByID(r.Context(), view.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profileResponse(user))
}

// Update edits the owner's public profile fields
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.repo.UpdateProfile(r.Context(), view.UserID, &models.User{
		Name:     strings.TrimSpace(req.Name),
		Image:    req.Image,
		Bio:      req.Bio,
		Location: req.Location,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profileResponse(user))
}

// ChangePassword verifies the current password before setting the new one.
// A success invalidates every other session.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	view := auth.GetSessionFromContext(r)
	if view == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.password.ChangePassword(r.Context(), view.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
		case errors.Is(err, models.ErrInternalServer):
			pkghttp.WriteInternalError(w, "Internal server error")
		default:
			// Password policy violations carry their own message
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func profileResponse(user *models.User) ProfileResponse {
	return ProfileResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Image:      user.Image,
		Bio:        user.Bio,
		Location:   user.Location,
		MFAEnabled: user.MFAEnabled,
		LastLogin:  user.LastLogin,
		CreatedAt:  user.CreatedAt,
	}
}
