package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/seanmccall/folio/internal/services"
	pkghttp "github.com/seanmccall/folio/pkg/http"
)

// ContactHandler accepts public contact form submissions
type ContactHandler struct {
	email services.EmailService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(email services.EmailService) *ContactHandler {
	return &ContactHandler{email: email}
}

// ContactRequest is the public contact form payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty" validate:"max=200"`
	Body    string `json:"body" validate:"required,max=10000"`
}

// Submit validates and forwards a visitor message to the owner
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	msg := services.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Subject: req.Subject,
		Body:    req.Body,
	}

	if err := h.email.SendContactMessage(r.Context(), msg); err != nil {
		pkghttp.WriteInternalError(w, "Message could not be delivered")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, map[string]string{"message": "Message sent"})
}
