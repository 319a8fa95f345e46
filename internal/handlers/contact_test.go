package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmccall/folio/internal/services"
)

func TestContactHandler_Submit(t *testing.T) {
	var sent services.ContactMessage
	email := &MockEmailService{
		SendContactMessageFunc: func(ctx context.Context, msg services.ContactMessage) error {
			sent = msg
			return nil
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", jsonBody(t, ContactRequest{
		Name:  "Visitor",
		Email: "Visitor@Example.COM",
		Body:  "I would like to hire you.",
	}))

	NewContactHandler(email).Submit(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "visitor@example.com", sent.Email)
	assert.Equal(t, "Visitor", sent.Name)
}

func TestContactHandler_Submit_InvalidEmail(t *testing.T) {
	email := &MockEmailService{
		SendContactMessageFunc: func(ctx context.Context, msg services.ContactMessage) error {
			t.Fatal("invalid submissions must not be forwarded")
			return nil
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", jsonBody(t, ContactRequest{
		Name:  "Visitor",
		Email: "not-an-email",
		Body:  "hello",
	}))

	NewContactHandler(email).Submit(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestContactHandler_Submit_DeliveryFailure(t *testing.T) {
	email := &MockEmailService{
		SendContactMessageFunc: func(ctx context.Context, msg services.ContactMessage) error {
			return errors.New("ses unavailable")
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", jsonBody(t, ContactRequest{
		Name:  "Visitor",
		Email: "visitor@example.com",
		Body:  "hello",
	}))

	NewContactHandler(email).Submit(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
