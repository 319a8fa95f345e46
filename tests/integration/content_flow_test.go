package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/seanmccall/folio/internal/models"
)

func listCertifications(t *testing.T, ts *TestServer) []models.Certification {
	t.Helper()

	resp, err := ts.Request("GET", "/certifications", nil, nil)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}

	var certs []models.Certification
	if err := ParseJSONResponse(resp, &certs); err != nil {
		t.Fatalf("parse list response: %v", err)
	}
	return certs
}

func TestReorderFlow(t *testing.T) {
	ctx := context.Background()
	if err := testDB.CleanupTables(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := SeedAdmin(ctx, testDB.DB, "owner@example.com", "Correct-Horse-9"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	seeded, err := SeedCertifications(ctx, testDB.DB, "First", "Second", "Third")
	if err != nil {
		t.Fatalf("seed certifications: %v", err)
	}

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	csrfToken, err := ts.Login("owner@example.com", "Correct-Horse-9")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	headers := map[string]string{"X-CSRF-Token": csrfToken}

	// Reverse the display order
	resp, err := ts.Request("PUT", "/admin/certifications/order", map[string]any{
		"ordered_ids": []string{seeded[2].ID, seeded[1].ID, seeded[0].ID},
	}, headers)
	if err != nil {
		t.Fatalf("reorder request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d", resp.StatusCode)
	}

	certs := listCertifications(t, ts)
	if len(certs) != 3 {
		t.Fatalf("expected 3 certifications, got %d", len(certs))
	}
	wantTitles := []string{"Third", "Second", "First"}
	for i, cert := range certs {
		if cert.Title != wantTitles[i] {
			t.Errorf("position %d: got %q, want %q", i, cert.Title, wantTitles[i])
		}
		if cert.Order != i {
			t.Errorf("position %d: order %d, want %d", i, cert.Order, i)
		}
	}

	// An unknown id rejects the whole batch and changes nothing
	resp, err = ts.Request("PUT", "/admin/certifications/order", map[string]any{
		"ordered_ids": []string{"no-such-id", seeded[1].ID, seeded[0].ID},
	}, headers)
	if err != nil {
		t.Fatalf("reorder request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown id: expected 400, got %d", resp.StatusCode)
	}

	after := listCertifications(t, ts)
	for i, cert := range after {
		if cert.Title != wantTitles[i] {
			t.Errorf("order changed after rejected batch: position %d is %q", i, cert.Title)
		}
	}
}

func TestMoveAndCompactFlow(t *testing.T) {
	ctx := context.Background()
	if err := testDB.CleanupTables(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := SeedAdmin(ctx, testDB.DB, "owner@example.com", "Correct-Horse-9"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	seeded, err := SeedCertifications(ctx, testDB.DB, "First", "Second", "Third")
	if err != nil {
		t.Fatalf("seed certifications: %v", err)
	}

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	csrfToken, err := ts.Login("owner@example.com", "Correct-Horse-9")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	headers := map[string]string{"X-CSRF-Token": csrfToken}

	// Move the last entry up one position
	resp, err := ts.Request("POST", "/admin/certifications/"+seeded[2].ID+"/move", map[string]string{
		"direction": "up",
	}, headers)
	if err != nil {
		t.Fatalf("move request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move: expected 200, got %d", resp.StatusCode)
	}

	certs := listCertifications(t, ts)
	wantTitles := []string{"First", "Third", "Second"}
	for i, cert := range certs {
		if cert.Title != wantTitles[i] {
			t.Errorf("position %d: got %q, want %q", i, cert.Title, wantTitles[i])
		}
	}

	// Moving the first entry up is a no-op, not an error
	resp, err = ts.Request("POST", "/admin/certifications/"+seeded[0].ID+"/move", map[string]string{
		"direction": "up",
	}, headers)
	if err != nil {
		t.Fatalf("move request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("boundary move: expected 200, got %d", resp.StatusCode)
	}

	// Deleting the middle entry closes the gap
	resp, err = ts.Request("DELETE", "/admin/certifications/"+seeded[2].ID, nil, headers)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	remaining := listCertifications(t, ts)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 certifications, got %d", len(remaining))
	}
	for i, cert := range remaining {
		if cert.Order != i {
			t.Errorf("order not compacted: position %d has order %d", i, cert.Order)
		}
	}
}
