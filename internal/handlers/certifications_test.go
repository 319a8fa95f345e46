package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmccall/folio/internal/models"
	"github.com/seanmccall/folio/internal/reorder"
	"github.com/seanmccall/folio/internal/services"
)

// mockCertificationRepo backs the handler with an in-memory collection
type mockCertificationRepo struct {
	certs       []*models.Certification
	updateErr   error
	lastUpdates []reorder.Update
}

func (m *mockCertificationRepo) List(ctx context.Context) ([]*models.Certification, error) {
	return m.certs, nil
}

func (m *mockCertificationRepo) GetByID(ctx context.Context, id string) (*models.Certification, error) {
	for _, c := range m.certs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockCertificationRepo) Create(ctx context.Context, cert *models.Certification) (*models.Certification, error) {
	cert.ID = "cert-new"
	cert.Order = len(m.certs)
	m.certs = append(m.certs, cert)
	return cert, nil
}

func (m *mockCertificationRepo) Update(ctx context.Context, id string, cert *models.Certification) (*models.Certification, error) {
	cert.ID = id
	return cert, nil
}

func (m *mockCertificationRepo) Delete(ctx context.Context, id string) error {
	for i, c := range m.certs {
		if c.ID == id {
			m.certs = append(m.certs[:i], m.certs[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *mockCertificationRepo) ListItems(ctx context.Context) ([]reorder.Item, error) {
	items := make([]reorder.Item, len(m.certs))
	for i, c := range m.certs {
		items[i] = reorder.Item{ID: c.ID, Order: c.Order, CreatedAt: c.CreatedAt}
	}
	return items, nil
}

func (m *mockCertificationRepo) UpdateOrders(ctx context.Context, updates []reorder.Update) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdates = updates
	for _, u := range updates {
		for _, c := range m.certs {
			if c.ID == u.ID {
				c.Order = u.Order
			}
		}
	}
	return nil
}

func seededCertRepo() *mockCertificationRepo {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &mockCertificationRepo{certs: []*models.Certification{
		{ID: "cert-a", Title: "A", Issuer: "Issuer", Order: 0, CreatedAt: base},
		{ID: "cert-b", Title: "B", Issuer: "Issuer", Order: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "cert-c", Title: "C", Issuer: "Issuer", Order: 2, CreatedAt: base.Add(2 * time.Minute)},
	}}
}

func newCertHandler(repo *mockCertificationRepo) *CertificationHandler {
	content := services.NewContentService(testHandlerLogger(), testHandlerAuditLogger())
	return NewCertificationHandler(repo, content)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCertificationHandler_Reorder(t *testing.T) {
	repo := seededCertRepo()
	h := newCertHandler(repo)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/certifications/order",
		jsonBody(t, ReorderRequest{OrderedIDs: []string{"cert-c", "cert-a", "cert-b"}}))

	h.Reorder(rr, withAdminSession(req))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, repo.certs[2].Order, "cert-c moved to the front")
	assert.Equal(t, 1, repo.certs[0].Order)
	assert.Equal(t, 2, repo.certs[1].Order)
}

func TestCertificationHandler_Reorder_UnknownID(t *testing.T) {
	h := newCertHandler(seededCertRepo())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/certifications/order",
		jsonBody(t, ReorderRequest{OrderedIDs: []string{"cert-c", "cert-a", "nope"}}))

	h.Reorder(rr, withAdminSession(req))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCertificationHandler_Reorder_PersistenceFailure(t *testing.T) {
	repo := seededCertRepo()
	repo.updateErr = errors.New("connection reset")
	h := newCertHandler(repo)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/certifications/order",
		jsonBody(t, ReorderRequest{OrderedIDs: []string{"cert-c", "cert-a", "cert-b"}}))

	h.Reorder(rr, withAdminSession(req))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "reorder_failed")

	// The stored order is untouched
	for i, want := range []int{0, 1, 2} {
		assert.Equal(t, want, repo.certs[i].Order)
	}
}

func TestCertificationHandler_Move_BoundaryNoOp(t *testing.T) {
	repo := seededCertRepo()
	h := newCertHandler(repo)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/certifications/cert-a/move",
		jsonBody(t, MoveRequest{Direction: "up"}))
	req = withChiParam(withAdminSession(req), "id", "cert-a")

	h.Move(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, repo.lastUpdates, "boundary move writes nothing")
}

func TestCertificationHandler_Move_InvalidDirection(t *testing.T) {
	h := newCertHandler(seededCertRepo())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/certifications/cert-a/move",
		jsonBody(t, MoveRequest{Direction: "sideways"}))
	req = withChiParam(withAdminSession(req), "id", "cert-a")

	h.Move(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCertificationHandler_CreateAppendsAtEnd(t *testing.T) {
	repo := seededCertRepo()
	h := newCertHandler(repo)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/certifications",
		jsonBody(t, CertificationRequest{Title: "New", Issuer: "Issuer"}))

	h.Create(rr, withAdminSession(req))

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Certification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, 3, created.Order)
}

func TestCertificationHandler_DeleteCompacts(t *testing.T) {
	repo := seededCertRepo()
	h := newCertHandler(repo)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/certifications/cert-b", nil)
	req = withChiParam(withAdminSession(req), "id", "cert-b")

	h.Delete(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, repo.certs, 2)
	assert.Equal(t, 0, repo.certs[0].Order)
	assert.Equal(t, 1, repo.certs[1].Order, "gap left by the delete is closed")
}
