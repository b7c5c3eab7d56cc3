package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoinvoice/internal/domain"
	"autoinvoice/internal/middleware"
	"autoinvoice/internal/port"
	"autoinvoice/internal/service"
)

// memInvoiceRepo is an in-memory invoice repository for handler tests.
type memInvoiceRepo struct {
	invoices map[uuid.UUID]*domain.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: map[uuid.UUID]*domain.Invoice{}}
}

func (m *memInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	for _, existing := range m.invoices {
		if existing.UserID == inv.UserID && existing.MessageID == inv.MessageID {
			return domain.ErrInvoiceAlreadyExists
		}
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memInvoiceRepo) ExistsByMessage(ctx context.Context, userID, messageID string) (bool, error) {
	for _, inv := range m.invoices {
		if inv.UserID == userID && inv.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memInvoiceRepo) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvoiceRepo) ListByUser(ctx context.Context, userID string) ([]domain.Invoice, error) {
	out := []domain.Invoice{}
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memInvoiceRepo) Update(ctx context.Context, userID string, id uuid.UUID, upd domain.InvoiceUpdate) (*domain.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	if upd.Vendor != nil {
		inv.Vendor = *upd.Vendor
	}
	if upd.Amount != nil {
		inv.Amount = upd.Amount
	}
	if upd.InvoiceNumber != nil {
		inv.InvoiceNumber = upd.InvoiceNumber
	}
	inv.UpdatedAt = time.Now()
	cp := *inv
	return &cp, nil
}

func (m *memInvoiceRepo) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	inv.Status = status
	cp := *inv
	return &cp, nil
}

func (m *memInvoiceRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return domain.ErrInvoiceNotFound
	}
	delete(m.invoices, id)
	return nil
}

func testUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	}
}

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	return &port.UploadOutput{}, nil
}
func (stubStorage) Delete(ctx context.Context, bucket, key string) error { return nil }
func (stubStorage) PublicURL(bucket, key string) string                  { return "https://" + bucket + "/" + key }
func (stubStorage) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	return "https://presigned.example.com/" + key, nil
}

func setupInvoiceRouter(repo *memInvoiceRepo, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewInvoiceHandler(service.NewInvoiceService(repo, stubStorage{}, "invoice-files", 3600))

	r := gin.New()
	g := r.Group("/api/v1/invoices", testUser(userID))
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/download", h.Download)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
	return r
}

func seedInvoice(repo *memInvoiceRepo, userID, messageID string) uuid.UUID {
	id := uuid.New()
	repo.invoices[id] = &domain.Invoice{
		ID:        id,
		UserID:    userID,
		MessageID: messageID,
		Vendor:    "Acme Corp",
		FileName:  "invoice.pdf",
		Status:    domain.StatusApproved,
		CreatedAt: time.Now(),
	}
	return id
}

func TestInvoiceList_ScopedToUser(t *testing.T) {
	repo := newMemInvoiceRepo()
	seedInvoice(repo, "user-1", "msg-1")
	seedInvoice(repo, "user-2", "msg-2")

	r := setupInvoiceRouter(repo, "user-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    []domain.Invoice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "user-1", resp.Data[0].UserID)
}

func TestInvoiceGet_OtherUsersInvoiceIs404(t *testing.T) {
	repo := newMemInvoiceRepo()
	otherID := seedInvoice(repo, "user-2", "msg-2")

	r := setupInvoiceRouter(repo, "user-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+otherID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceGet_InvalidID(t *testing.T) {
	r := setupInvoiceRouter(newMemInvoiceRepo(), "user-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceDownload(t *testing.T) {
	repo := newMemInvoiceRepo()
	id := seedInvoice(repo, "user-1", "msg-1")
	r := setupInvoiceRouter(repo, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String()+"/download", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://presigned.example.com/user-1/"+id.String()+".pdf", resp.Data["url"])
}

func TestInvoiceUpdate(t *testing.T) {
	repo := newMemInvoiceRepo()
	id := seedInvoice(repo, "user-1", "msg-1")

	r := setupInvoiceRouter(repo, "user-1")
	body := bytes.NewBufferString(`{"vendor": "Globex", "amount": 42.5}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/invoices/"+id.String(), body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data domain.Invoice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Globex", resp.Data.Vendor)
	require.NotNil(t, resp.Data.Amount)
	assert.Equal(t, 42.5, *resp.Data.Amount)
}

func TestInvoiceUpdateStatus(t *testing.T) {
	repo := newMemInvoiceRepo()
	id := seedInvoice(repo, "user-1", "msg-1")
	r := setupInvoiceRouter(repo, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+id.String()+"/status",
		bytes.NewBufferString(`{"status": "paid"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusPaid, repo.invoices[id].Status)
}

func TestInvoiceUpdateStatus_Invalid(t *testing.T) {
	repo := newMemInvoiceRepo()
	id := seedInvoice(repo, "user-1", "msg-1")
	r := setupInvoiceRouter(repo, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+id.String()+"/status",
		bytes.NewBufferString(`{"status": "shredded"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.StatusApproved, repo.invoices[id].Status)
}

func TestInvoiceDelete(t *testing.T) {
	repo := newMemInvoiceRepo()
	id := seedInvoice(repo, "user-1", "msg-1")
	r := setupInvoiceRouter(repo, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/invoices/"+id.String(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.invoices)
}
