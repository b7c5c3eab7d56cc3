package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"autoinvoice/internal/domain"
	"autoinvoice/internal/port"
)

// InvoiceService implements user-facing invoice CRUD.
type InvoiceService struct {
	invoices      port.InvoiceRepository
	storage       port.ObjectStorage
	bucket        string
	presignExpiry int64
}

// NewInvoiceService creates an invoice service.
func NewInvoiceService(invoices port.InvoiceRepository, storage port.ObjectStorage, bucket string, presignExpiry int64) *InvoiceService {
	return &InvoiceService{
		invoices:      invoices,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

// List returns all invoices owned by the user, newest first.
func (s *InvoiceService) List(ctx context.Context, userID string) ([]domain.Invoice, error) {
	return s.invoices.ListByUser(ctx, userID)
}

// Get returns one invoice owned by the user.
func (s *InvoiceService) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, userID, id)
}

// Update applies user edits to an invoice.
func (s *InvoiceService) Update(ctx context.Context, userID string, id uuid.UUID, upd domain.InvoiceUpdate) (*domain.Invoice, error) {
	return s.invoices.Update(ctx, userID, id, upd)
}

// UpdateStatus changes the invoice workflow status.
func (s *InvoiceService) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !domain.AllowedStatuses[status] {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return s.invoices.UpdateStatus(ctx, userID, id, status)
}

// DownloadURL returns a short-lived presigned URL for the stored file. The
// object key is reconstructed from the invoice id and original extension,
// matching the layout the pipeline uploads under.
func (s *InvoiceService) DownloadURL(ctx context.Context, userID string, id uuid.UUID) (string, error) {
	inv, err := s.invoices.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s%s", inv.UserID, inv.ID, strings.ToLower(filepath.Ext(inv.FileName)))
	return s.storage.GetPresignedURL(ctx, s.bucket, key, s.presignExpiry)
}

// Delete removes an invoice record. The uploaded object is retained;
// deleting the row also makes the source message eligible for processing
// again on the next scan.
func (s *InvoiceService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.invoices.Delete(ctx, userID, id)
}
