package port

import (
	"context"

	"github.com/google/uuid"

	"autoinvoice/internal/domain"
)

// InvoiceRepository persists invoice records. Every query is scoped by the
// owning user id; there is no unscoped access path.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	ExistsByMessage(ctx context.Context, userID, messageID string) (bool, error)
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Invoice, error)
	Update(ctx context.Context, userID string, id uuid.UUID, upd domain.InvoiceUpdate) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}
