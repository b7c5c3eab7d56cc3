package port

import (
	"context"

	"github.com/google/uuid"

	"autoinvoice/internal/domain"
)

// SessionRepository stores login sessions with a TTL. Expired rows are
// invisible to Get and reaped opportunistically via DeleteExpired.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateToken(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
