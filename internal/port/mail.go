package port

import (
	"context"

	"autoinvoice/internal/domain"
)

// MailProvider abstracts the authenticated mail API used to find and
// download invoice attachments. Implementations are already authenticated
// for a single user; the OAuth dance happens elsewhere.
type MailProvider interface {
	ListMessages(ctx context.Context, query string, maxResults int64) ([]domain.MessageRef, error)
	GetMessage(ctx context.Context, messageID string) (*domain.MessageDetails, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, int64, error)
}
