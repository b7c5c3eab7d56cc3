package port

import (
	"context"

	"autoinvoice/internal/domain"
)

// Rasterizer converts an attachment into a sequence of page images.
// Images pass through unchanged as a single page; PDFs are rendered one
// PNG per page in ascending page order. An unsupported MIME type yields
// domain.ErrUnsupportedFileType; a PDF rendering zero pages yields
// domain.ErrNoPagesRendered.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, mimeType string) ([]domain.Page, error)
}
