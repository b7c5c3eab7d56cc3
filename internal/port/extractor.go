package port

import (
	"context"

	"autoinvoice/internal/domain"
)

// PageExtractor sends one page image to a multimodal model and returns the
// extracted fields. Failures are reported inside the PageExtraction value
// (error-tagged), never as a returned error: one page's bad reply must not
// abort its siblings. The error return is reserved for programming errors.
type PageExtractor interface {
	ExtractPage(ctx context.Context, page domain.Page) domain.PageExtraction
	Model() string
}
