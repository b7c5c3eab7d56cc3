package consolidate

import (
	"autoinvoice/internal/domain"
)

// Merge folds per-page extraction results into a single invoice. For each
// field the first non-null value in page order wins; failed pages are
// skipped for field values but still counted and summarised. If no page
// produced usable fields the result is marked failed so the caller can
// persist a placeholder record instead of dropping the attachment.
func Merge(pages []domain.PageExtraction, model string) domain.ConsolidatedInvoice {
	out := domain.ConsolidatedInvoice{
		Model:          model,
		ProcessedPages: len(pages),
		PageSummaries:  make([]domain.PageSummary, 0, len(pages)),
	}

	usable := 0
	for _, p := range pages {
		out.PageSummaries = append(out.PageSummaries, domain.PageSummary{
			PageContext:   p.PageContext,
			InvoiceFields: p.InvoiceFields,
			HasError:      p.Failed(),
		})
		if p.Failed() {
			continue
		}
		usable++

		if out.InvoiceNumber == nil {
			out.InvoiceNumber = p.InvoiceNumber
		}
		if out.InvoiceDate == nil {
			out.InvoiceDate = p.InvoiceDate
		}
		if out.VendorName == nil {
			out.VendorName = p.VendorName
		}
		if out.TotalAmount == nil {
			out.TotalAmount = p.TotalAmount
		}
		if out.DueDate == nil {
			out.DueDate = p.DueDate
		}
		if out.Currency == nil {
			out.Currency = p.Currency
		}
	}

	if usable == 0 {
		out.Failed = true
		if len(pages) == 0 {
			out.FailureReason = "no pages to extract"
		} else {
			out.FailureReason = "all pages failed extraction"
		}
	}
	return out
}
