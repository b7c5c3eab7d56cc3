package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoinvoice/internal/domain"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestMerge_FirstNonNullWins(t *testing.T) {
	pages := []domain.PageExtraction{
		{
			InvoiceFields: domain.InvoiceFields{
				InvoiceNumber: strPtr("INV-100"),
				VendorName:    strPtr("Acme Corp"),
			},
			PageContext: "page 1 of 2",
		},
		{
			InvoiceFields: domain.InvoiceFields{
				InvoiceNumber: strPtr("INV-999"),
				TotalAmount:   numPtr(250.00),
				Currency:      strPtr("USD"),
			},
			PageContext: "page 2 of 2",
		},
	}

	out := Merge(pages, "openai/gpt-4o-mini")

	assert.False(t, out.Failed)
	assert.Equal(t, 2, out.ProcessedPages)
	require.NotNil(t, out.InvoiceNumber)
	assert.Equal(t, "INV-100", *out.InvoiceNumber, "earlier page's value should win")
	require.NotNil(t, out.VendorName)
	assert.Equal(t, "Acme Corp", *out.VendorName)
	require.NotNil(t, out.TotalAmount)
	assert.Equal(t, 250.00, *out.TotalAmount, "later page fills fields the first page lacked")
	require.NotNil(t, out.Currency)
	assert.Equal(t, "USD", *out.Currency)
	assert.Nil(t, out.DueDate)
}

func TestMerge_FailedPagesSkippedButSummarised(t *testing.T) {
	pages := []domain.PageExtraction{
		{
			Err:         "model reply was not valid JSON",
			PageContext: "page 1 of 2",
		},
		{
			InvoiceFields: domain.InvoiceFields{InvoiceNumber: strPtr("INV-7")},
			PageContext:   "page 2 of 2",
		},
	}

	out := Merge(pages, "openai/gpt-4o-mini")

	assert.False(t, out.Failed)
	assert.Equal(t, 2, out.ProcessedPages)
	require.NotNil(t, out.InvoiceNumber)
	assert.Equal(t, "INV-7", *out.InvoiceNumber)
	require.Len(t, out.PageSummaries, 2)
	assert.True(t, out.PageSummaries[0].HasError)
	assert.False(t, out.PageSummaries[1].HasError)
}

func TestMerge_AllPagesFailed(t *testing.T) {
	pages := []domain.PageExtraction{
		{Err: "extraction API returned status 500", PageContext: "page 1 of 1"},
	}

	out := Merge(pages, "openai/gpt-4o-mini")

	assert.True(t, out.Failed)
	assert.Equal(t, "all pages failed extraction", out.FailureReason)
	assert.Equal(t, 1, out.ProcessedPages)
	assert.Nil(t, out.InvoiceNumber)
}

func TestMerge_NoPages(t *testing.T) {
	out := Merge(nil, "openai/gpt-4o-mini")

	assert.True(t, out.Failed)
	assert.Equal(t, "no pages to extract", out.FailureReason)
	assert.Equal(t, 0, out.ProcessedPages)
}
