package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields_FencedBlock(t *testing.T) {
	reply := "Here is the extracted data:\n```json\n{\"invoice_number\": \"INV-001\", \"total_amount\": 149.99, \"currency\": \"USD\"}\n```\nLet me know if you need anything else."

	fields, err := ParseFields(reply)
	require.NoError(t, err)
	require.NotNil(t, fields.InvoiceNumber)
	assert.Equal(t, "INV-001", *fields.InvoiceNumber)
	require.NotNil(t, fields.TotalAmount)
	assert.Equal(t, 149.99, *fields.TotalAmount)
	require.NotNil(t, fields.Currency)
	assert.Equal(t, "USD", *fields.Currency)
	assert.Nil(t, fields.VendorName)
}

func TestParseFields_FencedBlockWithoutLanguage(t *testing.T) {
	reply := "```\n{\"vendor_name\": \"Acme Corp\"}\n```"

	fields, err := ParseFields(reply)
	require.NoError(t, err)
	require.NotNil(t, fields.VendorName)
	assert.Equal(t, "Acme Corp", *fields.VendorName)
}

func TestParseFields_BareObject(t *testing.T) {
	reply := "Sure! {\"invoice_date\": \"2024-03-01\", \"due_date\": null} is what I found."

	fields, err := ParseFields(reply)
	require.NoError(t, err)
	require.NotNil(t, fields.InvoiceDate)
	assert.Equal(t, "2024-03-01", *fields.InvoiceDate)
	assert.Nil(t, fields.DueDate)
}

func TestParseFields_AllNulls(t *testing.T) {
	reply := `{"invoice_number": null, "invoice_date": null, "vendor_name": null, "total_amount": null, "due_date": null, "currency": null}`

	fields, err := ParseFields(reply)
	require.NoError(t, err)
	assert.Nil(t, fields.InvoiceNumber)
	assert.Nil(t, fields.TotalAmount)
}

func TestParseFields_NoJSON(t *testing.T) {
	_, err := ParseFields("I could not read this page, it appears to be blank.")
	assert.Error(t, err)
}

func TestParseFields_MalformedJSON(t *testing.T) {
	_, err := ParseFields("{\"invoice_number\": \"INV-1\",}")
	assert.Error(t, err)
}
