package xlsxexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"autoinvoice/internal/domain"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestWrite_Workbook(t *testing.T) {
	invoices := []domain.Invoice{
		{
			InvoiceNumber: strPtr("INV-001"),
			Vendor:        "Acme Corp",
			Amount:        numPtr(1250.50),
			Currency:      strPtr("USD"),
			InvoiceDate:   strPtr("2024-03-01"),
			Status:        domain.StatusApproved,
			FileName:      "invoice.pdf",
			CreatedAt:     time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			Vendor:    "Unknown",
			Status:    domain.StatusPending,
			FileName:  "scan.png",
			CreatedAt: time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC),
		},
	}

	buf, err := Write(invoices)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "Status", rows[0][6])

	assert.Equal(t, "INV-001", rows[1][0])
	assert.Equal(t, "Acme Corp", rows[1][1])
	assert.Equal(t, "1250.5", rows[1][2])
	assert.Equal(t, "approved", rows[1][6])

	assert.Equal(t, "Unknown", rows[2][1])
	assert.Equal(t, "pending", rows[2][6])
}

func TestWrite_Empty(t *testing.T) {
	buf, err := Write(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
}

func TestFilename(t *testing.T) {
	name := Filename(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "invoices-2024-03-02.xlsx", name)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_report_2024.xlsx", SanitizeFilename(`my report/2024.xlsx`))
}
