package xlsxexport

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"

	"autoinvoice/internal/domain"
)

const sheetName = "Invoices"

var headers = []string{
	"Invoice Number", "Vendor", "Amount", "Currency",
	"Invoice Date", "Due Date", "Status", "File Name", "Created At",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Filename returns a download filename like invoices-2024-03-01.xlsx.
func Filename(now time.Time) string {
	return fmt.Sprintf("invoices-%s.xlsx", now.Format("2006-01-02"))
}

// SanitizeFilename strips characters that are unsafe in a
// Content-Disposition header.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// Write renders the user's invoices as an Excel workbook.
func Write(invoices []domain.Invoice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("building header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheetName, 1, 1, boldStyle)
	}

	for row, inv := range invoices {
		values := []interface{}{
			derefStr(inv.InvoiceNumber),
			inv.Vendor,
			derefNum(inv.Amount),
			derefStr(inv.Currency),
			derefStr(inv.InvoiceDate),
			derefStr(inv.DueDate),
			string(inv.Status),
			inv.FileName,
			inv.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("building cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row+1, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "I", 20); err != nil {
		return nil, fmt.Errorf("setting column widths: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf, nil
}

func derefStr(s *string) interface{} {
	if s == nil {
		return ""
	}
	return *s
}

func derefNum(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}
