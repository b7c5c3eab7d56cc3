package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autoinvoice/internal/middleware"
	"autoinvoice/internal/service"
	"autoinvoice/internal/xlsxexport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the Excel export of a user's invoices.
type ExportHandler struct {
	invoiceService *service.InvoiceService
}

// NewExportHandler creates an export handler.
func NewExportHandler(invoiceService *service.InvoiceService) *ExportHandler {
	return &ExportHandler{invoiceService: invoiceService}
}

// Export streams the caller's invoices as an .xlsx workbook.
// GET /api/v1/invoices/export
func (h *ExportHandler) Export(c *gin.Context) {
	invoices, err := h.invoiceService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	buf, err := xlsxexport.Write(invoices)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "building export workbook failed")
		return
	}

	filename := xlsxexport.SanitizeFilename(xlsxexport.Filename(time.Now()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
