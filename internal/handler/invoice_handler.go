package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoinvoice/internal/domain"
	"autoinvoice/internal/middleware"
	"autoinvoice/internal/service"
)

// InvoiceHandler serves invoice CRUD endpoints.
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func invoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invoice id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// List returns all of the caller's invoices.
// GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.invoiceService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, invoices)
}

// GetByID returns one invoice.
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Update applies user edits to an invoice.
// PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	var upd domain.InvoiceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	inv, err := h.invoiceService.Update(c.Request.Context(), middleware.UserID(c), id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, inv)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus changes an invoice's workflow status.
// PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "status is required")
		return
	}
	inv, err := h.invoiceService.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, domain.InvoiceStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Download returns a short-lived presigned URL for the stored file.
// GET /api/v1/invoices/:id/download
func (h *InvoiceHandler) Download(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	url, err := h.invoiceService.DownloadURL(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Delete removes an invoice record.
// DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "invoice deleted"})
}
