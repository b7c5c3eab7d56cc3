package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autoinvoice/internal/middleware"
	"autoinvoice/internal/service"
)

// ProcessHandler triggers mailbox scan runs.
type ProcessHandler struct {
	authService    *service.AuthService
	processService *service.ProcessService
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(authService *service.AuthService, processService *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{authService: authService, processService: processService}
}

type processRequest struct {
	Query      string `json:"query"`
	MaxResults int64  `json:"max_results"`
}

// Run scans the caller's mailbox for invoice attachments and processes them.
// POST /api/v1/invoices/process
func (h *ProcessHandler) Run(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	var req processRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
			return
		}
	}

	session, err := h.authService.Session(c.Request.Context(), claims)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	report, err := h.processService.Run(c.Request.Context(), session, service.ProcessOptions{
		Query:      req.Query,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, report)
}
