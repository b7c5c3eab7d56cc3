package router

import (
	"github.com/gin-gonic/gin"

	"autoinvoice/internal/handler"
	"autoinvoice/internal/middleware"
	"autoinvoice/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc *service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	invoiceH *handler.InvoiceHandler,
	processH *handler.ProcessHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.GET("/google/login", authH.Login)
	auth.GET("/google/callback", authH.Callback)

	// Protected routes - require valid session token
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/me", authH.Me)
	protected.POST("/auth/logout", authH.Logout)

	invoices := protected.Group("/invoices")
	invoices.POST("/process", processH.Run)
	invoices.GET("/export", exportH.Export)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/download", invoiceH.Download)
	invoices.PUT("/:id", invoiceH.Update)
	invoices.PATCH("/:id/status", invoiceH.UpdateStatus)
	invoices.DELETE("/:id", invoiceH.Delete)

	return r
}
