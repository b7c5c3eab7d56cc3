package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoinvoice/internal/config"
	"autoinvoice/internal/domain"
	"autoinvoice/internal/extractor/openrouter"
	gmailclient "autoinvoice/internal/gmail"
	"autoinvoice/internal/handler"
	"autoinvoice/internal/port"
	"autoinvoice/internal/raster"
	"autoinvoice/internal/repository/postgres"
	"autoinvoice/internal/router"
	"autoinvoice/internal/service"
	s3storage "autoinvoice/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize pipeline components
	rasterizer := raster.New(raster.NewExecRunner(), cfg.Raster.Pdftoppm, cfg.Raster.DPI)
	extractorClient := openrouter.NewWithEndpoint(
		cfg.Extractor.APIKey, cfg.Extractor.Model, cfg.Extractor.Endpoint,
		time.Duration(cfg.Extractor.TimeoutSecs)*time.Second,
	)
	if cfg.Extractor.APIKey == "" {
		log.Printf("warning: %v; extraction runs will fail per page", domain.ErrExtractorNotConfigured)
	}

	// Initialize services
	authSvc := service.NewAuthService(sessionRepo, cfg.Google, cfg.JWT, cfg.Session.TTL)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, s3Client, cfg.S3.Bucket, cfg.S3.PresignExpiry)

	mailFactory := func(ctx context.Context, session *domain.Session) (port.MailProvider, error) {
		ts := authSvc.OAuthConfig().TokenSource(ctx, authSvc.ProviderToken(session))
		fresh, err := ts.Token()
		if err != nil {
			return nil, fmt.Errorf("refreshing provider token: %w", err)
		}
		// Persist a refreshed access token so later runs skip the refresh.
		if fresh.AccessToken != session.AccessToken {
			session.AccessToken = fresh.AccessToken
			session.TokenExpiry = fresh.Expiry
			if fresh.RefreshToken != "" {
				session.RefreshToken = fresh.RefreshToken
			}
			if err := sessionRepo.UpdateToken(ctx, session); err != nil {
				log.Printf("persisting refreshed token for session %s: %v", session.ID, err)
			}
		}
		return gmailclient.NewClient(ctx, authSvc.OAuthConfig(), fresh)
	}
	processSvc := service.NewProcessService(
		invoiceRepo, s3Client, rasterizer, extractorClient, mailFactory,
		cfg.S3.Bucket, cfg.Gmail.Query, cfg.Gmail.MaxResults,
	)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	processH := handler.NewProcessHandler(authSvc, processSvc)
	exportH := handler.NewExportHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, invoiceH, processH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
