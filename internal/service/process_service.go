package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"autoinvoice/internal/consolidate"
	"autoinvoice/internal/domain"
	"autoinvoice/internal/port"
)

// MailProviderFactory builds a mail client authenticated for one session.
type MailProviderFactory func(ctx context.Context, session *domain.Session) (port.MailProvider, error)

// ProcessOptions tunes one pipeline run.
type ProcessOptions struct {
	Query      string
	MaxResults int64
}

// ProcessService runs the invoice extraction pipeline: search the mailbox,
// download supported attachments, rasterize, extract fields page by page,
// consolidate, upload the original file, and persist the invoice record.
type ProcessService struct {
	invoices    port.InvoiceRepository
	storage     port.ObjectStorage
	rasterizer  port.Rasterizer
	extractor   port.PageExtractor
	mailFactory MailProviderFactory

	bucket            string
	defaultQuery      string
	defaultMaxResults int64
}

// NewProcessService wires the pipeline dependencies.
func NewProcessService(
	invoices port.InvoiceRepository,
	storage port.ObjectStorage,
	rasterizer port.Rasterizer,
	extractor port.PageExtractor,
	mailFactory MailProviderFactory,
	bucket, defaultQuery string,
	defaultMaxResults int64,
) *ProcessService {
	return &ProcessService{
		invoices:          invoices,
		storage:           storage,
		rasterizer:        rasterizer,
		extractor:         extractor,
		mailFactory:       mailFactory,
		bucket:            bucket,
		defaultQuery:      defaultQuery,
		defaultMaxResults: defaultMaxResults,
	}
}

// Run scans the session's mailbox and processes every supported attachment.
// Per-message and per-attachment failures are recorded in the report and
// never abort the run; only a failed mailbox search is a hard error.
func (s *ProcessService) Run(ctx context.Context, session *domain.Session, opts ProcessOptions) (*domain.RunReport, error) {
	query := opts.Query
	if query == "" {
		query = s.defaultQuery
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.defaultMaxResults
	}

	mail, err := s.mailFactory(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	refs, err := mail.ListMessages(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching mailbox: %w", err)
	}
	log.Printf("processing run for user %s: %d messages match %q", session.UserID, len(refs), query)

	report := &domain.RunReport{Results: []domain.AttachmentResult{}}
	processed := 0
	for _, ref := range refs {
		details, err := mail.GetMessage(ctx, ref.ID)
		if err != nil {
			log.Printf("skipping message %s: %v", ref.ID, err)
			continue
		}
		for _, att := range details.Attachments {
			result := s.processAttachment(ctx, mail, session, details, att)
			if result.Status == domain.AttachmentProcessed {
				processed++
			}
			report.Results = append(report.Results, result)
		}
	}

	// Count covers every attachment considered, not just the processed ones.
	report.Count = len(report.Results)
	report.Message = fmt.Sprintf("Processed %d of %d attachments", processed, report.Count)
	return report, nil
}

func (s *ProcessService) processAttachment(ctx context.Context, mail port.MailProvider, session *domain.Session, msg *domain.MessageDetails, att domain.AttachmentRef) domain.AttachmentResult {
	result := domain.AttachmentResult{Filename: att.Filename}

	if !domain.IsSupportedAttachmentType(att.MimeType) {
		result.Status = domain.AttachmentSkipped
		result.Reason = fmt.Sprintf("unsupported file type %s", att.MimeType)
		return result
	}

	// Dedup before any download or model call keeps repeat scans cheap.
	exists, err := s.invoices.ExistsByMessage(ctx, session.UserID, msg.ID)
	if err != nil {
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("dedup check failed: %v", err)
		return result
	}
	if exists {
		result.Status = domain.AttachmentSkipped
		result.Reason = "message already processed"
		return result
	}

	data, size, err := mail.GetAttachment(ctx, msg.ID, att.AttachmentID)
	if err != nil {
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("download failed: %v", err)
		return result
	}

	pages, err := s.rasterizer.Rasterize(ctx, data, att.MimeType)
	if err != nil {
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("rasterization failed: %v", err)
		return result
	}

	extractions := make([]domain.PageExtraction, 0, len(pages))
	for _, page := range pages {
		extractions = append(extractions, s.extractor.ExtractPage(ctx, page))
	}
	merged := consolidate.Merge(extractions, s.extractor.Model())
	if merged.Failed {
		log.Printf("extraction produced no fields for %s (%s): %s", att.Filename, msg.ID, merged.FailureReason)
	}

	invoiceID := uuid.New()
	key := objectKey(session.UserID, invoiceID, att.Filename)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: att.MimeType,
		Size:        size,
	}); err != nil {
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("upload failed: %v", err)
		return result
	}
	fileURL := s.storage.PublicURL(s.bucket, key)

	extracted, err := json.Marshal(merged)
	if err != nil {
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("encoding extraction payload: %v", err)
		return result
	}

	inv := &domain.Invoice{
		ID:            invoiceID,
		UserID:        session.UserID,
		MessageID:     msg.ID,
		InvoiceNumber: merged.InvoiceNumber,
		Amount:        merged.TotalAmount,
		Vendor:        vendorOrUnknown(merged.VendorName),
		InvoiceDate:   merged.InvoiceDate,
		DueDate:       merged.DueDate,
		Currency:      merged.Currency,
		Description:   describeExtraction(&merged, msg),
		FileName:      att.Filename,
		FileURL:       fileURL,
		ExtractedData: extracted,
		Status:        domain.StatusApproved,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrInvoiceAlreadyExists) {
			result.Status = domain.AttachmentSkipped
			result.Reason = "message already processed"
			return result
		}
		result.Status = domain.AttachmentError
		result.Reason = fmt.Sprintf("persisting invoice: %v", err)
		return result
	}

	result.Status = domain.AttachmentProcessed
	result.FileURL = fileURL
	return result
}

func vendorOrUnknown(name *string) string {
	if name != nil && *name != "" {
		return *name
	}
	return "Unknown"
}

func describeExtraction(merged *domain.ConsolidatedInvoice, msg *domain.MessageDetails) string {
	if merged.Failed {
		return fmt.Sprintf("Extraction failed (%s)", merged.FailureReason)
	}
	if msg.Subject == "" {
		return fmt.Sprintf("Extracted with %s", merged.Model)
	}
	return fmt.Sprintf("Extracted with %s from email: %s", merged.Model, msg.Subject)
}

// objectKey builds the storage path <userID>/<invoiceID><ext>. Keeping the
// key derivable from the stored row lets download presigning rebuild it
// without a dedicated column.
func objectKey(userID string, invoiceID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", userID, invoiceID, ext)
}
