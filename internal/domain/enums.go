package domain

import "strings"

// InvoiceStatus is the user-facing workflow status on a persisted invoice,
// independent of extraction success.
type InvoiceStatus string

const (
	StatusApproved InvoiceStatus = "approved"
	StatusPending  InvoiceStatus = "pending"
	StatusPaid     InvoiceStatus = "paid"
	StatusOverdue  InvoiceStatus = "overdue"
)

// AllowedStatuses is the set of statuses accepted by the status endpoint.
var AllowedStatuses = map[InvoiceStatus]bool{
	StatusApproved: true,
	StatusPending:  true,
	StatusPaid:     true,
	StatusOverdue:  true,
}

// AttachmentStatus tags the per-attachment outcome of a pipeline run.
type AttachmentStatus string

const (
	AttachmentProcessed AttachmentStatus = "Processed"
	AttachmentSkipped   AttachmentStatus = "Skipped"
	AttachmentError     AttachmentStatus = "Error"
)

// MimeTypePDF is the only attachment type that needs rasterization.
const MimeTypePDF = "application/pdf"

// SupportedAttachmentTypes is the exact allowlist of downloadable
// attachment MIME types. Anything else is silently skipped by the fetcher.
var SupportedAttachmentTypes = map[string]bool{
	MimeTypePDF:  true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// IsSupportedAttachmentType reports whether mimeType is on the allowlist.
// Matching is case-insensitive.
func IsSupportedAttachmentType(mimeType string) bool {
	return SupportedAttachmentTypes[strings.ToLower(mimeType)]
}

// IsImageType reports whether mimeType is a directly extractable image.
func IsImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}
