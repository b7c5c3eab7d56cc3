package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice is a persisted invoice record extracted from one email attachment.
type Invoice struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	MessageID     string          `db:"message_id" json:"message_id"`
	InvoiceNumber *string         `db:"invoice_number" json:"invoice_number"`
	Amount        *float64        `db:"amount" json:"amount"`
	Vendor        string          `db:"vendor" json:"vendor"`
	InvoiceDate   *string         `db:"invoice_date" json:"invoice_date"`
	DueDate       *string         `db:"due_date" json:"due_date"`
	Currency      *string         `db:"currency" json:"currency"`
	Description   string          `db:"description" json:"description"`
	FileName      string          `db:"file_name" json:"file_name"`
	FileURL       string          `db:"file_url" json:"file_url"`
	ExtractedData json.RawMessage `db:"extracted_data" json:"extracted_data"`
	Status        InvoiceStatus   `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceUpdate carries the user-editable subset of invoice fields.
// Ownership, message id, extracted payload, and timestamps are immutable.
type InvoiceUpdate struct {
	InvoiceNumber *string  `json:"invoice_number"`
	Amount        *float64 `json:"amount"`
	Vendor        *string  `json:"vendor"`
	InvoiceDate   *string  `json:"invoice_date"`
	DueDate       *string  `json:"due_date"`
	Currency      *string  `json:"currency"`
	Description   *string  `json:"description"`
}

// Session is a server-side login session created after the Google OAuth
// callback. It carries the provider tokens needed to call Gmail on the
// user's behalf and expires independently of the provider token.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Email        string    `db:"email" json:"email"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	TokenExpiry  time.Time `db:"token_expiry" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MessageRef identifies one email message returned by a mail search.
type MessageRef struct {
	ID       string
	ThreadID string
}

// AttachmentRef identifies one attachment within a message before download.
type AttachmentRef struct {
	MessageID    string
	AttachmentID string
	Filename     string
	MimeType     string
}

// MessageDetails holds the header fields and attachment refs of one message.
type MessageDetails struct {
	ID          string
	Subject     string
	Date        string
	Attachments []AttachmentRef
}

// AttachmentPayload is a downloaded attachment held in memory for one
// pipeline run, together with its parent email context.
type AttachmentPayload struct {
	Filename     string
	MimeType     string
	Data         []byte
	Size         int64
	MessageID    string
	EmailSubject string
	EmailDate    string
}

// Page is one rasterized page of an attachment, ready for extraction.
type Page struct {
	Data     []byte
	MimeType string
	Context  string // e.g. "page 2 of 3"
}

// InvoiceFields is the six-field set the model is asked to extract.
// Every field is independently nullable.
type InvoiceFields struct {
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	VendorName    *string  `json:"vendor_name"`
	TotalAmount   *float64 `json:"total_amount"`
	DueDate       *string  `json:"due_date"`
	Currency      *string  `json:"currency"`
}

// PageExtraction is the extraction result for a single page. When the model
// reply could not be parsed (or the request failed), Err is set and the raw
// reply is kept for diagnosis; field values are meaningless in that case.
type PageExtraction struct {
	InvoiceFields
	Model       string `json:"llm_model,omitempty"`
	PageContext string `json:"page_context"`
	Err         string `json:"error,omitempty"`
	ErrDetail   string `json:"message,omitempty"`
	RawReply    string `json:"raw_response,omitempty"`
}

// Failed reports whether this page produced no usable fields.
func (p *PageExtraction) Failed() bool {
	return p.Err != ""
}

// PageSummary records what one page contributed, for traceability.
type PageSummary struct {
	PageContext string `json:"page_context"`
	InvoiceFields
	HasError bool `json:"has_error"`
}

// ConsolidatedInvoice is the per-attachment merge of all page extractions.
// Failed is set when no page produced usable fields; the record is still
// persisted so the attempt is auditable.
type ConsolidatedInvoice struct {
	InvoiceFields
	Model          string        `json:"llm_model"`
	ProcessedPages int           `json:"processed_pages"`
	PageSummaries  []PageSummary `json:"page_data_summary"`
	Failed         bool          `json:"failed,omitempty"`
	FailureReason  string        `json:"failure_reason,omitempty"`
}

// AttachmentResult is the per-attachment outcome reported for one run.
type AttachmentResult struct {
	Filename string           `json:"filename"`
	Status   AttachmentStatus `json:"status"`
	Reason   string           `json:"reason,omitempty"`
	FileURL  string           `json:"url,omitempty"`
}

// RunReport aggregates the outcome of one pipeline run.
type RunReport struct {
	Message string             `json:"message"`
	Count   int                `json:"count"`
	Results []AttachmentResult `json:"results"`
}
