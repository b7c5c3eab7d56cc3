package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrInvoiceAlreadyExists   = errors.New("invoice already exists for this message")
	ErrSessionNotFound        = errors.New("session not found or expired")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrUploadFailed           = errors.New("file upload to storage failed")
	ErrInvalidStatus          = errors.New("invalid invoice status")
	ErrNoPagesRendered        = errors.New("pdf conversion produced no pages")
	ErrExtractorNotConfigured = errors.New("extraction API key is not configured")
)
