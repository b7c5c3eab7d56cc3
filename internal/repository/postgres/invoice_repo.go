package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"autoinvoice/internal/domain"
)

const pgUniqueViolation = "23505"

// InvoiceRepo is the Postgres-backed invoice repository.
type InvoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates an invoice repository on the given pool.
func NewInvoiceRepo(db *sqlx.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// Create inserts a new invoice row. A unique violation on
// (user_id, message_id) means the message was already processed.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, user_id, message_id, invoice_number, amount, vendor,
			invoice_date, due_date, currency, description, file_name,
			file_url, extracted_data, status, created_at, updated_at
		) VALUES (
			:id, :user_id, :message_id, :invoice_number, :amount, :vendor,
			:invoice_date, :due_date, :currency, :description, :file_name,
			:file_url, :extracted_data, :status, NOW(), NOW()
		)`

	_, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("inserting invoice: %w", err)
	}
	return nil
}

// ExistsByMessage reports whether the user already has an invoice for the
// given mail message.
func (r *InvoiceRepo) ExistsByMessage(ctx context.Context, userID, messageID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM invoices WHERE user_id = $1 AND message_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, messageID); err != nil {
		return false, fmt.Errorf("checking message dedup: %w", err)
	}
	return exists, nil
}

// GetByID fetches one invoice owned by the user.
func (r *InvoiceRepo) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	query := `SELECT * FROM invoices WHERE id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &inv, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("fetching invoice: %w", err)
	}
	return &inv, nil
}

// ListByUser returns all of the user's invoices, newest first.
func (r *InvoiceRepo) ListByUser(ctx context.Context, userID string) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	query := `SELECT * FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &invoices, query, userID); err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// Update applies the user-editable fields and returns the updated row.
// COALESCE keeps the stored value for fields the caller left unset.
func (r *InvoiceRepo) Update(ctx context.Context, userID string, id uuid.UUID, upd domain.InvoiceUpdate) (*domain.Invoice, error) {
	var inv domain.Invoice
	query := `
		UPDATE invoices SET
			invoice_number = COALESCE($3, invoice_number),
			amount         = COALESCE($4, amount),
			vendor         = COALESCE($5, vendor),
			invoice_date   = COALESCE($6, invoice_date),
			due_date       = COALESCE($7, due_date),
			currency       = COALESCE($8, currency),
			description    = COALESCE($9, description),
			updated_at     = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *`

	err := r.db.GetContext(ctx, &inv, query, id, userID,
		upd.InvoiceNumber, upd.Amount, upd.Vendor, upd.InvoiceDate,
		upd.DueDate, upd.Currency, upd.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("updating invoice: %w", err)
	}
	return &inv, nil
}

// UpdateStatus sets the invoice status and returns the updated row.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	var inv domain.Invoice
	query := `
		UPDATE invoices SET status = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *`

	if err := r.db.GetContext(ctx, &inv, query, id, userID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("updating invoice status: %w", err)
	}
	return &inv, nil
}

// Delete removes one invoice owned by the user.
func (r *InvoiceRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
