package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"autoinvoice/internal/domain"
)

// SessionRepo is the Postgres-backed session store.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a session repository on the given pool.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, email, access_token, refresh_token,
			token_expiry, expires_at, created_at
		) VALUES (
			:id, :user_id, :email, :access_token, :refresh_token,
			:token_expiry, :expires_at, NOW()
		)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get fetches one unexpired session.
func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	query := `SELECT * FROM sessions WHERE id = $1 AND expires_at > NOW()`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	return &s, nil
}

// UpdateToken persists refreshed provider tokens for an existing session.
func (r *SessionRepo) UpdateToken(ctx context.Context, s *domain.Session) error {
	query := `
		UPDATE sessions SET
			access_token = :access_token,
			refresh_token = :refresh_token,
			token_expiry = :token_expiry
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("updating session token: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session token: %w", err)
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes one session (logout).
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired reaps sessions past their expiry.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return rows, nil
}
