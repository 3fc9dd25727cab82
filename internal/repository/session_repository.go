package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for admin session data access
type SessionRepository interface {
	Create(ctx context.Context, session *domain.AdminSession) error
	FindByToken(ctx context.Context, token string) (*domain.AdminSession, error)
	IsValid(ctx context.Context, token string, now time.Time) (bool, error)
	Invalidate(ctx context.Context, token string) error
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new admin session using parameterized queries
func (r *sessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	query := `
		INSERT INTO admin_sessions (id, token, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.Token,
		session.Active,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return translate("create session", err)
	}

	return nil
}

// FindByToken retrieves a session by its token, whatever its state
func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*domain.AdminSession, error) {
	query := `
		SELECT id, token, active, expires_at, created_at
		FROM admin_sessions
		WHERE token = $1
	`

	session := &domain.AdminSession{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.Token,
		&session.Active,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// IsValid reports whether token names an active, unexpired session. A
// session found expired is deactivated on the spot.
func (r *sessionRepository) IsValid(ctx context.Context, token string, now time.Time) (bool, error) {
	session, err := r.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	if !session.Active {
		return false, nil
	}

	if session.Expired(now) {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE admin_sessions SET active = FALSE WHERE id = $1`, session.ID); err != nil {
			return false, fmt.Errorf("failed to expire session: %w", err)
		}
		return false, nil
	}

	return true, nil
}

// Invalidate deactivates a session; the row is kept
func (r *sessionRepository) Invalidate(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_sessions SET active = FALSE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
