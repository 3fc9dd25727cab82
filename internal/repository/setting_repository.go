package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SettingRepository defines the interface for site setting data access
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, description *string) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns the value stored under key. ok is false when the key is unset.
func (r *settingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM site_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key. A nil description keeps the stored one.
func (r *settingRepository) Set(ctx context.Context, key, value string, description *string) error {
	query := `
		INSERT INTO site_settings (id, key, value, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    description = COALESCE(EXCLUDED.description, site_settings.description),
		    updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), key, value, description); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
