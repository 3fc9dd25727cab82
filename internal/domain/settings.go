package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceModeKey is the site setting toggling the storefront placeholder page.
const MaintenanceModeKey = "maintenanceMode"

// Setting is a key/value configuration row.
type Setting struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdminSession is a persisted administrator login.
type AdminSession struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"-"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AdminSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
