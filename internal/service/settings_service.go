package service

import (
	"context"
	"fmt"
	"strconv"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"
)

const maintenanceDescription = "When true the storefront shows the maintenance page instead of the catalog"

// SettingsService defines the interface for site settings
type SettingsService interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, description *string) error
	MaintenanceMode(ctx context.Context) (bool, error)
	SetMaintenanceMode(ctx context.Context, enabled bool) error
}

type settingsService struct {
	repo repository.SettingRepository
}

// NewSettingsService creates a new instance of SettingsService
func NewSettingsService(repo repository.SettingRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, key)
}

func (s *settingsService) Set(ctx context.Context, key, value string, description *string) error {
	if key == "" {
		return domain.NewValidationError("key", "is required")
	}
	return s.repo.Set(ctx, key, value, description)
}

// MaintenanceMode reports the maintenance flag. Unset or unparsable values
// count as off.
func (s *settingsService) MaintenanceMode(ctx context.Context) (bool, error) {
	value, ok, err := s.repo.Get(ctx, domain.MaintenanceModeKey)
	if err != nil {
		return false, fmt.Errorf("failed to read maintenance mode: %w", err)
	}
	if !ok {
		return false, nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return enabled, nil
}

func (s *settingsService) SetMaintenanceMode(ctx context.Context, enabled bool) error {
	desc := maintenanceDescription
	return s.repo.Set(ctx, domain.MaintenanceModeKey, strconv.FormatBool(enabled), &desc)
}
