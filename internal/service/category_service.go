package service

import (
	"context"
	"strings"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"

	"github.com/google/uuid"
)

// CategoryInput carries the fields of a new category
type CategoryInput struct {
	Title       string
	Description *string
	Color       string
	Active      *bool
}

// CategoryPatch carries a partial category update
type CategoryPatch struct {
	Title       *string
	Description *string
	Color       *string
	Active      *bool
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context, includeInactive bool) ([]*domain.Category, error)
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*domain.Category, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Color:       strings.TrimSpace(in.Color),
		Active:      true,
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}
	if in.Active != nil {
		category.Active = *in.Active
	}

	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		category.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		category.Description = patch.Description
	}
	if patch.Color != nil {
		category.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.Active != nil {
		category.Active = *patch.Active
	}

	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.repo.ToggleActive(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateCategory(c *domain.Category) error {
	if c.Title == "" {
		return domain.NewValidationError("title", "is required")
	}
	if len(c.Title) > 100 {
		return domain.NewValidationError("title", "must be at most 100 characters")
	}
	if !domain.ValidColor(c.Color) {
		return domain.NewValidationError("color", "must be a hex color like #FF00FF")
	}
	return nil
}
