package service

import (
	"context"
	"strings"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"

	"github.com/google/uuid"
)

// CollectionInput carries the fields of a new collection
type CollectionInput struct {
	Title   string
	Active  *bool
	Members []domain.MemberInput
}

// CollectionPatch carries a partial collection update. A non-nil Members
// replaces the whole membership set; an empty slice clears it.
type CollectionPatch struct {
	Title   *string
	Active  *bool
	Members []domain.MemberInput
}

// CollectionService defines the interface for collection business logic
type CollectionService interface {
	List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	Create(ctx context.Context, in CollectionInput) (*domain.Collection, error)
	Update(ctx context.Context, id uuid.UUID, patch CollectionPatch) (*domain.Collection, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, orders []domain.CollectionOrder) error
	MoveMember(ctx context.Context, collectionID, productID uuid.UUID, position int) error
}

type collectionService struct {
	repo repository.CollectionRepository
}

// NewCollectionService creates a new instance of CollectionService
func NewCollectionService(repo repository.CollectionRepository) CollectionService {
	return &collectionService{repo: repo}
}

func (s *collectionService) List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *collectionService) Get(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *collectionService) Create(ctx context.Context, in CollectionInput) (*domain.Collection, error) {
	collection := &domain.Collection{
		Title:  strings.TrimSpace(in.Title),
		Active: true,
	}
	if in.Active != nil {
		collection.Active = *in.Active
	}
	if err := validateTitle(collection.Title); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, collection, in.Members); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) Update(ctx context.Context, id uuid.UUID, patch CollectionPatch) (*domain.Collection, error) {
	collection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		collection.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Active != nil {
		collection.Active = *patch.Active
	}
	if err := validateTitle(collection.Title); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, collection, patch.Members); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return s.repo.ToggleActive(ctx, id)
}

func (s *collectionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Reorder applies a batch of collection positions atomically.
func (s *collectionService) Reorder(ctx context.Context, orders []domain.CollectionOrder) error {
	if len(orders) == 0 {
		return domain.NewValidationError("orders", "must not be empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(orders))
	for _, o := range orders {
		if o.ID == uuid.Nil {
			return domain.NewValidationError("orders", "collection id is required")
		}
		if _, dup := seen[o.ID]; dup {
			return domain.NewValidationError("orders", "collection "+o.ID.String()+" is listed more than once")
		}
		seen[o.ID] = struct{}{}
	}

	return s.repo.Reorder(ctx, orders)
}

func (s *collectionService) MoveMember(ctx context.Context, collectionID, productID uuid.UUID, position int) error {
	if position < 1 {
		return domain.NewValidationError("position", "must be at least 1")
	}
	return s.repo.MoveMember(ctx, collectionID, productID, position)
}

func validateTitle(title string) error {
	if title == "" {
		return domain.NewValidationError("title", "is required")
	}
	if len(title) > 255 {
		return domain.NewValidationError("title", "must be at most 255 characters")
	}
	return nil
}
