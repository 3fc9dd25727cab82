package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the fields of a new product
type ProductInput struct {
	Title         string
	GrossPrice    decimal.Decimal
	DiscountPrice *decimal.Decimal
	Description   *string
	Images        []string
	Active        *bool
	CategoryIDs   []uuid.UUID
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)
	ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, categoryIDs []uuid.UUID) (*domain.Product, error)
	SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (*domain.Product, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	store      storage.ObjectStore
	bucket     string
	logger     *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	store storage.ObjectStore,
	bucket string,
	logger *zap.Logger,
) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		store:      store,
		bucket:     bucket,
		logger:     logger,
	}
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *productService) ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	return s.repo.ListAll(ctx, includeInactive)
}

// Get fetches a product. Inactive products are reported as not found unless
// includeInactive is set.
func (s *productService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeInactive && !product.Active {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Title:       strings.TrimSpace(in.Title),
		GrossPrice:  in.GrossPrice,
		Description: in.Description,
		Images:      cleanImages(in.Images),
		Active:      true,
	}
	if in.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(*in.DiscountPrice)
	}
	if in.Active != nil {
		product.Active = *in.Active
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.Reprice()

	if err := s.repo.Create(ctx, product, in.CategoryIDs); err != nil {
		return nil, err
	}
	return product, nil
}

// Update merges the patch onto the stored product. The discount percentage is
// recomputed from the merged prices even when only one of them changed.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, categoryIDs []uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.ReplaceImages {
		patch.Images = cleanImages(patch.Images)
	}
	patch.Apply(product)

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product, categoryIDs); err != nil {
		return nil, err
	}
	return product, nil
}

// SetCategories replaces the product's category set and returns the product
// as stored. An empty list detaches every category.
func (s *productService) SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (*domain.Product, error) {
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}
	if err := s.categories.ReplaceProductCategories(ctx, id, categoryIDs); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *productService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.repo.ToggleActive(ctx, id)
}

// Delete removes the product's images from the object store, then the row.
// Image cleanup failures are logged and never block the delete.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	keys := storage.KeysFromURLs(product.Images, s.bucket)
	if len(keys) > 0 {
		if err := s.store.Remove(ctx, keys); err != nil {
			s.logger.Warn("Failed to remove product images",
				zap.String("product_id", id.String()),
				zap.Strings("keys", keys),
				zap.Error(err),
			)
		} else {
			s.logger.Info("Removed product images",
				zap.String("product_id", id.String()),
				zap.Int("count", len(keys)),
			)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func validateProduct(p *domain.Product) error {
	if p.Title == "" {
		return domain.NewValidationError("title", "is required")
	}
	if len(p.Title) > 255 {
		return domain.NewValidationError("title", "must be at most 255 characters")
	}
	return domain.ValidatePrices(p.GrossPrice, p.DiscountPrice)
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
