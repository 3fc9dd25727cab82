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

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	List(ctx context.Context, includeInactive bool) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `c.id, c.title, c.description, c.color, c.active, c.created_at, c.updated_at`

func scanCategory(row rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Color, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List retrieves categories ordered by title
func (r *categoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories c`, categoryColumns)
	if !includeInactive {
		query += ` WHERE c.active = TRUE`
	}
	query += ` ORDER BY c.title ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories c WHERE c.id = $1`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
		INSERT INTO categories (id, title, description, color, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Title,
		category.Description,
		category.Color,
		category.Active,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return translate("create category", err)
	}

	return nil
}

// Update overwrites a category's scalar fields
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	query := `
		UPDATE categories
		SET title = $2, description = $3, color = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Title,
		category.Description,
		category.Color,
		category.Active,
		category.UpdatedAt,
	)
	if err != nil {
		return translate("update category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// ToggleActive flips the active flag and returns the updated category
func (r *categoryRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`
		UPDATE categories c
		SET active = NOT c.active, updated_at = NOW()
		WHERE c.id = $1
		RETURNING %s
	`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to toggle category: %w", err)
	}

	return category, nil
}

// Delete removes a category; product links cascade
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// ReplaceProductCategories swaps the product's category set for categoryIDs
// in one transaction. An empty slice clears it.
func (r *categoryRepository) ReplaceProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return ErrProductNotFound
		}
		return replaceProductCategories(ctx, tx, productID, categoryIDs)
	})
}

func replaceProductCategories(ctx context.Context, q dbtx, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1::uuid, ids.id
		FROM (SELECT DISTINCT unnest($2::uuid[]) AS id) AS ids
	`
	if _, err := q.ExecContext(ctx, query, productID, uuidArray(categoryIDs)); err != nil {
		return translate("attach product categories", err)
	}

	return nil
}
