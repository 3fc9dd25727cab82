package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)
	ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error
	Update(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.title, p.gross_price, p.discount_price, p.discount_percent,
	p.description, p.images, p.active, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var images pq.StringArray
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.GrossPrice,
		&p.DiscountPrice,
		&p.DiscountPercent,
		&p.Description,
		&images,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Categories = []*domain.Category{}
	return p, nil
}

// List returns one page of products matching the filter, ordered by title.
// Membership filters use EXISTS so a product matching several categories is
// returned once.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter.Normalize()

	conds := []string{}
	args := []any{}

	if !filter.IncludeInactive {
		conds = append(conds, "p.active = TRUE")
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		ph := placeholder(len(args))
		conds = append(conds, fmt.Sprintf("(p.title ILIKE %s OR p.id::text ILIKE %s)", ph, ph))
	}

	if filter.CollectionID != nil {
		args = append(args, *filter.CollectionID)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM collection_products cp WHERE cp.product_id = p.id AND cp.collection_id = %s)",
			placeholder(len(args))))
	}

	if len(filter.CategoryIDs) > 0 {
		args = append(args, uuidArray(filter.CategoryIDs))
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = ANY(%s::uuid[]))",
			placeholder(len(args))))
	}

	whereClause := ""
	if len(conds) > 0 {
		whereClause = "WHERE " + strings.Join(conds, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		%s
		ORDER BY p.title ASC, p.id ASC
		LIMIT %s OFFSET %s
	`, productColumns, whereClause, placeholder(len(args)+1), placeholder(len(args)+2))
	args = append(args, filter.PageSize, filter.Offset())

	products, err := r.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}

	if err := attachCategories(ctx, r.db, products); err != nil {
		return nil, err
	}

	return &domain.ProductPage{
		Items:    products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListAll returns every product without pagination, for admin pickers.
func (r *productRepository) ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p`, productColumns)
	if !includeInactive {
		query += ` WHERE p.active = TRUE`
	}
	query += ` ORDER BY p.title ASC, p.id ASC`

	products, err := r.query(ctx, r.db, query)
	if err != nil {
		return nil, err
	}
	if err := attachCategories(ctx, r.db, products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID retrieves a product with its categories. Inactive products are
// returned; callers decide whether to expose them.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return findProduct(ctx, r.db, id)
}

func findProduct(ctx context.Context, q dbtx, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)

	product, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := attachCategories(ctx, q, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a product, computing its discount percentage, and replaces
// its categories when categoryIDs is non-nil.
func (r *productRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error {
	if err := domain.ValidatePrices(product.GrossPrice, product.DiscountPrice); err != nil {
		return err
	}
	product.Reprice()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (id, title, gross_price, discount_price, discount_percent,
				description, images, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(
			ctx,
			query,
			product.ID,
			product.Title,
			product.GrossPrice,
			product.DiscountPrice,
			product.DiscountPercent,
			product.Description,
			pq.StringArray(product.Images),
			product.Active,
			product.CreatedAt,
			product.UpdatedAt,
		)
		if err != nil {
			return translate("create product", err)
		}

		return syncProductCategories(ctx, tx, product, categoryIDs)
	})
}

// Update overwrites the stored product with the given state. The discount
// percentage is recomputed from the prices on every call.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error {
	if err := domain.ValidatePrices(product.GrossPrice, product.DiscountPrice); err != nil {
		return err
	}
	product.Reprice()
	product.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if product.Images == nil {
		product.Images = []string{}
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE products
			SET title = $2, gross_price = $3, discount_price = $4, discount_percent = $5,
			    description = $6, images = $7, active = $8, updated_at = $9
			WHERE id = $1
		`
		result, err := tx.ExecContext(
			ctx,
			query,
			product.ID,
			product.Title,
			product.GrossPrice,
			product.DiscountPrice,
			product.DiscountPercent,
			product.Description,
			pq.StringArray(product.Images),
			product.Active,
			product.UpdatedAt,
		)
		if err != nil {
			return translate("update product", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrProductNotFound
		}

		return syncProductCategories(ctx, tx, product, categoryIDs)
	})
}

// ToggleActive flips the active flag and returns the updated product.
func (r *productRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products p
		SET active = NOT p.active, updated_at = NOW()
		WHERE p.id = $1
		RETURNING %s
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to toggle product: %w", err)
	}

	if err := attachCategories(ctx, r.db, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product; collection and category links cascade.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) query(ctx context.Context, q dbtx, query string, args ...any) ([]*domain.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// syncProductCategories replaces the category set when ids is non-nil and
// reloads the product's categories either way.
func syncProductCategories(ctx context.Context, tx *sql.Tx, product *domain.Product, ids []uuid.UUID) error {
	if ids != nil {
		if err := replaceProductCategories(ctx, tx, product.ID, ids); err != nil {
			return err
		}
	}
	return attachCategories(ctx, tx, []*domain.Product{product})
}

// attachCategories loads the full category list of every product in one query.
func attachCategories(ctx context.Context, q dbtx, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	// the same product may appear more than once, e.g. in two collections
	byID := make(map[uuid.UUID][]*domain.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		p.Categories = []*domain.Category{}
		if _, seen := byID[p.ID]; !seen {
			ids = append(ids, p.ID)
		}
		byID[p.ID] = append(byID[p.ID], p)
	}

	query := fmt.Sprintf(`
		SELECT pc.product_id, %s
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1::uuid[])
		ORDER BY c.title ASC, c.id ASC
	`, categoryColumns)

	rows, err := q.QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		c := &domain.Category{}
		if err := rows.Scan(&productID, &c.ID, &c.Title, &c.Description, &c.Color, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		for _, p := range byID[productID] {
			p.Categories = append(p.Categories, c)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
