package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CollectionRepository defines the interface for collection data access
type CollectionRepository interface {
	List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	Create(ctx context.Context, collection *domain.Collection, members []domain.MemberInput) error
	Update(ctx context.Context, collection *domain.Collection, members []domain.MemberInput) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, orders []domain.CollectionOrder) error
	MoveMember(ctx context.Context, collectionID, productID uuid.UUID, newPosition int) error
}

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new instance of CollectionRepository
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

const collectionColumns = `s.id, s.title, s.position, s.active, s.created_at, s.updated_at`

func scanCollection(row rowScanner) (*domain.Collection, error) {
	c := &domain.Collection{}
	if err := row.Scan(&c.ID, &c.Title, &c.Position, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Members = []*domain.Membership{}
	return c, nil
}

// List returns collections by position with their members in member order.
// Without includeInactive only active collections and active products are
// read, and collections left with no members are dropped.
func (r *collectionRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM collections s`, collectionColumns)
	if !includeInactive {
		query += ` WHERE s.active = TRUE`
	}
	query += ` ORDER BY s.position ASC, s.created_at ASC, s.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	collections := []*domain.Collection{}
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	if err := loadMembers(ctx, r.db, collections, !includeInactive); err != nil {
		return nil, err
	}

	if !includeInactive {
		return domain.VisibleCollections(collections), nil
	}
	return collections, nil
}

// FindByID retrieves a collection with every member, active or not
func (r *collectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return findCollection(ctx, r.db, id)
}

func findCollection(ctx context.Context, q dbtx, id uuid.UUID) (*domain.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM collections s WHERE s.id = $1`, collectionColumns)

	collection, err := scanCollection(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to find collection by ID: %w", err)
	}

	if err := loadMembers(ctx, q, []*domain.Collection{collection}, false); err != nil {
		return nil, err
	}
	return collection, nil
}

// Create appends the collection after the current last position, whatever
// position the caller set, and inserts its members.
func (r *collectionRepository) Create(ctx context.Context, collection *domain.Collection, members []domain.MemberInput) error {
	normalized, err := domain.NormalizeMembers(members)
	if err != nil {
		return err
	}

	if collection.ID == uuid.Nil {
		collection.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	collection.CreatedAt = now
	collection.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO collections (id, title, position, active, created_at, updated_at)
			VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM collections), $3, $4, $5)
			RETURNING position
		`
		err := tx.QueryRowContext(
			ctx,
			query,
			collection.ID,
			collection.Title,
			collection.Active,
			collection.CreatedAt,
			collection.UpdatedAt,
		).Scan(&collection.Position)
		if err != nil {
			return translate("create collection", err)
		}

		if err := insertMembers(ctx, tx, collection.ID, normalized); err != nil {
			return err
		}

		collection.Members = []*domain.Membership{}
		return loadMembers(ctx, tx, []*domain.Collection{collection}, false)
	})
}

// Update writes the collection's title and active flag. A non-nil members
// slice replaces the whole membership set in the same transaction.
func (r *collectionRepository) Update(ctx context.Context, collection *domain.Collection, members []domain.MemberInput) error {
	var normalized []domain.MemberInput
	if members != nil {
		var err error
		if normalized, err = domain.NormalizeMembers(members); err != nil {
			return err
		}
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE collections
			SET title = $2, active = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING position, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query, collection.ID, collection.Title, collection.Active).
			Scan(&collection.Position, &collection.CreatedAt, &collection.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCollectionNotFound
			}
			return translate("update collection", err)
		}

		if members != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM collection_products WHERE collection_id = $1`, collection.ID); err != nil {
				return fmt.Errorf("failed to clear collection members: %w", err)
			}
			if err := insertMembers(ctx, tx, collection.ID, normalized); err != nil {
				return err
			}
		}

		collection.Members = []*domain.Membership{}
		return loadMembers(ctx, tx, []*domain.Collection{collection}, false)
	})
}

// ToggleActive flips the active flag and returns the updated collection
func (r *collectionRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	query := fmt.Sprintf(`
		UPDATE collections s
		SET active = NOT s.active, updated_at = NOW()
		WHERE s.id = $1
		RETURNING %s
	`, collectionColumns)

	collection, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to toggle collection: %w", err)
	}

	if err := loadMembers(ctx, r.db, []*domain.Collection{collection}, false); err != nil {
		return nil, err
	}
	return collection, nil
}

// Delete removes a collection; membership rows cascade
func (r *collectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// Reorder writes every (id, position) pair or none of them.
func (r *collectionRepository) Reorder(ctx context.Context, orders []domain.CollectionOrder) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, o := range orders {
			result, err := tx.ExecContext(ctx,
				`UPDATE collections SET position = $2, updated_at = NOW() WHERE id = $1`,
				o.ID, o.Position)
			if err != nil {
				return fmt.Errorf("failed to reorder collection %s: %w", o.ID, err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("reorder %s: %w", o.ID, ErrCollectionNotFound)
			}
		}
		return nil
	})
}

// MoveMember moves one product within a collection and renumbers the
// remaining members so positions stay 1..N.
func (r *collectionRepository) MoveMember(ctx context.Context, collectionID, productID uuid.UUID, newPosition int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM collections WHERE id = $1)`, collectionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check collection: %w", err)
		}
		if !exists {
			return ErrCollectionNotFound
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT product_id
			FROM collection_products
			WHERE collection_id = $1
			ORDER BY position ASC, created_at ASC
			FOR UPDATE
		`, collectionID)
		if err != nil {
			return fmt.Errorf("failed to read collection members: %w", err)
		}

		order := []uuid.UUID{}
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan collection member: %w", err)
			}
			order = append(order, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating collection members: %w", err)
		}

		moved, ok := domain.MoveMember(order, productID, newPosition)
		if !ok {
			return ErrMemberNotFound
		}

		positions := make([]int64, len(moved))
		for i := range moved {
			positions[i] = int64(i + 1)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE collection_products cp
			SET position = m.position
			FROM unnest($2::uuid[], $3::int[]) AS m(product_id, position)
			WHERE cp.collection_id = $1 AND cp.product_id = m.product_id
		`, collectionID, uuidArray(moved), pq.Array(positions))
		if err != nil {
			return fmt.Errorf("failed to update member positions: %w", err)
		}
		return nil
	})
}

func insertMembers(ctx context.Context, q dbtx, collectionID uuid.UUID, members []domain.MemberInput) error {
	if len(members) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(members))
	positions := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ProductID
		positions[i] = int64(m.Position)
	}

	query := `
		INSERT INTO collection_products (collection_id, product_id, position)
		SELECT $1::uuid, m.product_id, m.position
		FROM unnest($2::uuid[], $3::int[]) AS m(product_id, position)
	`
	if _, err := q.ExecContext(ctx, query, collectionID, uuidArray(ids), pq.Array(positions)); err != nil {
		return translate("insert collection members", err)
	}
	return nil
}

// loadMembers fills Members for each collection, joined with its product and
// the product's categories, in member order.
func loadMembers(ctx context.Context, q dbtx, collections []*domain.Collection, activeOnly bool) error {
	if len(collections) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Collection, len(collections))
	ids := make([]uuid.UUID, 0, len(collections))
	for _, c := range collections {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query := fmt.Sprintf(`
		SELECT cp.collection_id, cp.product_id, cp.position, cp.created_at, %s
		FROM collection_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.collection_id = ANY($1::uuid[])
	`, productColumns)
	if activeOnly {
		query += ` AND p.active = TRUE`
	}
	query += ` ORDER BY cp.collection_id, cp.position ASC, cp.created_at ASC`

	rows, err := q.QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return fmt.Errorf("failed to load collection members: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		m := &domain.Membership{}
		p := &domain.Product{}
		var images pq.StringArray
		err := rows.Scan(
			&m.CollectionID,
			&m.ProductID,
			&m.Position,
			&m.CreatedAt,
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
			return fmt.Errorf("failed to scan collection member: %w", err)
		}
		p.Images = []string(images)
		if p.Images == nil {
			p.Images = []string{}
		}
		m.Product = p
		products = append(products, p)

		if c, ok := byID[m.CollectionID]; ok {
			c.Members = append(c.Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating collection members: %w", err)
	}
	rows.Close()

	return attachCategories(ctx, q, products)
}
