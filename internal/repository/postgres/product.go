package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product with its variants
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (slug, name, description, categories, tags, images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, rating_average, rating_count, version, created_at, updated_at
	`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err = tx.QueryRowxContext(
		ctx,
		query,
		product.Slug,
		product.Name,
		product.Description,
		product.Categories,
		product.Tags,
		product.Images,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(
		&product.ID,
		&product.RatingAverage,
		&product.RatingCount,
		&product.Version,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	for _, v := range product.Variants {
		if err := insertVariant(ctx, tx, product.ID, v); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
	}

	return tx.Commit()
}

func insertVariant(ctx context.Context, tx *sqlx.Tx, productID uuid.UUID, v *domain.Variant) error {
	query := `
		INSERT INTO product_variants (product_id, sku, price, currency, quantity, inventory_policy, is_active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	v.ProductID = productID
	return tx.QueryRowxContext(
		ctx,
		query,
		productID,
		v.SKU,
		v.Price,
		v.Currency,
		v.Quantity,
		v.InventoryPolicy,
		v.IsActive,
		v.Position,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

const productColumns = `id, slug, name, description, categories, tags, images,
	rating_average, rating_count, is_active, version, created_at, updated_at, deleted_at`

// GetByID retrieves a product and its variants by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachVariants(ctx, []*domain.Product{&product}); err != nil {
		return nil, err
	}

	return &product, nil
}

// GetBySlug retrieves a product and its variants by slug
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 AND deleted_at IS NULL`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachVariants(ctx, []*domain.Product{&product}); err != nil {
		return nil, err
	}

	return &product, nil
}

// List retrieves a paginated list of products with their variants
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachVariants loads variants for the given products in one query
func (r *ProductRepository) attachVariants(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	query, args, err := sqlx.In(`
		SELECT id, product_id, sku, price, currency, quantity, inventory_policy, is_active, position, created_at, updated_at
		FROM product_variants
		WHERE product_id IN (?)
		ORDER BY position, sku
	`, ids)
	if err != nil {
		return err
	}

	var variants []*domain.Variant
	if err := r.db.SelectContext(ctx, &variants, r.db.Rebind(query), args...); err != nil {
		return err
	}

	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}

	return nil
}

// Update updates a product and reconciles its variants, guarded by the version column
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET slug = $1, name = $2, description = $3, categories = $4, tags = $5,
			images = $6, is_active = $7, updated_at = $8, version = version + 1
		WHERE id = $9 AND deleted_at IS NULL AND version = $10
		RETURNING version, updated_at
	`

	product.UpdatedAt = time.Now()
	oldVersion := product.Version

	err = tx.QueryRowxContext(
		ctx,
		query,
		product.Slug,
		product.Name,
		product.Description,
		product.Categories,
		product.Tags,
		product.Images,
		product.IsActive,
		product.UpdatedAt,
		product.ID,
		oldVersion,
	).Scan(&product.Version, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	if err := reconcileVariants(ctx, tx, product); err != nil {
		return err
	}

	return tx.Commit()
}

// reconcileVariants upserts the submitted variants by SKU and drops the rest.
// The WHERE guard on the upsert keeps a SKU owned by another product from
// being hijacked; the service layer rejects such collisions up front.
func reconcileVariants(ctx context.Context, tx *sqlx.Tx, product *domain.Product) error {
	skus := make([]string, 0, len(product.Variants))
	for _, v := range product.Variants {
		skus = append(skus, v.SKU)

		query := `
			INSERT INTO product_variants (product_id, sku, price, currency, quantity, inventory_policy, is_active, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (sku) DO UPDATE
			SET price = EXCLUDED.price,
				currency = EXCLUDED.currency,
				quantity = EXCLUDED.quantity,
				inventory_policy = EXCLUDED.inventory_policy,
				is_active = EXCLUDED.is_active,
				position = EXCLUDED.position,
				updated_at = NOW()
			WHERE product_variants.product_id = EXCLUDED.product_id
			RETURNING id, created_at, updated_at
		`

		v.ProductID = product.ID
		err := tx.QueryRowxContext(
			ctx,
			query,
			product.ID,
			v.SKU,
			v.Price,
			v.Currency,
			v.Quantity,
			v.InventoryPolicy,
			v.IsActive,
			v.Position,
		).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// conflict row belongs to another product
				return domain.ErrAlreadyExists
			}
			return err
		}
	}

	query, args, err := sqlx.In(
		`DELETE FROM product_variants WHERE product_id = ? AND sku NOT IN (?)`,
		product.ID, skus,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1, is_active = FALSE
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var count int
	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SKUExists reports whether any other product already owns one of the SKUs
func (r *ProductRepository) SKUExists(ctx context.Context, skus []string, excludeProductID uuid.UUID) (bool, error) {
	if len(skus) == 0 {
		return false, nil
	}

	query, args, err := sqlx.In(
		`SELECT EXISTS(SELECT 1 FROM product_variants WHERE sku IN (?) AND product_id <> ?)`,
		skus, excludeProductID,
	)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query), args...); err != nil {
		return false, err
	}

	return exists, nil
}
