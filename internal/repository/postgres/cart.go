package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

// CartRepository implements domain.CartRepository for PostgreSQL
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository creates a new PostgreSQL cart repository
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ListByUser retrieves the user's cart items, oldest first
func (r *CartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, variant_sku, name, unit_price, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`

	var items []*domain.CartItem
	err := r.db.SelectContext(ctx, &items, query, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Upsert inserts the item or adds to the quantity of an existing cart line,
// refreshing the display price snapshot either way
func (r *CartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, variant_sku, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, variant_sku) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity,
			name = EXCLUDED.name,
			unit_price = EXCLUDED.unit_price,
			updated_at = NOW()
		RETURNING id, quantity, created_at, updated_at
	`

	return r.db.QueryRowxContext(
		ctx,
		query,
		item.UserID,
		item.ProductID,
		item.VariantSKU,
		item.Name,
		item.UnitPrice,
		item.Quantity,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
}

// UpdateQuantity sets the quantity of an existing cart line
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID uuid.UUID, sku string, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND variant_sku = $3
	`

	result, err := r.db.ExecContext(ctx, query, quantity, userID, sku)
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

// Remove removes one SKU from the user's cart
func (r *CartRepository) Remove(ctx context.Context, userID uuid.UUID, sku string) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND variant_sku = $2`

	result, err := r.db.ExecContext(ctx, query, userID, sku)
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

// Clear removes every item from the user's cart
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
