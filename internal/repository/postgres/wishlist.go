package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

// WishlistRepository implements domain.WishlistRepository for PostgreSQL
type WishlistRepository struct {
	db *sqlx.DB
}

// NewWishlistRepository creates a new PostgreSQL wishlist repository
func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// ListByUser retrieves the user's wishlist, newest first
func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	query := `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var items []*domain.WishlistItem
	err := r.db.SelectContext(ctx, &items, query, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Add saves a product to the user's wishlist
func (r *WishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, item.UserID, item.ProductID).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	return nil
}

// Remove drops a product from the user's wishlist
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, productID)
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
