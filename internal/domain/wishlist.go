package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a product as saved by a user
type WishlistItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id" validate:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WishlistRepository defines the interface for wishlist data access
type WishlistRepository interface {
	// ListByUser retrieves the user's wishlist, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*WishlistItem, error)

	// Add saves a product to the user's wishlist; adding the same product
	// twice returns ErrAlreadyExists
	Add(ctx context.Context, item *WishlistItem) error

	// Remove drops a product from the user's wishlist
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}
