package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// CartItem references a product variant in a user's cart. UnitPrice is a
// display snapshot taken at add time; checkout re-validates against the
// live catalog and never trusts it.
type CartItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id" validate:"required"`
	VariantSKU string    `json:"variant_sku" db:"variant_sku" validate:"required,min=1,max=64"`
	Name       string    `json:"name" db:"name"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"`
	Quantity   int       `json:"quantity" db:"quantity" validate:"required,gt=0"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CartTotals is derived from cart items and never persisted
type CartTotals struct {
	TotalAmount   float64 `json:"total_amount"`
	TotalQuantity int     `json:"total_quantity"`
	ItemCount     int     `json:"item_count"`
}

// ComputeCartTotals sums price*quantity and quantity over the items.
// A missing or non-numeric price and a non-positive quantity contribute 0
// so the cart always renders, even over corrupt rows.
func ComputeCartTotals(items []*CartItem) CartTotals {
	totals := CartTotals{ItemCount: len(items)}

	for _, item := range items {
		price := item.UnitPrice
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			price = 0
		}

		qty := item.Quantity
		if qty < 0 {
			qty = 0
		}

		totals.TotalAmount += price * float64(qty)
		totals.TotalQuantity += qty
	}

	return totals
}

// CartRepository defines the interface for cart data access
type CartRepository interface {
	// ListByUser retrieves the user's cart items, oldest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CartItem, error)

	// Upsert inserts the item or, if the user already has the SKU in the
	// cart, adds to its quantity and refreshes the price snapshot
	Upsert(ctx context.Context, item *CartItem) error

	// UpdateQuantity sets the quantity of an existing cart line
	UpdateQuantity(ctx context.Context, userID uuid.UUID, sku string, quantity int) error

	// Remove removes one SKU from the user's cart
	Remove(ctx context.Context, userID uuid.UUID, sku string) error

	// Clear removes every item from the user's cart
	Clear(ctx context.Context, userID uuid.UUID) error
}
