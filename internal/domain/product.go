package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Inventory policies control what happens when a variant runs out of stock.
const (
	// InventoryPolicyDeny rejects orders that exceed the available quantity
	InventoryPolicyDeny = "deny"

	// InventoryPolicyContinue allows ordering past zero (backorders)
	InventoryPolicyContinue = "continue"
)

// ProductImage is a single catalog image attached to a product
type ProductImage struct {
	URL       string `json:"url" validate:"required,url"`
	IsPrimary bool   `json:"is_primary"`
	Position  int    `json:"position"`
}

// ProductImages is stored as a JSONB column
type ProductImages []ProductImage

// Value implements driver.Valuer
func (p ProductImages) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *ProductImages) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for ProductImages: %T", src)
	}
	return json.Unmarshal(b, p)
}

// Variant is a purchasable configuration of a product with its own SKU,
// price and inventory count
type Variant struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ProductID       uuid.UUID `json:"product_id" db:"product_id"`
	SKU             string    `json:"sku" db:"sku" validate:"required,min=1,max=64"`
	Price           float64   `json:"price" db:"price" validate:"gte=0"`
	Currency        string    `json:"currency" db:"currency" validate:"required,len=3"`
	Quantity        int       `json:"quantity" db:"quantity" validate:"gte=0"`
	InventoryPolicy string    `json:"inventory_policy" db:"inventory_policy" validate:"required,oneof=deny continue"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	Position        int       `json:"position" db:"position"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a catalog product. Every product carries at least one
// variant; rating fields are a materialized aggregate over published reviews.
type Product struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Slug          string         `json:"slug" db:"slug"`
	Name          string         `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description   *string        `json:"description,omitempty" db:"description"`
	Categories    pq.StringArray `json:"categories" db:"categories"`
	Tags          pq.StringArray `json:"tags" db:"tags"`
	Images        ProductImages  `json:"images" db:"images"`
	Variants      []*Variant     `json:"variants" db:"-" validate:"required,min=1,dive"`
	RatingAverage float64        `json:"rating_average" db:"rating_average"`
	RatingCount   int            `json:"rating_count" db:"rating_count"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	Version       int            `json:"version" db:"version"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FindVariant returns the variant with the given SKU, or nil if the product
// has no such variant
func (p *Product) FindVariant(sku string) *Variant {
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v
		}
	}
	return nil
}

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	// Create creates a new product with its variants
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product and its variants by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetBySlug retrieves a product and its variants by slug (excludes soft-deleted)
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	// List retrieves a paginated list of products with variants (excludes soft-deleted)
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// Update updates a product and replaces its variants, guarded by the
	// version column; returns ErrConflict when the version moved
	Update(ctx context.Context, product *Product) error

	// Delete soft-deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the total number of products (excludes soft-deleted)
	Count(ctx context.Context) (int, error)

	// SKUExists reports whether any other product already owns one of the SKUs
	SKUExists(ctx context.Context, skus []string, excludeProductID uuid.UUID) (bool, error)
}
