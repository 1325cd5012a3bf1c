package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review statuses. Only published reviews feed the rating aggregate.
const (
	ReviewStatusDraft     = "draft"
	ReviewStatusPublished = "published"
)

// Review represents a product review in the system
type Review struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	ProductID uuid.UUID      `json:"product_id" db:"product_id" validate:"required"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id" validate:"required"`
	Rating    int            `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Title     string         `json:"title" db:"title" validate:"required,min=1,max=255"`
	Body      string         `json:"body" db:"body" validate:"required,min=1,max=5000"`
	Photos    pq.StringArray `json:"photos" db:"photos" validate:"dive,url"`
	Status    string         `json:"status" db:"status" validate:"required,oneof=draft published"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// GetByProductID retrieves published reviews for a product with
	// pagination (excludes soft-deleted)
	GetByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, error)

	// Update updates an existing review
	Update(ctx context.Context, review *Review) error

	// Delete soft-deletes a review
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProductID soft-deletes all reviews for a product (cascade delete)
	DeleteByProductID(ctx context.Context, productID uuid.UUID) error

	// CountByProductID returns the number of published reviews for a product
	CountByProductID(ctx context.Context, productID uuid.UUID) (int, error)
}
