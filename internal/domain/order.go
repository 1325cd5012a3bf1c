package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order statuses. Transitions are externally driven (manager action);
// line items never change once the order exists.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD  = "cod"
	PaymentMethodCard = "card"
	PaymentMethodBank = "bank_transfer"
)

// orderTransitions is the allowed forward path plus cancellation from any
// non-terminal state
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// CanTransitionOrder reports whether an order may move from one status to another
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is a delivery or billing address snapshot stored as a JSONB column
type Address struct {
	FullName   string `json:"full_name" validate:"required,min=1,max=255"`
	Line1      string `json:"line1" validate:"required,min=1,max=255"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required,min=1,max=100"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required,min=1,max=20"`
	Country    string `json:"country" validate:"required,min=2,max=100"`
	Phone      string `json:"phone,omitempty"`
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(src interface{}) error {
	if src == nil {
		*a = Address{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for Address: %T", src)
	}
	return json.Unmarshal(b, a)
}

// OrderItem is a frozen line-item snapshot: name and unit price are copied
// from the catalog at placement time and never change afterwards
type OrderItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	VariantSKU string    `json:"variant_sku" db:"variant_sku"`
	Name       string    `json:"name" db:"name"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"`
	Quantity   int       `json:"quantity" db:"quantity"`
	LineTotal  float64   `json:"line_total" db:"line_total"`
}

// Order is an immutable record of a placed order
type Order struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	OrderID         string       `json:"order_id" db:"order_id"`
	UserID          uuid.UUID    `json:"user_id" db:"user_id"`
	Items           []*OrderItem `json:"items" db:"-"`
	TotalAmount     float64      `json:"total_amount" db:"total_amount"`
	Currency        string       `json:"currency" db:"currency"`
	DeliveryAddress Address      `json:"delivery_address" db:"delivery_address"`
	PaymentMethod   string       `json:"payment_method" db:"payment_method"`
	Status          string       `json:"status" db:"status"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// NewOrderID generates a human-readable order identifier
func NewOrderID() string {
	return "ORD-" + uuid.New().String()
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create persists the order with its items and decrements each variant's
	// inventory in a single transaction. Either everything commits or nothing
	// does; an exhausted variant aborts with ErrInsufficientStock naming the SKU.
	Create(ctx context.Context, order *Order) error

	// GetByOrderID retrieves an order with its items by its public identifier
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)

	// ListByUser retrieves all orders for a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// UpdateStatus sets a new status on an order
	UpdateStatus(ctx context.Context, orderID, status string) error

	// DeleteByUser deletes all of a user's orders and returns how many went away
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
