package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoice payment statuses, derived from the order's payment method.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// DerivePaymentStatus maps a payment method to the invoice payment status:
// cash on delivery is unpaid at issuance, everything else was charged upfront
func DerivePaymentStatus(paymentMethod string) string {
	if paymentMethod == PaymentMethodCOD {
		return PaymentStatusUnpaid
	}
	return PaymentStatusPaid
}

// InvoiceItem is a line snapshot copied from the order at issuance time
type InvoiceItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	VariantSKU string    `json:"variant_sku"`
	Name       string    `json:"name"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
}

// InvoiceItems is stored as a JSONB column
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer
func (i InvoiceItems) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner
func (i *InvoiceItems) Scan(src interface{}) error {
	if src == nil {
		*i = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for InvoiceItems: %T", src)
	}
	return json.Unmarshal(b, i)
}

// Invoice is an append-only billing record, one-to-one with an order.
// The unique index on order_id is the final backstop against duplicates.
type Invoice struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	InvoiceNumber  string       `json:"invoice_number" db:"invoice_number"`
	OrderID        string       `json:"order_id" db:"order_id"`
	UserID         uuid.UUID    `json:"user_id" db:"user_id"`
	BillingAddress Address      `json:"billing_address" db:"billing_address"`
	Items          InvoiceItems `json:"items" db:"items"`
	Subtotal       float64      `json:"subtotal" db:"subtotal"`
	Tax            float64      `json:"tax" db:"tax"`
	ShippingFee    float64      `json:"shipping_fee" db:"shipping_fee"`
	TotalAmount    float64      `json:"total_amount" db:"total_amount"`
	PaymentMethod  string       `json:"payment_method" db:"payment_method"`
	PaymentStatus  string       `json:"payment_status" db:"payment_status"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	// Create persists the invoice, assigning the next sequential invoice
	// number; a duplicate order_id returns ErrAlreadyExists
	Create(ctx context.Context, invoice *Invoice) error

	// GetByOrderID retrieves the invoice for an order, if one exists
	GetByOrderID(ctx context.Context, orderID string) (*Invoice, error)
}
