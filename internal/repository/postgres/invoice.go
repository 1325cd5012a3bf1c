package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

// InvoiceRepository implements domain.InvoiceRepository for PostgreSQL
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create persists the invoice, assigning the next sequential invoice number
// inside the insert itself so concurrent issuers can never share a number.
// A duplicate order_id returns ErrAlreadyExists for the caller to resolve
// into "fetch and return existing".
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, order_id, user_id, billing_address, items,
			subtotal, tax, shipping_fee, total_amount, payment_method, payment_status)
		VALUES ('INV-' || lpad(nextval('invoice_numbers')::text, 6, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, invoice_number, created_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		invoice.OrderID,
		invoice.UserID,
		invoice.BillingAddress,
		invoice.Items,
		invoice.Subtotal,
		invoice.Tax,
		invoice.ShippingFee,
		invoice.TotalAmount,
		invoice.PaymentMethod,
		invoice.PaymentStatus,
	).Scan(&invoice.ID, &invoice.InvoiceNumber, &invoice.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	return nil
}

// GetByOrderID retrieves the invoice for an order, if one exists
func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	query := `
		SELECT id, invoice_number, order_id, user_id, billing_address, items,
			subtotal, tax, shipping_fee, total_amount, payment_method, payment_status, created_at
		FROM invoices
		WHERE order_id = $1
	`

	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &invoice, nil
}
