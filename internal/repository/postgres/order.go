package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
)

// OrderRepository implements domain.OrderRepository for PostgreSQL
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order with its items and decrements inventory in a
// single transaction. Each decrement is conditional on enough stock being
// left, so two concurrent orders can never both take the last unit; the
// first failing variant rolls the whole order back.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (order_id, user_id, total_amount, currency, delivery_address, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	err = tx.QueryRowxContext(
		ctx,
		query,
		order.OrderID,
		order.UserID,
		order.TotalAmount,
		order.Currency,
		order.DeliveryAddress,
		order.PaymentMethod,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, variant_sku, name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	for _, item := range order.Items {
		item.OrderID = order.ID
		err := tx.QueryRowxContext(
			ctx,
			itemQuery,
			order.ID,
			item.ProductID,
			item.VariantSKU,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	decrementQuery := `
		UPDATE product_variants
		SET quantity = quantity - $1, updated_at = $2
		WHERE sku = $3
			AND is_active
			AND (inventory_policy = 'continue' OR quantity >= $1)
	`

	for _, item := range order.Items {
		result, err := tx.ExecContext(ctx, decrementQuery, item.Quantity, now, item.VariantSKU)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			return fmt.Errorf("variant %s: %w", item.VariantSKU, domain.ErrInsufficientStock)
		}
	}

	return tx.Commit()
}

const orderColumns = `id, order_id, user_id, total_amount, currency, delivery_address,
	payment_method, status, created_at, updated_at`

// GetByOrderID retrieves an order with its items by its public identifier
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	var order domain.Order
	err := r.db.GetContext(ctx, &order, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListByUser retrieves all orders for a user, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	var orders []*domain.Order
	err := r.db.SelectContext(ctx, &orders, query, userID)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads line items for the given orders in one query
func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, variant_sku, name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id IN (?)
	`, ids)
	if err != nil {
		return err
	}

	var items []*domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return err
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return nil
}

// UpdateStatus sets a new status on an order
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE order_id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), orderID)
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

// DeleteByUser deletes all of a user's orders and returns how many went away
func (r *OrderRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM orders WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
