package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/storefront/internal/pkg/validator"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// OrderEvent represents an event related to an order
type OrderEvent struct {
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	OrderID     string    `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
}

// ItemInput is one requested line of a new order
type ItemInput struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	VariantSKU string    `json:"variant_sku" validate:"required,min=1,max=64"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceInput carries everything needed to place an order
type PlaceInput struct {
	UserID          uuid.UUID      `validate:"required"`
	Items           []ItemInput    `validate:"required,min=1,dive"`
	DeliveryAddress domain.Address `validate:"required"`
	PaymentMethod   string         `validate:"required,oneof=cod card bank_transfer"`
}

// Service handles order placement and lifecycle
type Service struct {
	repo        domain.OrderRepository
	productRepo domain.ProductRepository
	publisher   EventPublisher
	validate    *validator.Validate
	logger      *logger.Logger
}

// NewService creates a new order service
func NewService(
	repo domain.OrderRepository,
	productRepo domain.ProductRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		publisher:   publisher,
		validate:    pkgvalidator.Get(),
		logger:      log,
	}
}

// Place validates every requested line against the catalog, then persists
// the order and decrements inventory atomically. Validation failures leave
// no side effects: nothing is written until every line has passed, and the
// repository's transaction makes commit-time stock races all-or-nothing.
func (s *Service) Place(ctx context.Context, input PlaceInput) (*domain.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Order input validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	order := &domain.Order{
		OrderID:         domain.NewOrderID(),
		UserID:          input.UserID,
		DeliveryAddress: input.DeliveryAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderStatusPending,
	}

	for _, line := range input.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product %s not found: %w", line.ProductID, domain.ErrNotFound)
			}
			s.logger.Error("Failed to load product for order", err)
			return nil, err
		}

		if !product.IsActive {
			return nil, fmt.Errorf("product %s not found: %w", line.ProductID, domain.ErrNotFound)
		}

		variant := product.FindVariant(line.VariantSKU)
		if variant == nil || !variant.IsActive {
			return nil, fmt.Errorf("variant %s not found on product %s: %w", line.VariantSKU, line.ProductID, domain.ErrNotFound)
		}

		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for %s: %w", line.VariantSKU, domain.ErrInvalidInput)
		}

		if math.IsNaN(variant.Price) || math.IsInf(variant.Price, 0) || variant.Price < 0 {
			s.logger.WithFields(map[string]interface{}{
				"product_id": product.ID,
				"sku":        variant.SKU,
				"price":      variant.Price,
			}).Warn("Corrupt variant price encountered during order placement")
			return nil, fmt.Errorf("variant %s has a corrupt price: %w", variant.SKU, domain.ErrIntegrity)
		}

		// Friendly pre-check; the transactional decrement is the real guard
		if variant.InventoryPolicy == domain.InventoryPolicyDeny && variant.Quantity < line.Quantity {
			return nil, fmt.Errorf("variant %s: %w", variant.SKU, domain.ErrInsufficientStock)
		}

		if order.Currency == "" {
			order.Currency = variant.Currency
		} else if order.Currency != variant.Currency {
			return nil, fmt.Errorf("variant %s is priced in %s, order is in %s: %w",
				variant.SKU, variant.Currency, order.Currency, domain.ErrInvalidInput)
		}

		lineTotal := variant.Price * float64(line.Quantity)
		order.TotalAmount += lineTotal
		order.Items = append(order.Items, &domain.OrderItem{
			ProductID:  product.ID,
			VariantSKU: variant.SKU,
			Name:       product.Name,
			UnitPrice:  variant.Price,
			Quantity:   line.Quantity,
			LineTotal:  lineTotal,
		})
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.logger.Warnf("Order rejected, stock exhausted concurrently: %v", err)
		} else {
			s.logger.Error("Failed to create order", err)
		}
		return nil, err
	}

	s.publishEvent(ctx, "order.created", order)

	s.logger.WithFields(map[string]interface{}{
		"order_id":     order.OrderID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
	}).Info("Order placed successfully")

	return order, nil
}

// GetByOrderID retrieves an order, restricted to its owner and order managers
func (s *Service) GetByOrderID(ctx context.Context, identity domain.Identity, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get order", err)
		}
		return nil, err
	}

	if order.UserID != identity.UserID && !identity.CanManageOrders() {
		return nil, domain.ErrForbidden
	}

	return order, nil
}

// ListByUser retrieves all of the caller's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list orders", err)
		return nil, err
	}

	return orders, nil
}

// DeleteByUser deletes all of the caller's orders
func (s *Service) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to delete orders", err)
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"deleted": deleted,
	}).Info("User orders deleted")

	return deleted, nil
}

// UpdateStatus drives an order through its lifecycle; manager/admin only,
// and only along valid transitions
func (s *Service) UpdateStatus(ctx context.Context, identity domain.Identity, orderID, status string) (*domain.Order, error) {
	if !identity.CanManageOrders() {
		return nil, domain.ErrForbidden
	}

	order, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get order for status update", err)
		}
		return nil, err
	}

	if !domain.CanTransitionOrder(order.Status, status) {
		return nil, fmt.Errorf("cannot transition order from %s to %s: %w", order.Status, status, domain.ErrConflict)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		s.logger.Error("Failed to update order status", err)
		return nil, err
	}

	order.Status = status
	s.publishEvent(ctx, "order.status_changed", order)

	s.logger.WithFields(map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	}).Info("Order status updated")

	return order, nil
}

// publishEvent publishes an order event (non-blocking)
func (s *Service) publishEvent(ctx context.Context, eventType string, order *domain.Order) {
	event := OrderEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for order %s", order.OrderID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), "orders.events", data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for order %s", order.OrderID)
		}
	}()
}
