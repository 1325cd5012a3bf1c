package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Service handles cart business logic. Prices stored on cart lines are
// display snapshots only; order placement re-validates against the catalog.
type Service struct {
	repo        domain.CartRepository
	productRepo domain.ProductRepository
	logger      *logger.Logger
}

// NewService creates a new cart service
func NewService(repo domain.CartRepository, productRepo domain.ProductRepository, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		logger:      log,
	}
}

// Get retrieves the user's cart with derived totals
func (s *Service) Get(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, domain.CartTotals, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list cart items", err)
		return nil, domain.CartTotals{}, err
	}

	return items, domain.ComputeCartTotals(items), nil
}

// AddItem validates the catalog reference and adds the variant to the cart,
// merging quantities when the SKU is already present
func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, sku string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s not found: %w", productID, domain.ErrNotFound)
		}
		s.logger.Error("Failed to get product for cart add", err)
		return nil, err
	}

	if !product.IsActive {
		return nil, fmt.Errorf("product %s is not available: %w", productID, domain.ErrNotFound)
	}

	variant := product.FindVariant(sku)
	if variant == nil || !variant.IsActive {
		return nil, fmt.Errorf("variant %s not found on product %s: %w", sku, productID, domain.ErrNotFound)
	}

	item := &domain.CartItem{
		UserID:     userID,
		ProductID:  productID,
		VariantSKU: sku,
		Name:       product.Name,
		UnitPrice:  variant.Price,
		Quantity:   quantity,
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		s.logger.Error("Failed to upsert cart item", err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"sku":      sku,
		"quantity": item.Quantity,
	}).Info("Cart item added")

	return item, nil
}

// UpdateItem sets the quantity of a cart line; zero removes the line
func (s *Service) UpdateItem(ctx context.Context, userID uuid.UUID, sku string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative: %w", domain.ErrInvalidInput)
	}

	if quantity == 0 {
		return s.RemoveItem(ctx, userID, sku)
	}

	if err := s.repo.UpdateQuantity(ctx, userID, sku, quantity); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to update cart item", err)
		}
		return err
	}

	return nil
}

// RemoveItem removes one SKU from the user's cart
func (s *Service) RemoveItem(ctx context.Context, userID uuid.UUID, sku string) error {
	if err := s.repo.Remove(ctx, userID, sku); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to remove cart item", err)
		}
		return err
	}

	return nil
}

// Clear removes every item from the user's cart
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart", err)
		return err
	}

	return nil
}
