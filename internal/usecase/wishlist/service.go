package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Service handles wishlist business logic
type Service struct {
	repo        domain.WishlistRepository
	productRepo domain.ProductRepository
	logger      *logger.Logger
}

// NewService creates a new wishlist service
func NewService(repo domain.WishlistRepository, productRepo domain.ProductRepository, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		logger:      log,
	}
}

// List retrieves the user's wishlist
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list wishlist", err)
		return nil, err
	}

	return items, nil
}

// Add saves a product to the user's wishlist; adding it twice is a no-op
// that returns the existing entry semantics via ErrAlreadyExists
func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID) (*domain.WishlistItem, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s not found: %w", productID, domain.ErrNotFound)
		}
		s.logger.Error("Failed to get product for wishlist add", err)
		return nil, err
	}

	item := &domain.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.Add(ctx, item); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Error("Failed to add wishlist item", err)
		}
		return nil, err
	}

	return item, nil
}

// Remove drops a product from the user's wishlist
func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to remove wishlist item", err)
		}
		return err
	}

	return nil
}
