package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// QuoteLine prices one cart line against the live catalog
type QuoteLine struct {
	ProductID  uuid.UUID `json:"product_id"`
	VariantSKU string    `json:"variant_sku"`
	Name       string    `json:"name"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	LineTotal  float64   `json:"line_total"`
}

// Quote is a point-in-time pricing of a cart. It is display material, not a
// reservation: order placement re-validates everything.
type Quote struct {
	Lines       []QuoteLine `json:"lines"`
	Currency    string      `json:"currency"`
	TotalAmount float64     `json:"total_amount"`
}

// Service prices carts against current catalog state
type Service struct {
	cartRepo      domain.CartRepository
	productRepo   domain.ProductRepository
	logger        *logger.Logger
	maxConcurrent int
}

// NewService creates a new checkout service
func NewService(cartRepo domain.CartRepository, productRepo domain.ProductRepository, log *logger.Logger) *Service {
	return &Service{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		logger:        log,
		maxConcurrent: 10,
	}
}

// Quote prices the user's current cart, fetching products concurrently
func (s *Service) Quote(ctx context.Context, userID uuid.UUID) (*Quote, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list cart for quote", err)
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", domain.ErrInvalidInput)
	}

	lines := make([]QuoteLine, len(items))
	currencies := make([]string, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			item := items[idx]
			if item.Quantity <= 0 {
				return fmt.Errorf("quantity must be positive for %s: %w", item.VariantSKU, domain.ErrInvalidInput)
			}

			product, err := s.productRepo.GetByID(gctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", item.ProductID, err)
			}

			variant := product.FindVariant(item.VariantSKU)
			if variant == nil {
				return fmt.Errorf("variant %s not found on product %s: %w", item.VariantSKU, item.ProductID, domain.ErrNotFound)
			}

			lines[idx] = QuoteLine{
				ProductID:  product.ID,
				VariantSKU: variant.SKU,
				Name:       product.Name,
				UnitPrice:  variant.Price,
				Quantity:   item.Quantity,
				LineTotal:  variant.Price * float64(item.Quantity),
			}
			currencies[idx] = variant.Currency
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, currency := range currencies {
		if currency != currencies[0] {
			return nil, fmt.Errorf("cart mixes currencies %s and %s: %w", currencies[0], currency, domain.ErrInvalidInput)
		}
	}

	quote := &Quote{Lines: lines, Currency: currencies[0]}
	for _, line := range lines {
		quote.TotalAmount += line.LineTotal
	}

	return quote, nil
}
