package catalog

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// updateRetries bounds the re-fetch-and-reapply loop on version conflicts
const updateRetries = 3

// ProductCache defines the caching operations the catalog service needs
type ProductCache interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error
}

// Service handles catalog business logic
type Service struct {
	repo       domain.ProductRepository
	reviewRepo domain.ReviewRepository
	cache      ProductCache
	validate   *validator.Validate
	logger     *logger.Logger
}

// NewService creates a new catalog service
func NewService(
	repo domain.ProductRepository,
	reviewRepo domain.ReviewRepository,
	cache ProductCache,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		reviewRepo: reviewRepo,
		cache:      cache,
		validate:   validator.New(),
		logger:     log,
	}
}

// Create creates a new product with its variants. The slug is derived from
// the name when absent; SKUs must be unique within the payload and across
// the whole catalog.
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	applyVariantDefaults(product)

	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	skus, ok := collectSKUs(product)
	if !ok {
		s.logger.Warn("Duplicate SKUs within product payload")
		return domain.ErrInvalidInput
	}

	taken, err := s.repo.SKUExists(ctx, skus, uuid.Nil)
	if err != nil {
		s.logger.Error("Failed to check SKU uniqueness", err)
		return err
	}
	if taken {
		return domain.ErrAlreadyExists
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
		"variants":   len(product.Variants),
	}).Info("Product created successfully")

	return nil
}

// GetByID retrieves a product by ID, cache first
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); err == nil {
		s.logger.Debugf("Cache hit for product %s", id)
		return cached, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", id, err)
	}

	return product, nil
}

// GetBySlug retrieves a product by its slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found by slug: %s", slug)
		} else {
			s.logger.Error("Failed to get product by slug", err)
		}
		return nil, err
	}

	return product, nil
}

// List retrieves a paginated list of products
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.Product, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	return products, total, nil
}

// Update updates a product. A version conflict is retried by re-fetching
// the current row and reapplying the change, bounded to three attempts.
func (s *Service) Update(ctx context.Context, product *domain.Product) error {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	applyVariantDefaults(product)

	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	skus, ok := collectSKUs(product)
	if !ok {
		return domain.ErrInvalidInput
	}

	taken, err := s.repo.SKUExists(ctx, skus, product.ID)
	if err != nil {
		s.logger.Error("Failed to check SKU uniqueness", err)
		return err
	}
	if taken {
		return domain.ErrAlreadyExists
	}

	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		if attempt > 0 {
			current, err := s.repo.GetByID(ctx, product.ID)
			if err != nil {
				return err
			}
			product.Version = current.Version

			s.logger.WithFields(map[string]interface{}{
				"product_id": product.ID,
				"attempt":    attempt + 1,
			}).Warn("Retrying product update after version conflict")
		}

		lastErr = s.repo.Update(ctx, product)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, domain.ErrConflict) {
			s.logger.Error("Failed to update product", lastErr)
			return lastErr
		}
	}
	if lastErr != nil {
		return lastErr
	}

	if err := s.cache.InvalidateAllProductCache(ctx, product.ID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", product.ID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"version":    product.Version,
	}).Info("Product updated successfully")

	return nil
}

// Delete soft-deletes a product and cascades to its reviews
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}

	if err := s.reviewRepo.DeleteByProductID(ctx, id); err != nil {
		s.logger.Error("Failed to cascade delete reviews", err)
		return err
	}

	if err := s.cache.InvalidateAllProductCache(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", id, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// applyVariantDefaults fills policy and position defaults so sparse admin
// payloads still validate
func applyVariantDefaults(product *domain.Product) {
	for i, v := range product.Variants {
		if v.InventoryPolicy == "" {
			v.InventoryPolicy = domain.InventoryPolicyDeny
		}
		if v.Currency == "" {
			v.Currency = "USD"
		}
		if v.Position == 0 {
			v.Position = i
		}
	}
}

// collectSKUs returns the payload's SKUs and whether they are pairwise distinct
func collectSKUs(product *domain.Product) ([]string, bool) {
	skus := make([]string, 0, len(product.Variants))
	seen := make(map[string]struct{}, len(product.Variants))
	for _, v := range product.Variants {
		if _, dup := seen[v.SKU]; dup {
			return nil, false
		}
		seen[v.SKU] = struct{}{}
		skus = append(skus, v.SKU)
	}
	return skus, true
}
