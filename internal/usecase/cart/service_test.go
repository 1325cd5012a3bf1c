package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// MockCartRepository is a mock implementation of domain.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, userID uuid.UUID, sku string, quantity int) error {
	args := m.Called(ctx, userID, sku, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) Remove(ctx context.Context, userID uuid.UUID, sku string) error {
	args := m.Called(ctx, userID, sku)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) SKUExists(ctx context.Context, skus []string, excludeProductID uuid.UUID) (bool, error) {
	args := m.Called(ctx, skus, excludeProductID)
	return args.Bool(0), args.Error(1)
}

func cartTestProduct(sku string, price float64) *domain.Product {
	return &domain.Product{
		ID:       uuid.New(),
		Name:     "Cart Test Product",
		IsActive: true,
		Variants: []*domain.Variant{
			{SKU: sku, Price: price, Currency: "USD", Quantity: 10, IsActive: true},
		},
	}
}

func TestService_AddItem_Success(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	product := cartTestProduct("SKU-1", 25.00)
	userID := uuid.New()

	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.CartItem")).Return(nil)

	item, err := service.AddItem(context.Background(), userID, product.ID, "SKU-1", 2)

	assert.NoError(t, err)
	assert.Equal(t, "Cart Test Product", item.Name)
	assert.Equal(t, 25.00, item.UnitPrice)
	assert.Equal(t, 2, item.Quantity)
	mockRepo.AssertExpectations(t)
}

func TestService_AddItem_NonPositiveQuantity(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	_, err := service.AddItem(context.Background(), uuid.New(), uuid.New(), "SKU-1", 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockProducts.AssertNotCalled(t, "GetByID")
}

func TestService_AddItem_InactiveVariant(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	product := cartTestProduct("SKU-1", 25.00)
	product.Variants[0].IsActive = false
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.AddItem(context.Background(), uuid.New(), product.ID, "SKU-1", 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestService_UpdateItem_ZeroRemoves(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	userID := uuid.New()
	mockRepo.On("Remove", mock.Anything, userID, "SKU-1").Return(nil)

	err := service.UpdateItem(context.Background(), userID, "SKU-1", 0)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "UpdateQuantity")
	mockRepo.AssertExpectations(t)
}

func TestService_UpdateItem_NegativeRejected(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	err := service.UpdateItem(context.Background(), uuid.New(), "SKU-1", -1)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "UpdateQuantity")
	mockRepo.AssertNotCalled(t, "Remove")
}

func TestService_Get_ComputesTotals(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockProducts := new(MockProductRepository)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, log)

	userID := uuid.New()
	items := []*domain.CartItem{
		{VariantSKU: "A", UnitPrice: 10.00, Quantity: 2},
		{VariantSKU: "B", UnitPrice: 5.50, Quantity: 1},
	}
	mockRepo.On("ListByUser", mock.Anything, userID).Return(items, nil)

	got, totals, err := service.Get(context.Background(), userID)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 25.50, totals.TotalAmount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, 2, totals.ItemCount)
}
