package order

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// MockOrderRepository is a mock implementation of domain.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
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

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func testAddress() domain.Address {
	return domain.Address{
		FullName:   "Jane Buyer",
		Line1:      "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func activeProduct(sku string, price float64, quantity int) *domain.Product {
	return &domain.Product{
		ID:       uuid.New(),
		Name:     "Test Product",
		Slug:     "test-product",
		IsActive: true,
		Variants: []*domain.Variant{
			{
				SKU:             sku,
				Price:           price,
				Currency:        "USD",
				Quantity:        quantity,
				InventoryPolicy: domain.InventoryPolicyDeny,
				IsActive:        true,
			},
		},
	}
}

func TestService_Place_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 5)
	userID := uuid.New()

	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "orders.events", mock.Anything).Return(nil).Maybe()

	order, err := service.Place(context.Background(), PlaceInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 2}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 20.00, order.TotalAmount)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Test Product", order.Items[0].Name)
	assert.Equal(t, 10.00, order.Items[0].UnitPrice)
	assert.Equal(t, 20.00, order.Items[0].LineTotal)
	assert.Contains(t, order.OrderID, "ORD-")
	mockRepo.AssertExpectations(t)
	mockProducts.AssertExpectations(t)
}

func TestService_Place_EmptyItems(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_MissingPaymentMethod(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: uuid.New(), VariantSKU: "SKU-1", Quantity: 1}},
		DeliveryAddress: testAddress(),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_UnknownPaymentMethod(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: uuid.New(), VariantSKU: "SKU-1", Quantity: 1}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   "cheque",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_ProductNotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	productID := uuid.New()
	mockProducts.On("GetByID", mock.Anything, productID).Return(nil, domain.ErrNotFound)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: productID, VariantSKU: "SKU-1", Quantity: 1}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCard,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), productID.String())
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_InactiveProduct(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 5)
	product.IsActive = false
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 1}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_UnknownVariant(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 5)
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "NO-SUCH-SKU", Quantity: 1}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "NO-SUCH-SKU")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_CorruptPrice(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", math.NaN(), 5)
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 1}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrIntegrity)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_InsufficientStock(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 1)
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 3}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SKU-1")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_MixedCurrenciesRejected(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	usdProduct := activeProduct("SKU-USD", 10.00, 5)
	eurProduct := activeProduct("SKU-EUR", 10.00, 5)
	eurProduct.Variants[0].Currency = "EUR"

	mockProducts.On("GetByID", mock.Anything, usdProduct.ID).Return(usdProduct, nil)
	mockProducts.On("GetByID", mock.Anything, eurProduct.ID).Return(eurProduct, nil)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID: uuid.New(),
		Items: []ItemInput{
			{ProductID: usdProduct.ID, VariantSKU: "SKU-USD", Quantity: 1},
			{ProductID: eurProduct.ID, VariantSKU: "SKU-EUR", Quantity: 1},
		},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "EUR")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Place_BackorderPolicyAllowsOversell(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 1)
	product.Variants[0].InventoryPolicy = domain.InventoryPolicyContinue
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "orders.events", mock.Anything).Return(nil).Maybe()

	order, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 3}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.NoError(t, err)
	assert.Equal(t, 30.00, order.TotalAmount)
	mockRepo.AssertExpectations(t)
}

func TestService_Place_RepoStockRace(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	product := activeProduct("SKU-1", 10.00, 5)
	mockProducts.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(domain.ErrInsufficientStock)

	_, err := service.Place(context.Background(), PlaceInput{
		UserID:          uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, VariantSKU: "SKU-1", Quantity: 2}},
		DeliveryAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	mockPublisher.AssertNotCalled(t, "Publish")
}

func TestService_GetByOrderID_OwnerAllowed(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	userID := uuid.New()
	order := &domain.Order{OrderID: "ORD-abc", UserID: userID}
	mockRepo.On("GetByOrderID", mock.Anything, "ORD-abc").Return(order, nil)

	got, err := service.GetByOrderID(context.Background(), domain.Identity{UserID: userID, Role: domain.RoleCustomer}, "ORD-abc")

	assert.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestService_GetByOrderID_StrangerForbidden(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	order := &domain.Order{OrderID: "ORD-abc", UserID: uuid.New()}
	mockRepo.On("GetByOrderID", mock.Anything, "ORD-abc").Return(order, nil)

	_, err := service.GetByOrderID(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleCustomer}, "ORD-abc")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_GetByOrderID_ManagerAllowed(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	order := &domain.Order{OrderID: "ORD-abc", UserID: uuid.New()}
	mockRepo.On("GetByOrderID", mock.Anything, "ORD-abc").Return(order, nil)

	got, err := service.GetByOrderID(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleManager}, "ORD-abc")

	assert.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestService_UpdateStatus_IllegalTransition(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	order := &domain.Order{OrderID: "ORD-abc", UserID: uuid.New(), Status: domain.OrderStatusDelivered}
	mockRepo.On("GetByOrderID", mock.Anything, "ORD-abc").Return(order, nil)

	_, err := service.UpdateStatus(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleManager}, "ORD-abc", domain.OrderStatusPending)

	assert.ErrorIs(t, err, domain.ErrConflict)
	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestService_UpdateStatus_CustomerForbidden(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	_, err := service.UpdateStatus(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleCustomer}, "ORD-abc", domain.OrderStatusConfirmed)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockRepo.AssertNotCalled(t, "GetByOrderID")
}

func TestService_UpdateStatus_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	order := &domain.Order{OrderID: "ORD-abc", UserID: uuid.New(), Status: domain.OrderStatusPending}
	mockRepo.On("GetByOrderID", mock.Anything, "ORD-abc").Return(order, nil)
	mockRepo.On("UpdateStatus", mock.Anything, "ORD-abc", domain.OrderStatusConfirmed).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "orders.events", mock.Anything).Return(nil).Maybe()

	updated, err := service.UpdateStatus(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin}, "ORD-abc", domain.OrderStatusConfirmed)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
	mockRepo.AssertExpectations(t)
}

func TestService_DeleteByUser(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockProducts := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := NewService(mockRepo, mockProducts, mockPublisher, log)

	userID := uuid.New()
	mockRepo.On("DeleteByUser", mock.Anything, userID).Return(int64(3), nil)

	deleted, err := service.DeleteByUser(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
