package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
	"github.com/Pesokrava/storefront/internal/usecase/invoice"
	"github.com/Pesokrava/storefront/internal/usecase/order"
)

// MockOrderRepository is a mock implementation of domain.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, ord *domain.Order) error {
	args := m.Called(ctx, ord)
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

// MockInvoiceRepository is a mock implementation of domain.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

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

// MockEventPublisher is a mock implementation of order.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type orderHandlerMocks struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	invoices  *MockInvoiceRepository
	cartItems *MockCartRepository
	publisher *MockEventPublisher
}

func newOrderHandler() (*OrderHandler, *orderHandlerMocks) {
	mocks := &orderHandlerMocks{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		invoices:  new(MockInvoiceRepository),
		cartItems: new(MockCartRepository),
		publisher: new(MockEventPublisher),
	}
	log := logger.New("test")
	orderService := order.NewService(mocks.orders, mocks.products, mocks.publisher, log)
	invoiceService := invoice.NewService(mocks.invoices, mocks.orders, 0.10, 5.00, log)
	cartService := cart.NewService(mocks.cartItems, mocks.products, log)
	return NewOrderHandler(orderService, invoiceService, cartService, log), mocks
}

func asUser(req *http.Request, userID uuid.UUID, role string) *http.Request {
	identity := domain.Identity{UserID: userID, Role: role}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func deliveryAddress() domain.Address {
	return domain.Address{
		FullName:   "Jamie Doe",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func orderableProduct(productID uuid.UUID, sku string, qty int) *domain.Product {
	return &domain.Product{
		ID:       productID,
		Name:     "Espresso Machine",
		Slug:     "espresso-machine",
		IsActive: true,
		Variants: []*domain.Variant{
			{
				ProductID:       productID,
				SKU:             sku,
				Price:           249.99,
				Currency:        "USD",
				Quantity:        qty,
				InventoryPolicy: domain.InventoryPolicyDeny,
				IsActive:        true,
			},
		},
	}
}

func TestOrderHandler_Place_Success(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	productID := uuid.New()

	requestBody := PlaceOrderRequest{
		Products: []order.ItemInput{
			{ProductID: productID, VariantSKU: "ESP-STD", Quantity: 2},
		},
		DeliveryAddress: deliveryAddress(),
		PaymentMethod:   "cod",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.products.On("GetByID", mock.Anything, productID).Return(orderableProduct(productID, "ESP-STD", 10), nil)
	mocks.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.UserID == userID && o.Status == domain.OrderStatusPending && len(o.Items) == 1
	})).Return(nil)
	mocks.cartItems.On("Clear", mock.Anything, userID).Return(nil)
	mocks.publisher.On("Publish", mock.Anything, "orders.events", mock.Anything).Return(nil).Maybe()

	handler.Place(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mocks.orders.AssertExpectations(t)
	mocks.cartItems.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Contains(t, data["order_id"], "ORD-")
}

func TestOrderHandler_Place_Unauthenticated(t *testing.T) {
	handler, mocks := newOrderHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()

	handler.Place(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mocks.orders.AssertNotCalled(t, "Create")
}

func TestOrderHandler_Place_InsufficientStock(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	productID := uuid.New()

	requestBody := PlaceOrderRequest{
		Products: []order.ItemInput{
			{ProductID: productID, VariantSKU: "ESP-STD", Quantity: 5},
		},
		DeliveryAddress: deliveryAddress(),
		PaymentMethod:   "cod",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.products.On("GetByID", mock.Anything, productID).Return(orderableProduct(productID, "ESP-STD", 1), nil)

	handler.Place(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mocks.orders.AssertNotCalled(t, "Create")
	mocks.cartItems.AssertNotCalled(t, "Clear")
}

func TestOrderHandler_List_Empty(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.orders.On("ListByUser", mock.Anything, userID).Return([]*domain.Order{}, nil)

	handler.List(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "No orders found")
}

func TestOrderHandler_Get_StrangerForbidden(t *testing.T) {
	handler, mocks := newOrderHandler()

	owner := uuid.New()
	stranger := uuid.New()
	orderID := "ORD-" + uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	req = withURLParam(req, "orderID", orderID)
	req = asUser(req, stranger, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.orders.On("GetByOrderID", mock.Anything, orderID).Return(&domain.Order{
		OrderID: orderID,
		UserID:  owner,
		Status:  domain.OrderStatusPending,
	}, nil)

	handler.Get(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderHandler_UpdateStatus_IllegalTransition(t *testing.T) {
	handler, mocks := newOrderHandler()

	orderID := "ORD-" + uuid.NewString()

	requestBody := UpdateStatusRequest{Status: domain.OrderStatusPending}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+orderID+"/status", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "orderID", orderID)
	req = asUser(req, uuid.New(), domain.RoleManager)
	w := httptest.NewRecorder()

	mocks.orders.On("GetByOrderID", mock.Anything, orderID).Return(&domain.Order{
		OrderID: orderID,
		UserID:  uuid.New(),
		Status:  domain.OrderStatusDelivered,
	}, nil)

	handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mocks.orders.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderHandler_Invoice_Created(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	orderID := "ORD-" + uuid.NewString()

	requestBody := IssueInvoiceRequest{OrderID: orderID}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/invoice", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.orders.On("GetByOrderID", mock.Anything, orderID).Return(&domain.Order{
		OrderID:         orderID,
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		TotalAmount:     100.00,
		Currency:        "USD",
		PaymentMethod:   "cod",
		DeliveryAddress: deliveryAddress(),
	}, nil)
	mocks.invoices.On("GetByOrderID", mock.Anything, orderID).Return(nil, domain.ErrNotFound)
	mocks.invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.OrderID == orderID && inv.TotalAmount == 115.00
	})).Return(nil)

	handler.Invoice(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mocks.invoices.AssertExpectations(t)
}

func TestOrderHandler_Invoice_AlreadyIssued(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	orderID := "ORD-" + uuid.NewString()

	requestBody := IssueInvoiceRequest{OrderID: orderID}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/invoice", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.orders.On("GetByOrderID", mock.Anything, orderID).Return(&domain.Order{
		OrderID:       orderID,
		UserID:        userID,
		Status:        domain.OrderStatusPending,
		TotalAmount:   100.00,
		Currency:      "USD",
		PaymentMethod: "cod",
	}, nil)
	mocks.invoices.On("GetByOrderID", mock.Anything, orderID).Return(&domain.Invoice{
		OrderID:       orderID,
		InvoiceNumber: "INV-000042",
	}, nil)

	handler.Invoice(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.invoices.AssertNotCalled(t, "Create")
}

func TestOrderHandler_DeleteAll(t *testing.T) {
	handler, mocks := newOrderHandler()

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders", nil)
	req = asUser(req, userID, domain.RoleCustomer)
	w := httptest.NewRecorder()

	mocks.orders.On("DeleteByUser", mock.Anything, userID).Return(int64(2), nil)

	handler.DeleteAll(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(2), data["deleted"])
}
