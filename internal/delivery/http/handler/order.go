package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
	"github.com/Pesokrava/storefront/internal/usecase/invoice"
	"github.com/Pesokrava/storefront/internal/usecase/order"
)

// OrderHandler handles HTTP requests for orders and invoices
type OrderHandler struct {
	service     *order.Service
	invoices    *invoice.Service
	cartService *cart.Service
	logger      *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	service *order.Service,
	invoiceService *invoice.Service,
	cartService *cart.Service,
	log *logger.Logger,
) *OrderHandler {
	return &OrderHandler{
		service:     service,
		invoices:    invoiceService,
		cartService: cartService,
		logger:      log,
	}
}

// PlaceOrderRequest represents the request body for placing an order
type PlaceOrderRequest struct {
	Products        []order.ItemInput `json:"products"`
	DeliveryAddress domain.Address    `json:"delivery_address"`
	PaymentMethod   string            `json:"payment_method"`
}

// UpdateStatusRequest represents the request body for an order status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// IssueInvoiceRequest represents the request body for issuing an invoice
type IssueInvoiceRequest struct {
	OrderID string `json:"order_id"`
}

// Place handles POST /api/v1/orders
// @Summary Place an order
// @Description Place an order; inventory is decremented atomically and the cart is cleared on success
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Order lines, delivery address and payment method"
// @Success 201 {object} map[string]interface{} "Order placed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product or variant not found"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PlaceOrderRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	placed, err := h.service.Place(r.Context(), order.PlaceInput{
		UserID:          identity.UserID,
		Items:           req.Products,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	// Best-effort cart cleanup once the order is committed
	if err := h.cartService.Clear(r.Context(), identity.UserID); err != nil {
		h.logger.Error("Failed to clear cart after order placement", err)
	}

	response.Created(w, map[string]interface{}{
		"order_id": placed.OrderID,
	})
}

// List handles GET /api/v1/orders
// @Summary List the current user's orders
// @Tags Orders
// @Produce json
// @Success 200 {object} map[string]interface{} "Orders"
// @Failure 404 {object} map[string]string "No orders found"
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if len(orders) == 0 {
		response.Error(w, http.StatusNotFound, "No orders found")
		return
	}

	response.Success(w, orders)
}

// Get handles GET /api/v1/orders/:orderID
// @Summary Get an order
// @Description Get a single order; customers only see their own
// @Tags Orders
// @Produce json
// @Param orderID path string true "Public order ID (ORD-...)"
// @Success 200 {object} map[string]interface{} "Order details"
// @Failure 403 {object} map[string]string "Order belongs to another user"
// @Failure 404 {object} map[string]string "Order not found"
// @Security BearerAuth
// @Router /orders/{orderID} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := request.GetStringParam(r, "orderID")
	result, err := h.service.GetByOrderID(r.Context(), identity, orderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, result)
}

// DeleteAll handles DELETE /api/v1/orders
// @Summary Delete all of the current user's orders
// @Description Remove the user's order history; issued invoices are retained
// @Tags Orders
// @Produce json
// @Success 200 {object} map[string]interface{} "Number of orders deleted"
// @Security BearerAuth
// @Router /orders [delete]
func (h *OrderHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deleted, err := h.service.DeleteByUser(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"deleted": deleted,
	})
}

// UpdateStatus handles PUT /api/v1/orders/:orderID/status
// @Summary Update an order's status
// @Description Advance an order through its lifecycle; restricted to managers and admins
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Public order ID (ORD-...)"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "Updated order"
// @Failure 403 {object} map[string]string "Insufficient role"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Security BearerAuth
// @Router /orders/{orderID}/status [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := request.GetStringParam(r, "orderID")

	var req UpdateStatusRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), identity, orderID, req.Status)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, updated)
}

// Invoice handles POST /api/v1/orders/invoice
// @Summary Issue an invoice for an order
// @Description Issue an invoice, or return the existing one when the order was already invoiced
// @Tags Orders
// @Accept json
// @Produce json
// @Param invoice body IssueInvoiceRequest true "Public order ID"
// @Success 200 {object} map[string]interface{} "Existing invoice"
// @Success 201 {object} map[string]interface{} "Invoice issued"
// @Failure 400 {object} map[string]string "Invalid order ID"
// @Failure 403 {object} map[string]string "Order belongs to another user"
// @Failure 404 {object} map[string]string "Order not found"
// @Security BearerAuth
// @Router /orders/invoice [post]
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req IssueInvoiceRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, created, err := h.invoices.Issue(r.Context(), identity, req.OrderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if created {
		response.Created(w, inv)
		return
	}
	response.Success(w, inv)
}
