package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
	"github.com/Pesokrava/storefront/internal/usecase/checkout"
)

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	service  *cart.Service
	checkout *checkout.Service
	logger   *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *cart.Service, checkoutService *checkout.Service, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		checkout: checkoutService,
		logger:   log,
	}
}

// AddItemRequest represents the request body for adding a cart item
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
}

// UpdateItemRequest represents the request body for changing a cart item quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get handles GET /api/v1/cart
// @Summary Get the current user's cart
// @Description Get cart items with computed totals
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{} "Cart items and totals"
// @Security BearerAuth
// @Router /cart [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, totals, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"items":  items,
		"totals": totals,
	})
}

// AddItem handles POST /api/v1/cart/items
// @Summary Add an item to the cart
// @Description Add a variant to the cart, merging quantities on repeat adds
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "SKU and quantity"
// @Success 201 {object} map[string]interface{} "Cart item"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Variant not found"
// @Security BearerAuth
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AddItemRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.AddItem(r.Context(), identity.UserID, req.ProductID, req.SKU, req.Quantity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Created(w, item)
}

// UpdateItem handles PUT /api/v1/cart/items/:sku
// @Summary Update a cart item quantity
// @Description Set the quantity of a cart item; zero removes it
// @Tags Cart
// @Accept json
// @Produce json
// @Param sku path string true "Variant SKU"
// @Param item body UpdateItemRequest true "New quantity"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 404 {object} map[string]string "Item not in cart"
// @Security BearerAuth
// @Router /cart/items/{sku} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sku := request.GetStringParam(r, "sku")
	if sku == "" {
		response.Error(w, http.StatusBadRequest, "Missing SKU")
		return
	}

	var req UpdateItemRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateItem(r.Context(), identity.UserID, sku, req.Quantity); err != nil {
		handleError(w, h.logger, err)
		return
	}

	items, totals, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"items":  items,
		"totals": totals,
	})
}

// RemoveItem handles DELETE /api/v1/cart/items/:sku
// @Summary Remove an item from the cart
// @Tags Cart
// @Param sku path string true "Variant SKU"
// @Success 204 "Item removed"
// @Failure 404 {object} map[string]string "Item not in cart"
// @Security BearerAuth
// @Router /cart/items/{sku} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sku := request.GetStringParam(r, "sku")
	if sku == "" {
		response.Error(w, http.StatusBadRequest, "Missing SKU")
		return
	}

	if err := h.service.RemoveItem(r.Context(), identity.UserID, sku); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// Clear handles DELETE /api/v1/cart
// @Summary Empty the cart
// @Tags Cart
// @Success 204 "Cart cleared"
// @Security BearerAuth
// @Router /cart [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Clear(r.Context(), identity.UserID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// Quote handles GET /api/v1/cart/quote
// @Summary Quote the cart against the live catalog
// @Description Reprice every cart line against current catalog data and flag unavailable items
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{} "Cart quote"
// @Failure 400 {object} map[string]string "Cart is empty"
// @Security BearerAuth
// @Router /cart/quote [get]
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	quote, err := h.checkout.Quote(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, quote)
}
