package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/wishlist"
)

// WishlistHandler handles HTTP requests for wishlists
type WishlistHandler struct {
	service *wishlist.Service
	logger  *logger.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(service *wishlist.Service, log *logger.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  log,
	}
}

// AddWishlistRequest represents the request body for adding a wishlist item
type AddWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

// List handles GET /api/v1/wishlist
// @Summary List the current user's wishlist
// @Tags Wishlist
// @Produce json
// @Success 200 {object} map[string]interface{} "Wishlist items"
// @Security BearerAuth
// @Router /wishlist [get]
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, items)
}

// Add handles POST /api/v1/wishlist
// @Summary Add a product to the wishlist
// @Tags Wishlist
// @Accept json
// @Produce json
// @Param item body AddWishlistRequest true "Product ID"
// @Success 201 {object} map[string]interface{} "Wishlist item"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Product already wishlisted"
// @Security BearerAuth
// @Router /wishlist [post]
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AddWishlistRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.Add(r.Context(), identity.UserID, req.ProductID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Created(w, item)
}

// Remove handles DELETE /api/v1/wishlist/:productID
// @Summary Remove a product from the wishlist
// @Tags Wishlist
// @Param productID path string true "Product ID (UUID)"
// @Success 204 "Item removed"
// @Failure 404 {object} map[string]string "Product not in wishlist"
// @Security BearerAuth
// @Router /wishlist/{productID} [delete]
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID, err := request.GetUUIDParam(r, "productID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Remove(r.Context(), identity.UserID, productID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
