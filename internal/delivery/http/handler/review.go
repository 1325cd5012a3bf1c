package handler

import (
	"net/http"

	"github.com/lib/pq"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// ReviewRequest represents the request body for creating or updating a review
type ReviewRequest struct {
	Rating int      `json:"rating"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Photos []string `json:"photos"`
	Status string   `json:"status"`
}

// Create handles POST /api/v1/products/:id/reviews
// @Summary Create a review
// @Description Create a review for a product; only published reviews count toward the rating
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param review body ReviewRequest true "Review details"
// @Success 201 {object} map[string]interface{} "Review created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id}/reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req ReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rev := &domain.Review{
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
		Photos:    pq.StringArray(req.Photos),
		Status:    req.Status,
	}

	if err := h.service.Create(r.Context(), identity, rev); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Created(w, rev)
}

// GetByProductID handles GET /api/v1/products/:id/reviews
// @Summary List reviews for a product
// @Description List published reviews, newest first
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of reviews"
// @Router /products/{id}/reviews [get]
func (h *ReviewHandler) GetByProductID(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	limit, offset := request.GetPaginationParams(r)

	reviews, total, err := h.service.GetByProductID(r.Context(), productID, limit, offset)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Paginated(w, reviews, total, limit, offset)
}

// Update handles PUT /api/v1/reviews/:id
// @Summary Update a review
// @Description Update a review; only the author or an admin may edit it
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param review body ReviewRequest true "Updated review details"
// @Success 200 {object} map[string]interface{} "Review updated"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Security BearerAuth
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rev := &domain.Review{
		ID:     id,
		Rating: req.Rating,
		Title:  req.Title,
		Body:   req.Body,
		Photos: pq.StringArray(req.Photos),
		Status: req.Status,
	}

	if err := h.service.Update(r.Context(), identity, rev); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, rev)
}

// Delete handles DELETE /api/v1/reviews/:id
// @Summary Delete a review
// @Description Soft-delete a review; only the author or an admin may delete it
// @Tags Reviews
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Security BearerAuth
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
