package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/catalog"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *catalog.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// VariantRequest represents one variant in a product payload
type VariantRequest struct {
	SKU             string  `json:"sku"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	Quantity        int     `json:"quantity"`
	InventoryPolicy string  `json:"inventory_policy"`
	IsActive        *bool   `json:"is_active"`
	Position        int     `json:"position"`
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	Description *string               `json:"description,omitempty"`
	Categories  []string              `json:"categories"`
	Tags        []string              `json:"tags"`
	Images      []domain.ProductImage `json:"images"`
	Variants    []VariantRequest      `json:"variants"`
	IsActive    *bool                 `json:"is_active"`
}

func (req *ProductRequest) toDomain() *domain.Product {
	product := &domain.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Categories:  pq.StringArray(req.Categories),
		Tags:        pq.StringArray(req.Tags),
		Images:      domain.ProductImages(req.Images),
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	for _, v := range req.Variants {
		variant := &domain.Variant{
			SKU:             v.SKU,
			Price:           v.Price,
			Currency:        v.Currency,
			Quantity:        v.Quantity,
			InventoryPolicy: v.InventoryPolicy,
			IsActive:        true,
			Position:        v.Position,
		}
		if v.IsActive != nil {
			variant.IsActive = *v.IsActive
		}
		product.Variants = append(product.Variants, variant)
	}

	return product
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create a product with its variants; the slug is derived from the name when absent
// @Tags Products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "SKU or slug already taken"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := req.toDomain()
	if err := h.service.Create(r.Context(), product); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Created(w, product)
}

// GetByID handles GET /api/v1/products/:id, accepting a UUID or a slug
// @Summary Get a product
// @Description Get a product with variants and rating summary, by UUID or slug
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID) or slug"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")

	var (
		product *domain.Product
		err     error
	)
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		product, err = h.service.GetByID(r.Context(), id)
	} else {
		product, err = h.service.GetBySlug(r.Context(), param)
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, product)
}

// List handles GET /api/v1/products
// @Summary List products
// @Tags Products
// @Produce json
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)

	products, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Paginated(w, products, total, limit, offset)
}

// Update handles PUT /api/v1/products/:id
// @Summary Update a product
// @Description Update product details and variants; version conflicts are retried server-side
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body ProductRequest true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "SKU collision or repeated version conflicts"
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Version field required for optimistic locking but not provided in update request
	existing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	product := req.toDomain()
	product.ID = id
	product.Version = existing.Version

	if err := h.service.Update(r.Context(), product); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Soft-delete a product and all its reviews
// @Tags Products
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted successfully"
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
