package handlers

import (
	"context"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/api/validation"
	"github.com/cartwise/recommender/internal/models"
)

// CatalogService defines the interface for product index management.
type CatalogService interface {
	UpsertProducts(ctx context.Context, reqs []models.UpsertProductRequest) (int, error)
	DeleteProduct(ctx context.Context, id string) error
	CollectionInfo(ctx context.Context) (*models.CollectionInfo, error)
}

// ProductsHandler handles HTTP requests for the product catalog
type ProductsHandler struct {
	service CatalogService
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(service CatalogService) *ProductsHandler {
	return &ProductsHandler{service: service}
}

// upsertProductsRequest is the body for batch product indexing.
type upsertProductsRequest struct {
	Products []models.UpsertProductRequest `json:"products" validate:"required,min=1,max=100,dive"`
}

// upsertProductsResponse reports how many products were indexed.
type upsertProductsResponse struct {
	Indexed int `json:"indexed"`
}

// Upsert handles POST /v1/products
// @Summary Index a batch of products
// @Description Embeds and upserts up to 100 products into the vector collection
// @Tags Products
// @Accept json
// @Produce json
// @Param request body upsertProductsRequest true "Products to index"
// @Success 200 {object} upsertProductsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 503 {object} ProblemDetails "Embedding provider unavailable"
// @Security BearerAuth
// @Router /v1/products [post]
func (h *ProductsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertProductsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	count, err := h.service.UpsertProducts(r.Context(), req.Products)
	if err != nil {
		response.RespondFromError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, upsertProductsResponse{Indexed: count})
}

// Delete handles DELETE /v1/products/{id}
// @Summary Delete a product from the index
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Product not found"
// @Security BearerAuth
// @Router /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.RespondBadRequest(w, "Product ID is required")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		response.RespondFromError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Collection handles GET /v1/products/collection
// @Summary Get collection info
// @Description Reports the product count and status of the vector collection
// @Tags Products
// @Produce json
// @Success 200 {object} CollectionInfo
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 503 {object} ProblemDetails "Vector store unavailable"
// @Security BearerAuth
// @Router /v1/products/collection [get]
func (h *ProductsHandler) Collection(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CollectionInfo(r.Context())
	if err != nil {
		response.RespondFromError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}
