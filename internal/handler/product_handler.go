package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gugarden/internal/model"
	"gugarden/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductListResponse wraps storefront product listings.
type ProductListResponse struct {
	Products []model.Product `json:"products"`
}

// ProductPageResponse wraps a paged admin product listing.
type ProductPageResponse struct {
	Products   []model.Product  `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Product *model.Product `json:"product"`
}

// CategoryListResponse wraps the category list.
type CategoryListResponse struct {
	Categories []model.Category `json:"categories"`
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products and GET /api/products/category/{slug}.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// Featured handles GET /api/products/featured.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListFeatured(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id", model.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{Product: product})
}

// Categories handles GET /api/categories and GET /api/admin/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: categories})
}

// AdminList handles GET /api/admin/products.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := model.ProductFilter{
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		CategorySlug: r.URL.Query().Get("category"),
		Page:         pageFromQuery(r),
	}

	products, pagination, err := h.service.AdminList(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductPageResponse{Products: products, Pagination: pagination})
}

// Create handles POST /api/admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ProductResponse{Product: product})
}

// Update handles PUT /api/admin/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id", model.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ProductUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{Product: product})
}

// Delete handles DELETE /api/admin/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id", model.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Export handles GET /api/admin/products/export. The workbook is built in
// memory first so a failure can still be reported as JSON.
func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn().Err(err).Msg("failed to stream export")
	}
}
