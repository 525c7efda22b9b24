package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gugarden/internal/cache"
	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// FeaturedLimit caps the storefront's featured product list.
const FeaturedLimit = 8

const exportTimeLayout = "2006-01-02 15:04:05"

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.ProductCache
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, productCache cache.ProductCache, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves active products, optionally limited to one category.
func (s *productService) List(ctx context.Context, categorySlug string) ([]model.Product, error) {
	var (
		products []model.Product
		err      error
	)
	if categorySlug != "" {
		products, err = s.productRepo.ListByCategorySlug(ctx, categorySlug)
	} else {
		products, err = s.productRepo.ListActive(ctx)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("category", categorySlug).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("category", categorySlug).
		Msg("retrieved products")

	return products, nil
}

func (s *productService) ListFeatured(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list featured products")
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single active product, serving from the cache when possible.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	if product, ok := s.cache.Get(ctx, id); ok {
		return product, nil
	}

	product, err := s.productRepo.GetActiveByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	s.cache.Set(ctx, product)
	return product, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// AdminList retrieves a filtered page of products, active or not.
func (s *productService) AdminList(ctx context.Context, filter model.ProductFilter) ([]model.Product, model.Pagination, error) {
	products, total, err := s.productRepo.AdminList(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, model.Pagination{}, fmt.Errorf("failed to get products: %w", err)
	}
	return products, model.NewPagination(filter.Page, total), nil
}

// Create validates and inserts a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	product := &model.Product{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Thumbnail:   req.Thumbnail,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if req.SalePrice != nil {
		product.SalePrice = decimal.NewNullDecimal(*req.SalePrice)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Warn().Err(err).Str("slug", product.Slug).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Int64("product_id", product.ID).Str("slug", product.Slug).Msg("product created")
	return product, nil
}

// Update applies the non-nil fields of req to an existing product.
func (s *productService) Update(ctx context.Context, id int64, req *model.ProductUpdateRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	applyProductUpdate(product, req)

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product, req.Stock != nil); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return product, nil
}

// Delete removes a product. Products referenced by past orders are only
// deactivated so order history keeps its links.
func (s *productService) Delete(ctx context.Context, id int64) (*model.DeleteResult, error) {
	result, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info().
		Int64("product_id", id).
		Bool("soft_deleted", result.SoftDeleted).
		Msg("product deleted")

	return result, nil
}

// Export writes every product to w as a single-sheet xlsx workbook.
func (s *productService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products for export")
		return fmt.Errorf("failed to get products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Category", "Name", "Slug", "Price", "SalePrice",
		"Stock", "Active", "Featured", "CreatedAt", "UpdatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(derefString(p.CategoryName))
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Price.String())
		if p.SalePrice.Valid {
			row.AddCell().SetValue(p.SalePrice.Decimal.String())
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.IsActive)
		row.AddCell().SetValue(p.IsFeatured)
		row.AddCell().SetValue(p.CreatedAt.Format(exportTimeLayout))
		row.AddCell().SetValue(p.UpdatedAt.Format(exportTimeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info().Int("count", len(products)).Msg("products exported")
	return nil
}

func applyProductUpdate(p *model.Product, req *model.ProductUpdateRequest) {
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		p.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	switch {
	case req.ClearSalePrice:
		p.SalePrice = decimal.NullDecimal{}
	case req.SalePrice != nil:
		p.SalePrice = decimal.NewNullDecimal(*req.SalePrice)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Thumbnail != nil {
		p.Thumbnail = req.Thumbnail
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
}

func validateProduct(p *model.Product) error {
	if p.Name == "" {
		return model.NewMissingFieldError("name")
	}
	if p.Slug == "" {
		return model.NewMissingFieldError("slug")
	}
	if p.Price.IsNegative() {
		return model.NewInvalidFieldError("price", "must not be negative")
	}
	if p.SalePrice.Valid && (p.SalePrice.Decimal.IsNegative() || p.SalePrice.Decimal.GreaterThan(p.Price)) {
		return model.NewInvalidFieldError("salePrice", "must be between 0 and price")
	}
	if p.Stock < 0 {
		return model.NewInvalidFieldError("stock", "must not be negative")
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
