package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gugarden/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description,
	p.price, p.sale_price, p.stock, p.thumbnail, p.is_active, p.is_featured,
	p.created_at, p.updated_at
`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.SalePrice, &p.Stock, &p.Thumbnail, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListActive retrieves every active product, newest first.
func (r *productRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.is_active = TRUE
		ORDER BY p.created_at DESC, p.id DESC
	`
	return r.queryProducts(ctx, query)
}

// ListFeatured retrieves up to limit active featured products.
func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.is_active = TRUE AND p.is_featured = TRUE
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`
	return r.queryProducts(ctx, query, limit)
}

// ListByCategorySlug retrieves active products in the category.
func (r *productRepository) ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + productFrom + `
		WHERE c.slug = $1 AND p.is_active = TRUE
		ORDER BY p.created_at DESC, p.id DESC
	`
	return r.queryProducts(ctx, query, slug)
}

// GetActiveByID retrieves an active product with its images.
func (r *productRepository) GetActiveByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := r.getByID(ctx, id, true)
	if err != nil || p == nil {
		return p, err
	}

	images, err := r.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images

	return p, nil
}

// GetByID retrieves a product regardless of its active flag.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.getByID(ctx, id, false)
}

func (r *productRepository) getByID(ctx context.Context, id int64, activeOnly bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1`
	if activeOnly {
		query += ` AND p.is_active = TRUE`
	}

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

func (r *productRepository) listImages(ctx context.Context, productID int64) ([]model.ProductImage, error) {
	query := `
		SELECT id, product_id, image_url, sort_order
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to query product images")
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := []model.ProductImage{}
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

// ListCategories retrieves all categories with product counts.
func (r *productRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.sort_order, c.created_at,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count
		FROM categories c
		ORDER BY c.sort_order, c.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		var count int
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ProductCount = &count
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// AdminList retrieves a filtered page of products and the total match count.
func (r *productRepository) AdminList(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	var conds []string
	var args []any

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+productFrom+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := filter.Page
	args = append(args, page.Size, page.Offset())
	query := `SELECT ` + productColumns + productFrom + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListAll retrieves every product for export.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` ORDER BY p.id`
	return r.queryProducts(ctx, query)
}

// Create inserts a product and fills its generated fields.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (category_id, name, slug, description, price, sale_price,
		                      stock, thumbnail, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.SalePrice,
		p.Stock, p.Thumbnail, p.IsActive, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return r.mapWriteError(err, "create", p)
	}

	r.logger.Info().Int64("product_id", p.ID).Str("slug", p.Slug).Msg("product created")

	return nil
}

// Update writes the mutable columns of p. Checkouts and cancellations adjust
// stock concurrently, so the column is left alone unless setStock is true.
func (r *productRepository) Update(ctx context.Context, p *model.Product, setStock bool) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, slug = $4, description = $5, price = $6,
		    sale_price = $7, stock = CASE WHEN $12 THEN $8 ELSE stock END,
		    thumbnail = $9, is_active = $10, is_featured = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING stock, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price,
		p.SalePrice, p.Stock, p.Thumbnail, p.IsActive, p.IsFeatured, setStock,
	).Scan(&p.Stock, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		return r.mapWriteError(err, "update", p)
	}

	return nil
}

func (r *productRepository) mapWriteError(err error, op string, p *model.Product) error {
	switch {
	case isUniqueViolation(err, "products_slug_key"):
		return model.ErrSlugTaken
	case isForeignKeyViolation(err):
		return model.ErrCategoryNotFound
	}

	r.logger.Error().Err(err).Str("slug", p.Slug).Msgf("failed to %s product", op)
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// Delete deactivates a product referenced by any order item and removes it otherwise.
func (r *productRepository) Delete(ctx context.Context, id int64) (result *model.DeleteResult, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Lock the row so a concurrent checkout cannot reference it mid-delete.
	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = model.ErrProductNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	var referenced bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return nil, fmt.Errorf("failed to check product references: %w", err)
	}

	if referenced {
		_, err = tx.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product delete: %w", err)
	}

	r.logger.Info().
		Int64("product_id", id).
		Bool("soft_deleted", referenced).
		Msg("product deleted")

	return &model.DeleteResult{ProductID: id, SoftDeleted: referenced}, nil
}

// DecrementStock reserves quantity units inside tx.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var name string
	var available int
	err = tx.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1`, productID).Scan(&name, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		return fmt.Errorf("failed to read stock: %w", err)
	}

	r.logger.Warn().
		Int64("product_id", productID).
		Int("requested", quantity).
		Int("available", available).
		Msg("insufficient stock")

	return model.NewInsufficientStockError(name, available)
}

// IncrementStock returns quantity units inside tx.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	_, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to increment stock")
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}
