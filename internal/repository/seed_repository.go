package repository

import (
	"context"
	"fmt"

	"gugarden/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// seedRepository implements the SeedRepository interface using PostgreSQL.
// Every upsert is keyed by a natural key so seeding can be re-run.
type seedRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSeedRepository creates a new PostgreSQL-backed seed repository.
func NewSeedRepository(pool *pgxpool.Pool, logger zerolog.Logger) SeedRepository {
	return &seedRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "seed").Logger(),
	}
}

func (r *seedRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *seedRepository) UpsertCategory(ctx context.Context, tx pgx.Tx, c *model.Category) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, sort_order = EXCLUDED.sort_order
		RETURNING id
	`, c.Name, c.Slug, c.Description, c.SortOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert category %s: %w", c.Slug, err)
	}
	return id, nil
}

func (r *seedRepository) UpsertProduct(ctx context.Context, tx pgx.Tx, p *model.Product) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO products (category_id, name, slug, description, price, sale_price,
		                      stock, thumbnail, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE
		SET category_id = EXCLUDED.category_id, name = EXCLUDED.name,
		    description = EXCLUDED.description, price = EXCLUDED.price,
		    sale_price = EXCLUDED.sale_price, stock = EXCLUDED.stock,
		    thumbnail = EXCLUDED.thumbnail, is_active = EXCLUDED.is_active,
		    is_featured = EXCLUDED.is_featured, updated_at = NOW()
		RETURNING id
	`, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.SalePrice,
		p.Stock, p.Thumbnail, p.IsActive, p.IsFeatured).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product %s: %w", p.Slug, err)
	}
	return id, nil
}

func (r *seedRepository) ReplaceProductImages(ctx context.Context, tx pgx.Tx, productID int64, images []model.ProductImage) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, img := range images {
		batch.Queue(`INSERT INTO product_images (product_id, image_url, sort_order) VALUES ($1, $2, $3)`,
			productID, img.ImageURL, img.SortOrder)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range images {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}

	return nil
}

func (r *seedRepository) UpsertUser(ctx context.Context, tx pgx.Tx, u *model.User) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO users (email, password, name, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET password = EXCLUDED.password, name = EXCLUDED.name,
		    phone = EXCLUDED.phone, role = EXCLUDED.role, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
	}

	r.logger.Debug().Str("email", u.Email).Msg("user seeded")

	return nil
}
