package repository

import (
	"context"
	"errors"
	"fmt"

	"gugarden/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListByUser retrieves the user's cart lines for active products.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
		       p.name, p.slug, p.price, p.sale_price, p.stock, p.thumbnail
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1 AND p.is_active = TRUE
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&item.ProductName, &item.Slug, &item.Price, &item.SalePrice, &item.Stock, &item.Thumbnail,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Add inserts a line or increases the quantity of an existing one.
// Returns ErrProductNotFound when the product is missing or inactive.
func (r *cartRepository) Add(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		SELECT $1, p.id, $3
		FROM products p
		WHERE p.id = $2 AND p.is_active = TRUE
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, quantity, created_at
	`

	item := model.CartItem{UserID: userID, ProductID: productID}
	err := r.pool.QueryRow(ctx, query, userID, productID, quantity).Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Int64("cart_item_id", item.ID).
		Int("quantity", item.Quantity).
		Msg("cart item saved")

	return &item, nil
}

// UpdateQuantity sets the quantity of a line owned by the user.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, itemID, userID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_item_id", itemID).Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a line owned by the user.
func (r *cartRepository) Delete(ctx context.Context, userID uuid.UUID, itemID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_item_id", itemID).Msg("failed to delete cart item")
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Clear removes every line of the user's cart.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ListForCheckout locks and returns the user's lines inside tx, ordered by
// product id so concurrent checkouts take row locks in the same order.
func (r *cartRepository) ListForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CheckoutLine, error) {
	query := `
		SELECT c.product_id, p.name, p.price, p.sale_price, p.stock, c.quantity
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1 AND p.is_active = TRUE
		ORDER BY c.product_id
		FOR UPDATE OF c
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query checkout lines")
		return nil, fmt.Errorf("failed to query checkout lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CheckoutLine
	for rows.Next() {
		var l model.CheckoutLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.SalePrice, &l.Stock, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan checkout line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkout lines: %w", err)
	}

	return lines, nil
}

// ClearTx removes every line of the user's cart inside tx.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
