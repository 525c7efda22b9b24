package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gugarden/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	o.id, o.order_number, o.user_id, o.total_amount, o.shipping_fee, o.status,
	o.recipient_name, o.recipient_phone, o.recipient_address, o.recipient_address_detail,
	o.recipient_zipcode, o.memo, o.payment_method, o.payment_key, o.paid_at,
	o.cancelled_at, o.created_at, o.updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func orderFields(o *model.Order) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.ShippingFee, &o.Status,
		&o.RecipientName, &o.RecipientPhone, &o.RecipientAddress, &o.RecipientAddressDetail,
		&o.RecipientZipcode, &o.Memo, &o.PaymentMethod, &o.PaymentKey, &o.PaidAt,
		&o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, total_amount, shipping_fee, status,
		                    recipient_name, recipient_phone, recipient_address,
		                    recipient_address_detail, recipient_zipcode, memo, payment_method,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	// The insert runs under a savepoint so a number clash does not abort tx.
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	_, err = sp.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.TotalAmount, order.ShippingFee, order.Status,
		order.RecipientName, order.RecipientPhone, order.RecipientAddress,
		order.RecipientAddressDetail, order.RecipientZipcode, order.Memo, order.PaymentMethod,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("failed to rollback savepoint")
		}
		if isUniqueViolation(err, "orders_order_number_key") {
			r.logger.Warn().Str("order_number", order.OrderNumber).Msg("order number collision")
			return model.ErrDuplicateOrderNumber
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_name", items[i].ProductName).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(orderFields(&order)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

// GetForUpdate retrieves and row-locks an order inside tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`

	var order model.Order
	err := tx.QueryRow(ctx, query, id).Scan(orderFields(&order)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &order, nil
}

const orderItemsQuery = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.product_name, oi.product_price, oi.quantity, p.thumbnail
	FROM order_items oi
	LEFT JOIN products p ON oi.product_id = p.id
	WHERE oi.order_id = $1
	ORDER BY oi.product_id NULLS LAST, oi.id
`

// GetItems retrieves an order's items with current product thumbnails.
func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx, orderItemsQuery, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	return r.collectItems(rows)
}

// GetItemsTx retrieves an order's items inside tx.
func (r *orderRepository) GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := tx.Query(ctx, orderItemsQuery, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	return r.collectItems(rows)
}

func (r *orderRepository) collectItems(rows pgx.Rows) ([]model.OrderItem, error) {
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductPrice, &item.Quantity, &item.Thumbnail)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// ListByUser retrieves the user's orders, newest first, with item counts.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error) {
	query := `
		SELECT ` + orderColumns + `,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.OrderSummary{}
	for rows.Next() {
		var s model.OrderSummary
		if err := rows.Scan(append(orderFields(&s.Order), &s.ItemCount)...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListRecentByUser retrieves at most limit of the user's newest orders.
func (r *orderRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query recent orders")
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(orderFields(&o)...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// List retrieves a filtered page of all orders with customer details.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, int, error) {
	where := ""
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = " WHERE o.status = $1"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, filter.Page.Size, filter.Page.Offset())
	query := `
		SELECT ` + orderColumns + `,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
		       u.name, u.email
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id` + where +
		fmt.Sprintf(` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.OrderSummary{}
	for rows.Next() {
		var s model.OrderSummary
		if err := rows.Scan(append(orderFields(&s.Order), &s.ItemCount, &s.UserName, &s.UserEmail)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus writes a new status inside tx.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// MarkPaid moves a pending order to paid inside tx.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentKey string, paidAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'paid', payment_key = COALESCE(NULLIF($2, ''), payment_key),
		    paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, paymentKey, paidAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotPending
	}
	return nil
}

// MarkCancelled moves an order to cancelled inside tx.
func (r *orderRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, cancelledAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled'
	`, id, cancelledAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to cancel order")
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotCancellable
	}
	return nil
}

// SetPaymentKey records the provider reference issued at payment preparation.
func (r *orderRepository) SetPaymentKey(ctx context.Context, id uuid.UUID, paymentKey string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE orders SET payment_key = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, paymentKey)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store payment key")
		return fmt.Errorf("failed to store payment key: %w", err)
	}
	return nil
}

// revenueStatuses are the statuses whose totals count as captured revenue.
const revenueStatuses = `('paid', 'preparing', 'shipped', 'delivered')`

func (r *orderRepository) Stats(ctx context.Context, dayStart time.Time) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE status <> 'cancelled'),
			(SELECT COUNT(*) FROM orders WHERE status <> 'cancelled' AND created_at >= $1),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN ` + revenueStatuses + `),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN ` + revenueStatuses + ` AND created_at >= $1),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM products WHERE is_active),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending')
	`

	var s model.DashboardStats
	err := r.pool.QueryRow(ctx, query, dayStart).Scan(
		&s.TotalOrders,
		&s.TodayOrders,
		&s.TotalRevenue,
		&s.TodayRevenue,
		&s.TotalUsers,
		&s.TotalProducts,
		&s.PendingOrders,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to compute dashboard stats")
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	return &s, nil
}
