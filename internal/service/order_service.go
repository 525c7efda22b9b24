package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gugarden/internal/cache"
	"gugarden/internal/events"
	"gugarden/internal/model"
	"gugarden/internal/payment"
	"gugarden/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const defaultPaymentMethod = "naverpay"

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	cache       cache.ProductCache
	canceller   *orderCanceller
	orderNumber func(time.Time) string
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	productCache cache.ProductCache,
	paymentTimeout time.Duration,
	logger zerolog.Logger,
) OrderService {
	logger = logger.With().Str("service", "order").Logger()
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		publisher:   publisher,
		cache:       productCache,
		canceller: &orderCanceller{
			orderRepo:   orderRepo,
			productRepo: productRepo,
			gateway:     gateway,
			publisher:   publisher,
			cache:       productCache,
			timeout:     paymentTimeout,
			logger:      logger,
		},
		orderNumber: NewOrderNumber,
		logger:      logger,
	}
}

// CreateOrder converts the caller's cart into a pending order in one
// transaction: order row, item snapshots, stock decrements and cart removal.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (_ *model.OrderCreated, err error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	lines, err := s.cartRepo.ListForCheckout(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	for _, l := range lines {
		if l.Quantity > l.Stock {
			s.logger.Warn().
				Int64("product_id", l.ProductID).
				Int("requested", l.Quantity).
				Int("available", l.Stock).
				Msg("insufficient stock at checkout")
			err = model.NewInsufficientStockError(l.Name, l.Stock)
			return nil, err
		}
	}

	quote := QuoteLines(lines)
	now := time.Now()
	order := &model.Order{
		ID:                     uuid.New(),
		UserID:                 userID,
		TotalAmount:            quote.Total,
		ShippingFee:            quote.ShippingFee,
		Status:                 model.StatusPending,
		RecipientName:          strings.TrimSpace(req.RecipientName),
		RecipientPhone:         strings.TrimSpace(req.RecipientPhone),
		RecipientAddress:       strings.TrimSpace(req.RecipientAddress),
		RecipientAddressDetail: req.RecipientAddressDetail,
		RecipientZipcode:       req.RecipientZipcode,
		Memo:                   req.Memo,
		PaymentMethod:          req.PaymentMethod,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = defaultPaymentMethod
	}

	if err = s.insertWithUniqueNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(lines))
	productIDs := make([]int64, len(lines))
	for i, l := range lines {
		productID := l.ProductID
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    &productID,
			ProductName:  l.Name,
			ProductPrice: l.UnitPrice(),
			Quantity:     l.Quantity,
		}
		productIDs[i] = productID
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Lines arrive in product id order, so concurrent checkouts lock
	// product rows in the same sequence.
	for _, l := range lines {
		if err = s.productRepo.DecrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
			return nil, err
		}
	}

	if err = s.cartRepo.ClearTx(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(items)).
		Str("total", order.TotalAmount.String()).
		Msg("order created successfully")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, order, ""))
	s.cache.Invalidate(ctx, productIDs...)

	return &model.OrderCreated{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
	}, nil
}

// insertWithUniqueNumber inserts order, drawing a fresh order number
// whenever the previous one is already taken.
func (s *orderService) insertWithUniqueNumber(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumber(order.CreatedAt)

		err := s.orderRepo.CreateOrder(ctx, tx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrDuplicateOrderNumber) {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
			return fmt.Errorf("failed to create order: %w", err)
		}

		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Int("attempt", attempt).
			Msg("order number collision, regenerating")
	}

	return fmt.Errorf("failed to allocate a unique order number after %d attempts", maxOrderNumberAttempts)
}

// ListByUser retrieves the caller's orders.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves one of the caller's orders. Orders owned by someone
// else are reported as not found.
func (s *orderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetail, error) {
	detail, err := s.loadDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if detail.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return detail, nil
}

func (s *orderService) loadDetail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	return &model.OrderDetail{Order: *order, Items: items}, nil
}

// Cancel cancels one of the caller's pending or paid orders.
func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	return s.canceller.cancel(ctx, orderID, func(o *model.Order) error {
		if o.UserID != userID {
			return model.ErrOrderNotFound
		}
		if !o.Status.CustomerCancellable() {
			return model.ErrNotCancellable
		}
		return nil
	}, "")
}

// AdminList retrieves a filtered page of all orders.
func (s *orderService) AdminList(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, model.Pagination, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, model.Pagination{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, model.NewPagination(filter.Page, total), nil
}

// AdminGet retrieves any order with its items.
func (s *orderService) AdminGet(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	return s.loadDetail(ctx, orderID)
}

// AdminUpdateStatus moves an order to a new status. Cancelling goes through
// the shared cancellation path so stock is restored exactly once. Other
// edits only move forward through the fulfilment lifecycle.
func (s *orderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (_ *model.Order, err error) {
	target, err := model.ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}

	if target == model.StatusCancelled {
		order, err := s.canceller.cancel(ctx, orderID, func(o *model.Order) error {
			if !o.Status.AdminCancellable() {
				return model.ErrInvalidTransition
			}
			return nil
		}, "")
		if errors.Is(err, model.ErrInvalidTransition) {
			// Re-cancelling is a no-op rather than an error.
			if current, getErr := s.orderRepo.GetByID(ctx, orderID); getErr == nil && current != nil && current.Status == model.StatusCancelled {
				return current, nil
			}
		}
		return order, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	previous := order.Status
	if previous == target {
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
		return order, nil
	}

	if !previous.CanAdvanceTo(target) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(previous)).
			Str("to", string(target)).
			Msg("rejected status transition")
		err = model.ErrInvalidTransition
		return nil, err
	}

	now := time.Now()
	if target == model.StatusPaid {
		err = s.orderRepo.MarkPaid(ctx, tx, orderID, "", now)
		order.PaidAt = &now
	} else {
		err = s.orderRepo.UpdateStatus(ctx, tx, orderID, target)
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = target
	order.UpdatedAt = now

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("order status updated")

	eventType := events.TypeOrderStatusChanged
	if target == model.StatusPaid {
		eventType = events.TypeOrderPaid
	}
	s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order, previous))

	return order, nil
}

// DashboardRecentOrders is how many orders the admin dashboard lists.
const DashboardRecentOrders = 5

// Dashboard summarises store activity. Today is measured from local midnight.
func (s *orderService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := s.orderRepo.Stats(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.orderRepo.List(ctx, model.OrderFilter{Page: model.NewPage(1, DashboardRecentOrders)})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	return &model.Dashboard{Stats: *stats, RecentOrders: recent}, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.ErrInvalidJSON
	}

	required := []struct {
		field string
		value string
	}{
		{"recipientName", req.RecipientName},
		{"recipientPhone", req.RecipientPhone},
		{"recipientAddress", req.RecipientAddress},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.NewMissingFieldError(r.field)
		}
	}

	return nil
}
