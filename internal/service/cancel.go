package service

import (
	"context"
	"fmt"
	"sort"
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

// orderCanceller performs the cancellation transaction shared by customer,
// admin and payment refunds.
type orderCanceller struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     payment.Gateway
	publisher   events.Publisher
	cache       cache.ProductCache
	timeout     time.Duration
	logger      zerolog.Logger
}

// cancel locks the order, lets check veto the cancellation, restores stock
// and refunds a captured payment before committing. Orders that moved past
// paid into fulfilment are refunded too. A refund failure rolls
// everything back so the order keeps its prior status.
func (c *orderCanceller) cancel(
	ctx context.Context,
	orderID uuid.UUID,
	check func(*model.Order) error,
	reason string,
) (_ *model.Order, err error) {
	tx, err := c.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				c.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := c.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if err = check(order); err != nil {
		return nil, err
	}

	items, err := c.orderRepo.GetItemsTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	restored, err := restoreStock(ctx, c.productRepo, tx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err = c.orderRepo.MarkCancelled(ctx, tx, orderID, now); err != nil {
		return nil, err
	}

	previous := order.Status
	refunded := false
	if captured(order) {
		if refunded, err = c.refund(ctx, order, reason); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		event := c.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("order_number", order.OrderNumber).
			Str("previous_status", string(previous)).
			Bool("refunded", refunded)
		if refunded {
			// The provider has already returned the money while the order
			// row still shows it as captured.
			event = event.
				Str("payment_key", *order.PaymentKey).
				Str("amount", order.TotalAmount.String())
		}
		event.Msg("failed to commit cancellation")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order.Status = model.StatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now

	c.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("previous_status", string(previous)).
		Int("restored_lines", len(restored)).
		Msg("order cancelled")

	c.publisher.Publish(ctx, events.NewOrderEvent(events.TypeOrderCancelled, order, previous))
	c.cache.Invalidate(ctx, restored...)

	return order, nil
}

// captured reports whether the customer was charged for order, whatever
// fulfilment state it has reached since. A pending order may hold a
// reservation key from prepare, which is not a capture.
func captured(order *model.Order) bool {
	if order.PaidAt != nil {
		return true
	}
	return order.Status != model.StatusPending && order.PaymentKey != nil && *order.PaymentKey != ""
}

// refund returns the captured amount through the gateway and reports whether
// the provider was called.
func (c *orderCanceller) refund(ctx context.Context, order *model.Order, reason string) (bool, error) {
	if order.PaymentKey == nil || *order.PaymentKey == "" {
		c.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Msg("paid order has no payment key, skipping provider refund")
		return false, nil
	}

	if reason == "" {
		reason = model.DefaultCancelReason
	}

	callCtx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.gateway.Cancel(callCtx, payment.CancelRequest{
		PaymentKey: *order.PaymentKey,
		Amount:     order.TotalAmount,
		Reason:     reason,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// restoreStock returns the units of every item still linked to a product,
// in product id order, and reports the products touched.
func restoreStock(ctx context.Context, repo repository.ProductRepository, tx pgx.Tx, items []model.OrderItem) ([]int64, error) {
	linked := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			linked = append(linked, item)
		}
	}
	sort.Slice(linked, func(i, j int) bool { return *linked[i].ProductID < *linked[j].ProductID })

	ids := make([]int64, 0, len(linked))
	for _, item := range linked {
		if err := repo.IncrementStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		ids = append(ids, *item.ProductID)
	}

	return ids, nil
}
