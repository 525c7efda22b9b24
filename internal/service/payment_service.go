package service

import (
	"context"
	"fmt"
	"time"

	"gugarden/internal/cache"
	"gugarden/internal/config"
	"gugarden/internal/events"
	"gugarden/internal/model"
	"gugarden/internal/payment"
	"gugarden/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	gateway   payment.Gateway
	publisher events.Publisher
	canceller *orderCanceller
	clientURL string
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	productCache cache.ProductCache,
	cfg config.PaymentConfig,
	logger zerolog.Logger,
) PaymentService {
	logger = logger.With().Str("service", "payment").Str("provider", gateway.Provider()).Logger()
	return &paymentService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		gateway:   gateway,
		publisher: publisher,
		canceller: &orderCanceller{
			orderRepo:   orderRepo,
			productRepo: productRepo,
			gateway:     gateway,
			publisher:   publisher,
			cache:       productCache,
			timeout:     cfg.Timeout,
			logger:      logger,
		},
		clientURL: cfg.ClientURL,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

func (s *paymentService) Provider() string {
	return s.gateway.Provider()
}

// Prepare reserves a payment with the provider for one of the caller's
// pending orders and returns the provider payload for the client.
func (s *paymentService) Prepare(ctx context.Context, userID, orderID uuid.UUID) (map[string]any, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case model.StatusPending:
	case model.StatusPaid:
		return nil, model.ErrAlreadyProcessed
	default:
		return nil, model.ErrOrderNotPending
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	callCtx, cancel := payment.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.gateway.Prepare(callCtx, payment.PrepareRequest{
		OrderID:       order.ID,
		MerchantKey:   order.OrderNumber,
		Amount:        order.TotalAmount,
		OrderName:     OrderName(items),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		ReturnURL:     payment.ReturnURL(s.clientURL, order.ID),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("payment preparation failed")
		return nil, err
	}

	if result.PaymentKey != "" {
		if err := s.orderRepo.SetPaymentKey(ctx, orderID, result.PaymentKey); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_number", order.OrderNumber).
		Msg("payment prepared")

	return result.Payload, nil
}

// Approve confirms the payment with the provider and marks the order paid.
// The row stays locked for the whole exchange so a second approval for the
// same order sees the paid status and fails with ErrAlreadyProcessed.
func (s *paymentService) Approve(ctx context.Context, userID uuid.UUID, req *model.PaymentApproveRequest) (_ *model.PaymentApproveResult, err error) {
	if req == nil || req.OrderID == uuid.Nil {
		return nil, model.NewMissingFieldError("orderId")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.UserID != userID {
		err = model.ErrOrderNotFound
		return nil, err
	}

	switch order.Status {
	case model.StatusPending:
	case model.StatusPaid:
		err = model.ErrAlreadyProcessed
		return nil, err
	default:
		err = model.ErrOrderNotPending
		return nil, err
	}

	if req.Amount != nil && !req.Amount.Equal(order.TotalAmount) {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("expected", order.TotalAmount.String()).
			Str("received", req.Amount.String()).
			Msg("approval amount does not match order total")
		err = model.ErrAmountMismatch
		return nil, err
	}

	reference := req.Reference()
	if reference == "" && order.PaymentKey != nil {
		reference = *order.PaymentKey
	}

	callCtx, cancel := payment.WithTimeout(ctx, s.timeout)
	defer cancel()

	confirmed, err := s.gateway.Confirm(callCtx, payment.ConfirmRequest{
		MerchantKey: order.OrderNumber,
		PaymentKey:  reference,
		Amount:      order.TotalAmount,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("payment confirmation failed")
		return nil, err
	}

	if !confirmed.Amount.Equal(order.TotalAmount) {
		s.logger.Error().
			Str("order_id", order.ID.String()).
			Str("expected", order.TotalAmount.String()).
			Str("captured", confirmed.Amount.String()).
			Msg("provider captured a different amount")
		err = model.ErrAmountMismatch
		return nil, err
	}

	now := time.Now()
	if err = s.orderRepo.MarkPaid(ctx, tx, order.ID, confirmed.PaymentKey, now); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}

	order.Status = model.StatusPaid
	order.PaidAt = &now
	if confirmed.PaymentKey != "" {
		order.PaymentKey = &confirmed.PaymentKey
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("amount", order.TotalAmount.String()).
		Msg("payment approved")

	s.publisher.Publish(ctx, events.NewOrderEvent(events.TypeOrderPaid, order, model.StatusPending))

	return &model.PaymentApproveResult{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentKey:  confirmed.PaymentKey,
		TestMode:    s.gateway.Provider() == config.PaymentProviderTest,
	}, nil
}

// Cancel refunds one of the caller's paid orders and restores its stock.
func (s *paymentService) Cancel(ctx context.Context, userID uuid.UUID, req *model.PaymentCancelRequest) (*model.Order, error) {
	if req == nil || req.OrderID == uuid.Nil {
		return nil, model.NewMissingFieldError("orderId")
	}

	return s.canceller.cancel(ctx, req.OrderID, func(o *model.Order) error {
		if o.UserID != userID {
			return model.ErrOrderNotFound
		}
		if o.Status != model.StatusPaid {
			return model.ErrOrderNotPaid
		}
		return nil
	}, req.Reason)
}

// Status reports the payment state of one of the caller's orders.
func (s *paymentService) Status(ctx context.Context, userID, orderID uuid.UUID) (*model.PaymentStatus, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	return &model.PaymentStatus{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		PaidAt:      order.PaidAt,
	}, nil
}

func (s *paymentService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}
