package service

import (
	"context"
	"fmt"

	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the caller's cart priced at effective unit prices.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	return &model.Cart{Items: items, Total: total, Count: len(items)}, nil
}

// Add puts a product in the cart, adding to the quantity of an existing line.
// A missing quantity defaults to one.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}
	if req.ProductID <= 0 {
		return nil, model.NewMissingFieldError("productId")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.cartRepo.Add(ctx, userID, req.ProductID, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Int64("product_id", req.ProductID).
		Int("quantity", item.Quantity).
		Msg("cart line upserted")

	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	ok, err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if !ok {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, itemID int64) error {
	ok, err := s.cartRepo.Delete(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !ok {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
