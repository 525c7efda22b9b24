package service

import (
	"context"
	"fmt"

	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecentOrderLimit is how many orders the admin user view shows.
const RecentOrderLimit = 10

// userService implements UserService.
type userService struct {
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, orderRepo repository.OrderRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) List(ctx context.Context, filter model.UserFilter) ([]model.UserSummary, model.Pagination, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, model.Pagination{}, fmt.Errorf("failed to list users: %w", err)
	}
	return users, model.NewPagination(filter.Page, total), nil
}

// Get retrieves a user with their most recent orders.
func (s *userService) Get(ctx context.Context, userID uuid.UUID) (*model.UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	orders, err := s.orderRepo.ListRecentByUser(ctx, userID, RecentOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}

	return &model.UserDetail{User: *user, RecentOrders: orders}, nil
}

// UpdateRole changes another user's role. Admins cannot change their own.
func (s *userService) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) error {
	if !model.ValidRole(role) {
		return model.ErrInvalidRole
	}
	if actorID == userID {
		return model.ErrSelfRoleChange
	}

	ok, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if !ok {
		return model.ErrUserNotFound
	}

	s.logger.Info().
		Str("actor_id", actorID.String()).
		Str("user_id", userID.String()).
		Str("role", role).
		Msg("user role updated")

	return nil
}
