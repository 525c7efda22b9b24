package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/rs/zerolog"
)

// rentalService implements RentalService.
type rentalService struct {
	rentalRepo repository.RentalRepository
	logger     zerolog.Logger
}

// NewRentalService creates a new rental inquiry service.
func NewRentalService(rentalRepo repository.RentalRepository, logger zerolog.Logger) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		logger:     logger.With().Str("service", "rental").Logger(),
	}
}

// Submit records a public rental inquiry.
func (s *rentalService) Submit(ctx context.Context, req *model.RentalInquiryRequest) (*model.RentalInquiry, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	inquiry := &model.RentalInquiry{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Company:   req.Company,
		Location:  req.Location,
		SpaceSize: req.SpaceSize,
		Message:   req.Message,
	}

	switch {
	case inquiry.Name == "":
		return nil, model.NewMissingFieldError("name")
	case inquiry.Email == "":
		return nil, model.NewMissingFieldError("email")
	case inquiry.Phone == "":
		return nil, model.NewMissingFieldError("phone")
	}
	if _, err := mail.ParseAddress(inquiry.Email); err != nil {
		return nil, model.NewInvalidFieldError("email", "is not a valid address")
	}

	if err := s.rentalRepo.Create(ctx, inquiry); err != nil {
		s.logger.Error().Err(err).Msg("failed to save rental inquiry")
		return nil, fmt.Errorf("failed to save inquiry: %w", err)
	}

	s.logger.Info().Int64("inquiry_id", inquiry.ID).Msg("rental inquiry received")
	return inquiry, nil
}

func (s *rentalService) List(ctx context.Context, page model.Page) ([]model.RentalInquiry, model.Pagination, error) {
	inquiries, total, err := s.rentalRepo.List(ctx, page)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, model.NewPagination(page, total), nil
}
