package repository

import (
	"context"
	"fmt"

	"gugarden/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type rentalRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRentalRepository creates a new PostgreSQL-backed rental inquiry repository.
func NewRentalRepository(pool *pgxpool.Pool, logger zerolog.Logger) RentalRepository {
	return &rentalRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "rental").Logger(),
	}
}

func (r *rentalRepository) Create(ctx context.Context, inquiry *model.RentalInquiry) error {
	query := `
		INSERT INTO rental_inquiries (name, email, phone, company, location, space_size, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Company,
		inquiry.Location, inquiry.SpaceSize, inquiry.Message,
	).Scan(&inquiry.ID, &inquiry.Status, &inquiry.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create rental inquiry")
		return fmt.Errorf("failed to create rental inquiry: %w", err)
	}

	return nil
}

func (r *rentalRepository) List(ctx context.Context, page model.Page) ([]model.RentalInquiry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rental_inquiries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rental inquiries: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, company, location, space_size, message, status, created_at
		FROM rental_inquiries
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, page.Size, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query rental inquiries")
		return nil, 0, fmt.Errorf("failed to query rental inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := []model.RentalInquiry{}
	for rows.Next() {
		var q model.RentalInquiry
		err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Company, &q.Location,
			&q.SpaceSize, &q.Message, &q.Status, &q.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan rental inquiry: %w", err)
		}
		inquiries = append(inquiries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rental inquiries: %w", err)
	}

	return inquiries, total, nil
}
