package catalog

import (
	"context"
	"fmt"
	"strings"

	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Summary counts what a seeding run wrote.
type Summary struct {
	Categories int
	Products   int
	Images     int
	Users      int
}

// Seeder applies seed documents in a single transaction.
type Seeder struct {
	repo     repository.SeedRepository
	hashCost int
	logger   zerolog.Logger
}

// NewSeeder creates a seeder that hashes passwords with bcrypt.DefaultCost.
func NewSeeder(repo repository.SeedRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		repo:     repo,
		hashCost: bcrypt.DefaultCost,
		logger:   logger.With().Str("component", "seeder").Logger(),
	}
}

// Apply merges docs, validates the result and upserts everything. Nothing is
// written unless every entry succeeds.
func (s *Seeder) Apply(ctx context.Context, docs ...*Document) (summary Summary, err error) {
	doc := Merge(docs...)
	if err := doc.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid seed data: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	categoryIDs := make(map[string]int64, len(doc.Categories))
	for _, c := range doc.Categories {
		id, err := s.repo.UpsertCategory(ctx, tx, c.toCategory())
		if err != nil {
			return Summary{}, err
		}
		categoryIDs[c.Slug] = id
		summary.Categories++
	}

	for _, p := range doc.Products {
		var categoryID *int64
		if p.Category != "" {
			id := categoryIDs[p.Category]
			categoryID = &id
		}

		product, err := p.toProduct(categoryID)
		if err != nil {
			return Summary{}, err
		}

		id, err := s.repo.UpsertProduct(ctx, tx, product)
		if err != nil {
			return Summary{}, err
		}
		if err := s.repo.ReplaceProductImages(ctx, tx, id, p.images(id)); err != nil {
			return Summary{}, err
		}
		summary.Products++
		summary.Images += len(p.Images)
	}

	for _, u := range doc.Users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.hashCost)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}

		role := u.Role
		if role == "" {
			role = model.RoleUser
		}

		user := &model.User{
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			PasswordHash: string(hashed),
			Name:         u.Name,
			Phone:        u.Phone,
			Role:         role,
		}
		if err := s.repo.UpsertUser(ctx, tx, user); err != nil {
			return Summary{}, err
		}
		summary.Users++
	}

	if err := tx.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("failed to commit seed data: %w", err)
	}

	s.logger.Info().
		Int("categories", summary.Categories).
		Int("products", summary.Products).
		Int("images", summary.Images).
		Int("users", summary.Users).
		Msg("seed data applied")

	return summary, nil
}
