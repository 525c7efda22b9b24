package repository

import (
	"context"
	"testing"

	"gugarden/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool, zerolog.Nop())

	user := &model.User{Email: "new@example.com", PasswordHash: "hash", Name: "New", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	err := repo.Create(ctx, &model.User{Email: "new@example.com", PasswordHash: "h", Name: "Dup", Role: model.RoleUser})
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	phone := "010-1234-5678"
	updated, err := repo.UpdateProfile(ctx, user.ID, &model.ProfileUpdateRequest{Name: "Renamed", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Phone)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "x"), model.ErrUserNotFound)

	ok, err := repo.UpdateRole(ctx, user.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateRole(ctx, uuid.New(), model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool, zerolog.Nop())

	buyer := insertTestUser(t, pool, "buyer@example.com")
	insertTestUser(t, pool, "browser@example.com")

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, total_amount, status, recipient_name,
		                    recipient_phone, recipient_address, payment_method)
		VALUES ($1, 'GG260101AAAAA1', $3, 10000, 'paid', 'n', 'p', 'a', 'toss'),
		       ($2, 'GG260101AAAAA2', $3, 7000, 'cancelled', 'n', 'p', 'a', 'toss')
	`, uuid.New(), uuid.New(), buyer)
	require.NoError(t, err)

	users, total, err := repo.List(ctx, model.UserFilter{Search: "buyer", Page: model.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, 2, users[0].OrderCount)
	assert.True(t, decimal.NewFromInt(10000).Equal(users[0].TotalSpent))

	_, total, err = repo.List(ctx, model.UserFilter{Page: model.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestRentalRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewRentalRepository(pool, zerolog.Nop())

	inquiry := &model.RentalInquiry{Name: "Lee", Email: "lee@example.com", Phone: "010"}
	require.NoError(t, repo.Create(ctx, inquiry))
	assert.NotZero(t, inquiry.ID)
	assert.Equal(t, "new", inquiry.Status)

	inquiries, total, err := repo.List(ctx, model.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, inquiries, 1)
}

func TestSeedRepository_Idempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewSeedRepository(pool, zerolog.Nop())

	apply := func() int64 {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		catID, err := repo.UpsertCategory(ctx, tx, &model.Category{Name: "Terrarium", Slug: "terrarium"})
		require.NoError(t, err)

		productID, err := repo.UpsertProduct(ctx, tx, &model.Product{
			CategoryID: &catID,
			Name:       "Mini terrarium",
			Slug:       "mini-terrarium-green",
			Price:      decimal.NewFromInt(45000),
			Stock:      15,
			IsActive:   true,
		})
		require.NoError(t, err)

		require.NoError(t, repo.ReplaceProductImages(ctx, tx, productID, []model.ProductImage{
			{ImageURL: "one.jpg", SortOrder: 1},
			{ImageURL: "two.jpg", SortOrder: 2},
		}))
		require.NoError(t, repo.UpsertUser(ctx, tx, &model.User{
			Email: "admin@gugarden.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin,
		}))
		require.NoError(t, tx.Commit(ctx))
		return productID
	}

	first := apply()
	second := apply()
	assert.Equal(t, first, second)

	var images, users int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_images`).Scan(&images))
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, 2, images)
	assert.Equal(t, 1, users)
}
