package repository

import (
	"context"
	"testing"

	"gugarden/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_AddAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())

	userID := insertTestUser(t, pool, "cart@example.com")
	moss := insertTestProduct(t, pool, nil, "moss", 10000, 10, true)
	hidden := insertTestProduct(t, pool, nil, "hidden", 10000, 10, false)

	item, err := repo.Add(ctx, userID, moss, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	t.Run("Re-adding increases quantity", func(t *testing.T) {
		again, err := repo.Add(ctx, userID, moss, 2)
		require.NoError(t, err)
		assert.Equal(t, item.ID, again.ID)
		assert.Equal(t, 3, again.Quantity)
	})

	t.Run("Inactive product is rejected", func(t *testing.T) {
		_, err := repo.Add(ctx, userID, hidden, 1)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Missing product is rejected", func(t *testing.T) {
		_, err := repo.Add(ctx, userID, 999999, 1)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "moss", items[0].ProductName)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartRepository_OwnerScoping(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())

	owner := insertTestUser(t, pool, "owner@example.com")
	stranger := insertTestUser(t, pool, "stranger@example.com")
	productID := insertTestProduct(t, pool, nil, "pot", 5000, 10, true)

	item, err := repo.Add(ctx, owner, productID, 1)
	require.NoError(t, err)

	ok, err := repo.UpdateQuantity(ctx, stranger, item.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, stranger, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateQuantity(ctx, owner, item.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Clear(ctx, stranger))
	items, err := repo.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	ok, err = repo.Delete(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCartRepository_Checkout(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())

	userID := insertTestUser(t, pool, "checkout@example.com")
	second := insertTestProduct(t, pool, nil, "second", 2000, 5, true)
	first := insertTestProduct(t, pool, nil, "first", 1000, 5, true)
	_, err := repo.Add(ctx, userID, first, 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, userID, second, 2)
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	lines, err := repo.ListForCheckout(ctx, tx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Less(t, lines[0].ProductID, lines[1].ProductID)

	require.NoError(t, repo.ClearTx(ctx, tx, userID))

	lines, err = repo.ListForCheckout(ctx, tx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
