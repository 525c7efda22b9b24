package repository

import (
	"context"
	"testing"
	"time"

	"gugarden/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the schema migrations.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func insertTestUser(t *testing.T, pool *pgxpool.Pool, email string) uuid.UUID {
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password, name) VALUES ($1, 'x', 'Tester') RETURNING id`,
		email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertTestCategory(t *testing.T, pool *pgxpool.Pool, slug string) int64 {
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO categories (name, slug) VALUES ($1, $1) RETURNING id`,
		slug,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertTestProduct(t *testing.T, pool *pgxpool.Pool, categoryID *int64, slug string, price int64, stock int, active bool) int64 {
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (category_id, name, slug, price, stock, is_active)
		VALUES ($1, $2, $2, $3, $4, $5)
		RETURNING id
	`, categoryID, slug, decimal.NewFromInt(price), stock, active).Scan(&id)
	require.NoError(t, err)
	return id
}
