package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gugarden/internal/cache"
	"gugarden/internal/catalog"
	"gugarden/internal/config"
	"gugarden/internal/database"
	"gugarden/internal/events"
	"gugarden/internal/handler"
	"gugarden/internal/payment"
	"gugarden/internal/repository"
	"gugarden/internal/router"
	"gugarden/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	adminEmail    = "admin@gugarden.test"
	adminPassword = "admin-secret"
)

// TestDB represents a migrated test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and applies the schema
// migrations. The container is terminated when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCatalog applies a small catalogue and an admin account through the
// production seeder.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	doc := &catalog.Document{
		Categories: []catalog.CategorySeed{
			{Name: "Terrarium", Slug: "terrarium", SortOrder: 1},
			{Name: "Kit", Slug: "kit", SortOrder: 2},
		},
		Products: []catalog.ProductSeed{
			{Category: "terrarium", Name: "Moss Jar", Slug: "moss-jar", Price: "20000", Stock: 5, Featured: true},
			{Category: "terrarium", Name: "Last Globe", Slug: "last-globe", Price: "60000", SalePrice: "55000", Stock: 1},
			{Category: "kit", Name: "Starter Kit", Slug: "starter-kit", Price: "30000", Stock: 10,
				Images: []string{"https://img.example.com/kit-1.jpg", "https://img.example.com/kit-2.jpg"}},
		},
		Users: []catalog.UserSeed{
			{Email: adminEmail, Password: adminPassword, Name: "Admin", Role: "admin"},
		},
	}

	seeder := catalog.NewSeeder(repository.NewSeedRepository(pool, zerolog.Nop()), zerolog.Nop())
	_, err := seeder.Apply(context.Background(), doc)
	require.NoError(t, err)
}

// CleanupDB removes every row written by a test.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE rental_inquiries, order_items, orders, cart_items,
		         product_images, products, categories, users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
}

// productID looks up a seeded product by slug.
func productID(t *testing.T, pool *pgxpool.Pool, slug string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `SELECT id FROM products WHERE slug = $1`, slug).Scan(&id)
	require.NoError(t, err)
	return id
}

// productStock reads the current stock of a product.
func productStock(t *testing.T, pool *pgxpool.Pool, id int64) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// orderPaidAt reads the paid_at column of an order.
func orderPaidAt(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) *time.Time {
	t.Helper()

	var paidAt *time.Time
	err := pool.QueryRow(context.Background(), `SELECT paid_at FROM orders WHERE id = $1`, id).Scan(&paidAt)
	require.NoError(t, err)
	return paidAt
}

// setupTestServer wires the full HTTP stack against the test database with
// the offline payment gateway and no cache or event broker.
func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	paymentCfg := config.PaymentConfig{
		Provider:  config.PaymentProviderTest,
		ClientURL: "http://localhost:3000",
		Timeout:   5 * time.Second,
	}
	gateway := payment.New(paymentCfg, logger)
	productCache := cache.NewNopProductCache()
	publisher := events.NewNopPublisher()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	rentalRepo := repository.NewRentalRepository(testDB.Pool, logger)

	authService := service.NewAuthService(userRepo, config.AuthConfig{
		JWTSecret: "integration-test-secret",
		JWTExpiry: time.Hour,
	}, logger)
	productService := service.NewProductService(productRepo, productCache, logger)
	cartService := service.NewCartService(cartRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, gateway, publisher, productCache, paymentCfg.Timeout, logger)
	paymentService := service.NewPaymentService(orderRepo, userRepo, productRepo, gateway, publisher, productCache, paymentCfg, logger)
	userService := service.NewUserService(userRepo, orderRepo, logger)
	rentalService := service.NewRentalService(rentalRepo, logger)

	return router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Payment: handler.NewPaymentHandler(paymentService, logger),
		User:    handler.NewUserHandler(userService, logger),
		Rental:  handler.NewRentalHandler(rentalService, logger),
	}, router.Options{
		AllowedOrigin: "*",
		Tokens:        authService,
		DB:            testDB.Pool,
	}, logger)
}
