package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gugarden/internal/cache"
	"gugarden/internal/config"
	"gugarden/internal/database"
	"gugarden/internal/events"
	"gugarden/internal/handler"
	"gugarden/internal/payment"
	"gugarden/internal/repository"
	"gugarden/internal/router"
	"gugarden/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting gugarden API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	productCache := newProductCache(ctx, cfg.Redis, logger)
	publisher := newPublisher(cfg.AMQP, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	gateway := payment.New(cfg.Payment, logger)
	logger.Info().Str("provider", gateway.Provider()).Msg("payment gateway selected")

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	rentalRepo := repository.NewRentalRepository(pool, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.Auth, logger)
	productService := service.NewProductService(productRepo, productCache, logger)
	cartService := service.NewCartService(cartRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, gateway, publisher, productCache, cfg.Payment.Timeout, logger)
	paymentService := service.NewPaymentService(orderRepo, userRepo, productRepo, gateway, publisher, productCache, cfg.Payment, logger)
	userService := service.NewUserService(userRepo, orderRepo, logger)
	rentalService := service.NewRentalService(rentalRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Payment: handler.NewPaymentHandler(paymentService, logger),
		User:    handler.NewUserHandler(userService, logger),
		Rental:  handler.NewRentalHandler(rentalService, logger),
	}, router.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Tokens:        authService,
		DB:            pool,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newProductCache connects to Redis when enabled. An unreachable Redis
// degrades to no caching rather than blocking startup.
func newProductCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) cache.ProductCache {
	if !cfg.Enabled {
		logger.Info().Msg("product cache disabled")
		return cache.NewNopProductCache()
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to redis, product cache disabled")
		return cache.NewNopProductCache()
	}

	logger.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("product cache enabled")
	return cache.NewProductCache(client, cfg.TTL, logger)
}

// newPublisher connects to RabbitMQ when enabled, falling back to dropping
// events.
func newPublisher(cfg config.AMQPConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewAMQPPublisher(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to RabbitMQ, order events disabled")
		return events.NewNopPublisher()
	}

	logger.Info().Str("exchange", cfg.Exchange).Msg("order events enabled")
	return publisher
}
