// Command seed loads catalogue documents and upserts them into the database.
//
// Usage:
//
//	seed [file ...]
//
// With S3 enabled each path is first looked up under S3_PREFIX in S3_BUCKET
// and read from the local file system when that fails.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gugarden/internal/catalog"
	"gugarden/internal/config"
	"gugarden/internal/database"
	"gugarden/internal/repository"

	"github.com/rs/zerolog"
)

const defaultSeedFile = "data/seed/catalog.yaml"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := args
	if len(paths) == 0 {
		paths = []string{defaultSeedFile}
	}

	loader, err := newLoader(ctx, cfg.S3, logger)
	if err != nil {
		return err
	}

	docs, err := catalog.LoadAll(ctx, loader, paths)
	if err != nil {
		return fmt.Errorf("failed to load seed documents: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	seeder := catalog.NewSeeder(repository.NewSeedRepository(pool, logger), logger)
	summary, err := seeder.Apply(ctx, docs...)
	if err != nil {
		return fmt.Errorf("failed to apply seed data: %w", err)
	}

	logger.Info().
		Strs("files", paths).
		Int("categories", summary.Categories).
		Int("products", summary.Products).
		Int("images", summary.Images).
		Int("users", summary.Users).
		Msg("seed data applied")

	return nil
}

func newLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (catalog.Loader, error) {
	fileLoader := catalog.NewFileLoader(logger)
	if !cfg.Enabled {
		return fileLoader, nil
	}

	s3Loader, err := catalog.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 loader: %w", err)
	}
	return catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, logger), nil
}
