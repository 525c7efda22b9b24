package catalog

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Loader reads one seed document.
type Loader interface {
	// Load reads the document at path. Paths ending in .gz are gunzipped.
	Load(ctx context.Context, path string) (*Document, error)
}

// Decode parses a YAML seed document from r, gunzipping it first when name
// ends in .gz. Unknown keys are rejected.
func Decode(r io.Reader, name string) (*Document, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	doc := &Document{}
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed document %s: %w", name, err)
	}
	return doc, nil
}

// fileLoader implements Loader for the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	doc, err := Decode(file, path)
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("categories", len(doc.Categories)).
		Int("products", len(doc.Products)).
		Int("users", len(doc.Users)).
		Msg("seed file loaded")

	return doc, nil
}

// LoadAll reads every path concurrently and returns the documents in path
// order. The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, loader Loader, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load seed file %s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
