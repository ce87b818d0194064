package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tilestudio/site/internal/domain"
)

// Source names.
const (
	SourceContentful = "contentful"
	SourceSanity     = "sanity"
	SourceStatic     = "static"
)

// Store provides the catalog records the site is built from.
type Store interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Collections(ctx context.Context) ([]domain.Collection, error)
	Catalogues(ctx context.Context) ([]domain.Catalogue, error)
}

// FetchSnapshot loads products, collections and catalogues from s
// concurrently. It fails if any of the three fetches fails.
func FetchSnapshot(ctx context.Context, s Store, source string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Source: source}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.Products(gctx)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		collections, err := s.Collections(gctx)
		if err != nil {
			return fmt.Errorf("fetch collections: %w", err)
		}
		snap.Collections = collections
		return nil
	})
	g.Go(func() error {
		catalogues, err := s.Catalogues(gctx)
		if err != nil {
			return fmt.Errorf("fetch catalogues: %w", err)
		}
		snap.Catalogues = catalogues
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
