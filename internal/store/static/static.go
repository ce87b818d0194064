// Package static serves the catalog bundled into the binary. It is the
// fallback for both CMS backends and the backend of choice for local runs.
package static

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
)

//go:embed data/catalog.json
var catalogJSON []byte

// Source is an immutable in-memory catalog.
type Source struct {
	snap domain.Snapshot
}

// New parses the bundled catalog.
func New() (*Source, error) {
	return Parse(catalogJSON)
}

// Parse builds a Source from catalog JSON in the bundled format.
func Parse(data []byte) (*Source, error) {
	var snap domain.Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode static catalog: %w", err)
	}

	products := store.NormalizeProducts(snap.Products)
	for i := range products {
		products[i].ID = store.StableID(store.SourceStatic + ":" + products[i].Slug)
	}

	return &Source{snap: domain.Snapshot{
		Products:    products,
		Collections: store.NormalizeCollections(snap.Collections),
		Catalogues:  store.NormalizeCatalogues(snap.Catalogues),
		Source:      store.SourceStatic,
	}}, nil
}

// Products implements store.Store. The returned slice is a copy.
func (s *Source) Products(_ context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), s.snap.Products...), nil
}

// Collections implements store.Store.
func (s *Source) Collections(_ context.Context) ([]domain.Collection, error) {
	return append([]domain.Collection(nil), s.snap.Collections...), nil
}

// Catalogues implements store.Store.
func (s *Source) Catalogues(_ context.Context) ([]domain.Catalogue, error) {
	return append([]domain.Catalogue(nil), s.snap.Catalogues...), nil
}
