package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tilestudio/site/internal/catalog"
	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
	apperrors "github.com/tilestudio/site/pkg/errors"
	"github.com/tilestudio/site/pkg/logger"
	"github.com/tilestudio/site/pkg/pagination"
)

// DefaultSimilarLimit is the number of related products shown on a detail
// page.
const DefaultSimilarLimit = 4

// MaxSimilarLimit caps the limit callers may request.
const MaxSimilarLimit = 24

// pagerRadius is how many page links surround the current page.
const pagerRadius = 2

// CatalogSource provides cached catalog snapshots.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Invalidate(ctx context.Context) error
}

// RevalidationPublisher announces a catalog revalidation to other instances.
type RevalidationPublisher interface {
	PublishCatalogRevalidated(ctx context.Context, reason string, entries []string) error
}

// CatalogService answers the product listing, detail and navigation queries.
type CatalogService struct {
	source       CatalogSource
	publisher    RevalidationPublisher
	ranker       *catalog.Ranker
	pageSize     int
	similarLimit int
	logger       *slog.Logger

	mu       sync.Mutex
	memoSnap *domain.Snapshot
	similar  map[similarKey][]domain.Product
}

type similarKey struct {
	slug  string
	limit int
}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithPageSize sets the listing page size.
func WithPageSize(n int) CatalogOption {
	return func(s *CatalogService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSimilarLimit sets the default number of similar products.
func WithSimilarLimit(n int) CatalogOption {
	return func(s *CatalogService) {
		if n > 0 {
			s.similarLimit = n
		}
	}
}

// WithRanker replaces the similarity ranker.
func WithRanker(r *catalog.Ranker) CatalogOption {
	return func(s *CatalogService) { s.ranker = r }
}

// WithPublisher fans revalidations out through p.
func WithPublisher(p RevalidationPublisher) CatalogOption {
	return func(s *CatalogService) { s.publisher = p }
}

// NewCatalogService creates a catalog service reading from source.
func NewCatalogService(source CatalogSource, logger *slog.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		source:       source,
		ranker:       catalog.NewRanker(nil),
		pageSize:     domain.DefaultPageSize,
		similarLimit: DefaultSimilarLimit,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductList is one page of the product listing.
type ProductList struct {
	pagination.Result[domain.Product]

	Selection domain.Selection     `json:"selection"`
	Query     string               `json:"query"`
	Pages     []int                `json:"pages"`
	Facets    []catalog.FacetGroup `json:"facets"`
}

// ListProducts filters, sorts and paginates the catalog for sel. The page is
// clamped to [1, totalPages]; the returned Selection and Query reflect the
// clamped page.
func (s *CatalogService) ListProducts(ctx context.Context, sel domain.Selection) (*ProductList, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if sel.SortBy == "" {
		sel.SortBy = domain.DefaultSort
	}
	result := catalog.Apply(snap.Products, sel, s.pageSize)
	if page := pagination.Clamp(sel.Page, result.TotalPages); page != sel.Page {
		sel.Page = page
		result = catalog.Apply(snap.Products, sel, s.pageSize)
	}

	return &ProductList{
		Result:    pagination.NewResult(result.Items, result.Total, sel.Page, s.pageSize),
		Selection: sel,
		Query:     catalog.EncodeSelection(sel).Encode(),
		Pages:     pagination.Pages(sel.Page, result.TotalPages, pagerRadius),
		Facets:    catalog.FacetCounts(snap.Products, sel),
	}, nil
}

// ProductDetail is a product with its related products.
type ProductDetail struct {
	Product domain.Product   `json:"product"`
	Similar []domain.Product `json:"similar"`
}

// GetProduct returns the product with slug and up to limit similar
// products. A non-positive limit uses the configured default. The similar
// list is computed once per catalog snapshot so it is stable between
// requests until the catalog is refreshed.
func (s *CatalogService) GetProduct(ctx context.Context, slug string, limit int) (*ProductDetail, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var product *domain.Product
	for i := range snap.Products {
		if snap.Products[i].Slug == slug {
			product = &snap.Products[i]
			break
		}
	}
	if product == nil {
		return nil, apperrors.NotFound("product", slug)
	}

	if limit <= 0 {
		limit = s.similarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	return &ProductDetail{
		Product: *product,
		Similar: s.similarFor(snap, *product, limit),
	}, nil
}

func (s *CatalogService) similarFor(snap *domain.Snapshot, product domain.Product, limit int) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memoSnap != snap {
		s.memoSnap = snap
		s.similar = make(map[similarKey][]domain.Product)
	}

	key := similarKey{slug: product.Slug, limit: limit}
	if ranked, ok := s.similar[key]; ok {
		return ranked
	}
	ranked := s.ranker.Rank(product, snap.Products, limit)
	s.similar[key] = ranked
	return ranked
}

// Collections returns collections in curated order, optionally only those of
// type typ.
func (s *CatalogService) Collections(ctx context.Context, typ string) ([]domain.Collection, error) {
	if typ != "" && !domain.IsValidCollectionType(typ) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown collection type %q", typ))
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return store.FilterCollections(snap.Collections, typ), nil
}

// Catalogues returns every downloadable catalogue.
func (s *CatalogService) Catalogues(ctx context.Context) ([]domain.Catalogue, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Catalogues, nil
}

// Facets lists the distinct values of every filterable dimension.
type Facets struct {
	MainCategories []string `json:"main_categories"`
	DesignStyles   []string `json:"design_styles"`
	Finishes       []string `json:"finishes"`
	Applications   []string `json:"applications"`
	Sizes          []string `json:"sizes"`
	Thicknesses    []string `json:"thicknesses"`
	SortOptions    []string `json:"sort_options"`
}

// Facets derives the facet enumerations from the current catalog.
func (s *CatalogService) Facets(ctx context.Context) (*Facets, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := snap.Products
	return &Facets{
		MainCategories: catalog.MainCategories(p),
		DesignStyles:   catalog.DesignStyles(p),
		Finishes:       catalog.Finishes(p),
		Applications:   catalog.Applications(p),
		Sizes:          catalog.Sizes(p),
		Thicknesses:    catalog.Thicknesses(p),
		SortOptions:    domain.ValidSortOptions(),
	}, nil
}

// Revalidate drops the cached catalog and tells other instances to do the
// same.
func (s *CatalogService) Revalidate(ctx context.Context, reason string, entries []string) error {
	if err := s.source.Invalidate(ctx); err != nil {
		return apperrors.Unavailable("catalog cache could not be invalidated", err)
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "catalog revalidated",
		slog.String("reason", reason),
		slog.Int("entries", len(entries)),
	)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishCatalogRevalidated(ctx, reason, entries); err != nil {
		return apperrors.Unavailable("revalidation could not be announced", err)
	}
	return nil
}

func (s *CatalogService) snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("catalog is unavailable", err)
	}
	return snap, nil
}
