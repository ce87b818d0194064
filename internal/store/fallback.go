package store

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/pkg/logger"
)

// Fetch outcomes recorded by catalog_fetch_total.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

var fetchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_fetch_total",
		Help: "Catalog fetches by source and outcome.",
	},
	[]string{"source", "outcome"},
)

// Fallback serves records from primary and falls back to secondary whenever
// a primary fetch fails. Each record kind falls back independently.
type Fallback struct {
	primary   Store
	secondary Store
	name      string
	logger    *slog.Logger
}

// WithFallback wraps primary, named name in logs and metrics, so failed
// fetches are answered by secondary.
func WithFallback(primary Store, name string, secondary Store, l *slog.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, name: name, logger: l}
}

// Products implements Store.
func (f *Fallback) Products(ctx context.Context) ([]domain.Product, error) {
	return fetchWithFallback(ctx, f, "products", f.primary.Products, f.secondary.Products)
}

// Collections implements Store.
func (f *Fallback) Collections(ctx context.Context) ([]domain.Collection, error) {
	return fetchWithFallback(ctx, f, "collections", f.primary.Collections, f.secondary.Collections)
}

// Catalogues implements Store.
func (f *Fallback) Catalogues(ctx context.Context) ([]domain.Catalogue, error) {
	return fetchWithFallback(ctx, f, "catalogues", f.primary.Catalogues, f.secondary.Catalogues)
}

func fetchWithFallback[T any](
	ctx context.Context,
	f *Fallback,
	kind string,
	primary, secondary func(context.Context) ([]T, error),
) ([]T, error) {
	records, err := primary(ctx)
	if err == nil {
		fetchTotal.WithLabelValues(f.name, OutcomeOK).Inc()
		return records, nil
	}

	// A cancelled request is not a CMS failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.WithContext(ctx, f.logger).WarnContext(ctx, "catalog fetch failed, serving fallback data",
		slog.String("source", f.name),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)

	records, ferr := secondary(ctx)
	if ferr != nil {
		fetchTotal.WithLabelValues(f.name, OutcomeFailed).Inc()
		return nil, ferr
	}
	fetchTotal.WithLabelValues(f.name, OutcomeFallback).Inc()
	return records, nil
}
