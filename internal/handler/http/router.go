package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tilestudio/site/internal/service"
	apperrors "github.com/tilestudio/site/pkg/errors"
	"github.com/tilestudio/site/pkg/health"
	"github.com/tilestudio/site/pkg/httputil"
	"github.com/tilestudio/site/pkg/middleware"
)

// RevalidateScope is the JWT scope required by the revalidation webhook.
const RevalidateScope = "catalog:revalidate"

// RouterConfig holds the transport settings of the site.
type RouterConfig struct {
	ServiceName string

	// RevalidateSecret signs revalidation tokens. When empty the webhook is
	// not mounted.
	RevalidateSecret string

	ContactRateLimitRPS   float64
	ContactRateLimitBurst int

	CORSAllowedOrigins []string

	// CacheMaxAge is advertised to browsers and CDNs on catalog responses.
	CacheMaxAge time.Duration
}

// NewRouter creates a chi router with all site routes registered. ctx bounds
// the lifetime of the rate limiter's cleanup loop.
func NewRouter(
	ctx context.Context,
	catalogService *service.CatalogService,
	enquiryService *service.EnquiryService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get("/health/live", healthHandler.LivenessHandler())
		r.Get("/health/ready", healthHandler.ReadinessHandler())
		r.Handle("/metrics", promhttp.Handler())
	})

	maxAge := int(cfg.CacheMaxAge / time.Second)
	contactLimit := middleware.RateLimit(ctx, cfg.ContactRateLimitRPS, cfg.ContactRateLimitBurst, logger)

	// HTML pages
	pages := NewPageHandler(catalogService, enquiryService, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CacheControl(maxAge))

		r.Get("/", pages.Home)
		r.Get("/products", pages.Products)
		r.Get("/products/{slug}", pages.Product)
		r.Get("/catalogues", pages.Catalogues)
		r.Get("/about", pages.About)
		r.Get("/services", pages.Services)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Get("/contact", pages.Contact)
		r.With(contactLimit).Post("/contact", pages.SubmitContact)
	})

	r.NotFound(pages.NotFound)

	// JSON API
	catalogHandler := NewCatalogHandler(catalogService, logger)
	enquiryHandler := NewEnquiryHandler(enquiryService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			ExposedHeaders: []string{"X-Correlation-ID"},
		}))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, r, apperrors.NotFound("route", r.URL.Path), logger)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(maxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{slug}", catalogHandler.GetProduct)
			r.Get("/collections", catalogHandler.ListCollections)
			r.Get("/catalogues", catalogHandler.ListCatalogues)
			r.Get("/facets", catalogHandler.GetFacets)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(ContentTypeJSON)

			r.With(contactLimit).Post("/contact", enquiryHandler.SubmitEnquiry)

			if cfg.RevalidateSecret != "" {
				r.With(middleware.JWTAuth(cfg.RevalidateSecret, RevalidateScope, logger)).
					Post("/revalidate", catalogHandler.Revalidate)
			}
		})
	})

	return r
}
