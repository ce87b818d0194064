package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/tilestudio/site/internal/config"
	"github.com/tilestudio/site/internal/event"
	handler "github.com/tilestudio/site/internal/handler/http"
	"github.com/tilestudio/site/internal/repository"
	"github.com/tilestudio/site/internal/repository/memory"
	"github.com/tilestudio/site/internal/repository/postgres"
	"github.com/tilestudio/site/internal/service"
	"github.com/tilestudio/site/internal/store"
	"github.com/tilestudio/site/internal/store/cache"
	"github.com/tilestudio/site/internal/store/contentful"
	"github.com/tilestudio/site/internal/store/sanity"
	"github.com/tilestudio/site/internal/store/static"
	"github.com/tilestudio/site/pkg/database"
	"github.com/tilestudio/site/pkg/health"
	"github.com/tilestudio/site/pkg/httpclient"
	pkgkafka "github.com/tilestudio/site/pkg/kafka"
	"github.com/tilestudio/site/pkg/tracing"
)

// ServiceName labels logs, metrics and traces of the site.
const ServiceName = "site"

// App wires together all dependencies and runs the site.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool      // nil with the memory enquiry store
	redis    *redis.Client      // nil with the in-process catalog cache
	producer *pkgkafka.Producer // nil when Kafka is disabled
	consumer *pkgkafka.Consumer

	shutdownTracer func(context.Context) error
	stopBackground context.CancelFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, shutdownTracer: shutdownTracer}
	healthHandler := health.NewHandler()

	catalogCache, err := a.initCatalog(ctx, healthHandler)
	if err != nil {
		a.close()
		return nil, err
	}

	enquiryRepo, err := a.initEnquiries(ctx, healthHandler)
	if err != nil {
		a.close()
		return nil, err
	}

	catalogOpts := []service.CatalogOption{
		service.WithPageSize(cfg.ProductsPageSize),
		service.WithSimilarLimit(cfg.SimilarProductsLimit),
	}
	if cfg.KafkaEnabled {
		catalogOpts = append(catalogOpts, service.WithPublisher(a.initKafka(catalogCache, healthHandler)))
	}

	// Build the dependency graph.
	catalogService := service.NewCatalogService(catalogCache, logger, catalogOpts...)
	enquiryService := service.NewEnquiryService(enquiryRepo, logger)

	// HTTP router.
	bgCtx, stop := context.WithCancel(context.Background())
	a.stopBackground = stop

	router := handler.NewRouter(bgCtx, catalogService, enquiryService, healthHandler, handler.RouterConfig{
		ServiceName:           ServiceName,
		RevalidateSecret:      cfg.RevalidateSecret,
		ContactRateLimitRPS:   cfg.ContactRateLimitRPS,
		ContactRateLimitBurst: cfg.ContactRateLimitBurst,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		CacheMaxAge:           cfg.CatalogCacheTTL,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// initCatalog builds the content source for the configured provider and
// the cache in front of it.
func (a *App) initCatalog(ctx context.Context, healthHandler *health.Handler) (*cache.Cache, error) {
	source, err := newCatalogStore(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	var opts []cache.Option
	if a.cfg.CatalogCacheBackend == config.CacheRedis {
		client, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		a.logger.Info("connected to Redis", slog.String("addr", a.cfg.Redis().Addr()))

		opts = append(opts, cache.WithShared(cache.NewRedis(client)))
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	catalogCache := cache.New(source, a.cfg.CMSProvider, a.cfg.CatalogCacheTTL, a.logger, opts...)
	healthHandler.Register("catalog", func(ctx context.Context) error {
		_, err := catalogCache.Snapshot(ctx)
		return err
	})
	return catalogCache, nil
}

// newCatalogStore returns the store of the configured CMS provider. Remote
// providers fall back to the bundled static catalog when a fetch fails.
func newCatalogStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	bundled, err := static.New()
	if err != nil {
		return nil, fmt.Errorf("load static catalog: %w", err)
	}

	newDoer := func(name string) httpclient.Doer {
		return httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig(name),
			logger,
		)
	}

	switch cfg.CMSProvider {
	case config.CMSContentful:
		primary := contentful.New(contentful.Config{
			SpaceID:     cfg.ContentfulSpaceID,
			AccessToken: cfg.ContentfulAccessToken,
			Environment: cfg.ContentfulEnvironment,
			BaseURL:     cfg.ContentfulBaseURL,
		}, newDoer(store.SourceContentful))
		logger.Info("catalog source configured",
			slog.String("provider", store.SourceContentful),
			slog.String("space", cfg.ContentfulSpaceID),
		)
		return store.WithFallback(primary, store.SourceContentful, bundled, logger), nil

	case config.CMSSanity:
		primary := sanity.New(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			BaseURL:    cfg.SanityBaseURL,
		}, newDoer(store.SourceSanity))
		logger.Info("catalog source configured",
			slog.String("provider", store.SourceSanity),
			slog.String("project", cfg.SanityProjectID),
			slog.String("dataset", cfg.SanityDataset),
		)
		return store.WithFallback(primary, store.SourceSanity, bundled, logger), nil

	default:
		logger.Info("catalog source configured", slog.String("provider", store.SourceStatic))
		return bundled, nil
	}
}

// initEnquiries returns the configured enquiry repository.
func (a *App) initEnquiries(ctx context.Context, healthHandler *health.Handler) (repository.EnquiryRepository, error) {
	if a.cfg.EnquiryStore != config.EnquiryPostgres {
		return memory.NewEnquiryRepository(), nil
	}

	pgCfg := a.cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := prometheus.Register(database.NewPoolStatsCollector(pool, ServiceName)); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	healthHandler.Register("postgres", pool.Ping)

	tracer := database.QueryTracer{SlowThreshold: 250 * time.Millisecond, Logger: a.logger}
	return postgres.NewEnquiryRepository(pool, tracer), nil
}

// initKafka creates the revalidation producer and the consumer that drops
// this instance's cache when another instance revalidates.
func (a *App) initKafka(catalogCache *cache.Cache, healthHandler *health.Handler) *event.Producer {
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  a.cfg.KafkaBrokers,
		GroupID:  event.ConsumerGroup(a.cfg.InstanceID),
		Topic:    event.TopicCatalogRevalidated,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	}, event.RevalidationHandler(catalogCache, a.cfg.InstanceID, a.logger), a.logger)

	healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	a.logger.Info("kafka initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.String("instance", a.cfg.InstanceID),
	)
	return event.NewProducer(a.producer, a.cfg.InstanceID, a.logger)
}

// Handler returns the HTTP handler of the site.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("revalidation consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

// close releases everything but the HTTP server. Components that were never
// initialized are skipped.
func (a *App) close() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}
