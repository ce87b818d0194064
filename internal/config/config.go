package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "github.com/tilestudio/site/pkg/config"
	"github.com/tilestudio/site/pkg/database"
	"github.com/tilestudio/site/pkg/tracing"
)

// CMS providers.
const (
	CMSContentful = "contentful"
	CMSSanity     = "sanity"
	CMSStatic     = "static"
)

// Catalog cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Enquiry stores.
const (
	EnquiryMemory   = "memory"
	EnquiryPostgres = "postgres"
)

// Config holds all configuration for the site.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"SITE_HTTP_PORT" envDefault:"8080"`
	InstanceID  string `env:"INSTANCE_ID"`

	// Content source
	CMSProvider           string `env:"CMS_PROVIDER" envDefault:"static"`
	ContentfulSpaceID     string `env:"CONTENTFUL_SPACE_ID"`
	ContentfulAccessToken string `env:"CONTENTFUL_ACCESS_TOKEN"`
	ContentfulEnvironment string `env:"CONTENTFUL_ENVIRONMENT" envDefault:"master"`
	ContentfulBaseURL     string `env:"CONTENTFUL_BASE_URL"`
	SanityProjectID       string `env:"SANITY_PROJECT_ID"`
	SanityDataset         string `env:"SANITY_DATASET" envDefault:"production"`
	SanityAPIVersion      string `env:"SANITY_API_VERSION" envDefault:"2024-01-01"`
	SanityToken           string `env:"SANITY_TOKEN"`
	SanityBaseURL         string `env:"SANITY_BASE_URL"`

	// Catalog cache
	CatalogCacheTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"60s"`
	CatalogCacheBackend string        `env:"CATALOG_CACHE_BACKEND" envDefault:"memory"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Listing
	ProductsPageSize     int `env:"PRODUCTS_PAGE_SIZE" envDefault:"9"`
	SimilarProductsLimit int `env:"SIMILAR_PRODUCTS_LIMIT" envDefault:"4"`

	// Revalidation webhook
	RevalidateSecret string `env:"REVALIDATE_SECRET"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Enquiries
	EnquiryStore     string `env:"ENQUIRY_STORE" envDefault:"memory"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"site"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"site"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Contact form rate limiting
	ContactRateLimitRPS   float64 `env:"CONTACT_RATE_LIMIT_RPS" envDefault:"0.2"`
	ContactRateLimitBurst int     `env:"CONTACT_RATE_LIMIT_BURST" envDefault:"3"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from a .env file, if present, and the
// environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotenv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID, _ = os.Hostname()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.CMSProvider {
	case CMSContentful:
		if c.ContentfulSpaceID == "" || c.ContentfulAccessToken == "" {
			return fmt.Errorf("CONTENTFUL_SPACE_ID and CONTENTFUL_ACCESS_TOKEN are required for the contentful provider")
		}
	case CMSSanity:
		if c.SanityProjectID == "" {
			return fmt.Errorf("SANITY_PROJECT_ID is required for the sanity provider")
		}
	case CMSStatic:
	default:
		return fmt.Errorf("invalid CMS_PROVIDER %q: must be contentful, sanity or static", c.CMSProvider)
	}

	if c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive, got %s", c.CatalogCacheTTL)
	}
	if c.CatalogCacheBackend != CacheMemory && c.CatalogCacheBackend != CacheRedis {
		return fmt.Errorf("invalid CATALOG_CACHE_BACKEND %q: must be memory or redis", c.CatalogCacheBackend)
	}
	if c.ProductsPageSize < 1 {
		return fmt.Errorf("PRODUCTS_PAGE_SIZE must be at least 1, got %d", c.ProductsPageSize)
	}
	if c.SimilarProductsLimit < 1 {
		return fmt.Errorf("SIMILAR_PRODUCTS_LIMIT must be at least 1, got %d", c.SimilarProductsLimit)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.EnquiryStore != EnquiryMemory && c.EnquiryStore != EnquiryPostgres {
		return fmt.Errorf("invalid ENQUIRY_STORE %q: must be memory or postgres", c.EnquiryStore)
	}
	if c.EnquiryStore == EnquiryPostgres && c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required for the postgres enquiry store")
	}
	if c.ContactRateLimitRPS <= 0 || c.ContactRateLimitBurst < 1 {
		return fmt.Errorf("contact rate limit must be positive, got %v rps burst %d", c.ContactRateLimitRPS, c.ContactRateLimitBurst)
	}
	if c.Environment != "development" && c.RevalidateSecret == "" {
		return fmt.Errorf("REVALIDATE_SECRET is required in %s environment", c.Environment)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %v", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection settings of the enquiry database.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}

// Redis returns the connection settings of the shared catalog cache.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry settings for serviceName.
func (c *Config) Tracing(serviceName string) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}
