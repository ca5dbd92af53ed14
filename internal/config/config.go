package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures runtime configuration for the storefront API service.
type Config struct {
	HTTP      HTTPConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

// StorageConfig selects the cart storage backend. Driver "memory" keeps
// carts in process; "postgres" persists them through the kv_entries table.
type StorageConfig struct {
	Driver         string
	DatabaseURL    string
	AutoMigrate    bool
	MigrationsPath string
}

type CatalogConfig struct {
	BaseURL   string
	CacheTTL  time.Duration
	FeedDelay time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort       = 8080
	defaultShutdownGrace  = 15
	defaultStorageDriver  = "memory"
	defaultMigrationsPath = "migrations"
	defaultAutoMigrate    = true
	defaultCacheTTL       = 5 * time.Minute
	defaultFeedDelay      = 500 * time.Millisecond
	defaultJWTSecret      = "your-secret-key-change-this-in-production"
	defaultServiceName    = "storefront-api"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
)

// Load reads configuration from environment variables, applying defaults
// when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	storageCfg, err := loadStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	catalogCfg, err := loadCatalogConfig()
	if err != nil {
		return nil, fmt.Errorf("loading catalog config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Storage:   storageCfg,
		Catalog:   catalogCfg,
		Auth:      AuthConfig{JWTSecret: getEnvOrDefault("JWT_SECRET", defaultJWTSecret)},
		Telemetry: telCfg,
		Service:   loadServiceConfig(),
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	return HTTPConfig{Port: port, ShutdownGrace: shutdownGrace}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	driver := getEnvOrDefault("CART_STORAGE_DRIVER", defaultStorageDriver)
	if driver != "memory" && driver != "postgres" {
		return StorageConfig{}, fmt.Errorf("invalid CART_STORAGE_DRIVER %q: must be memory or postgres", driver)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	autoMigrate := defaultAutoMigrate
	if value, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		autoMigrate = value == "true"
	}

	return StorageConfig{
		Driver:         driver,
		DatabaseURL:    databaseURL,
		AutoMigrate:    autoMigrate,
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}, nil
}

func loadCatalogConfig() (CatalogConfig, error) {
	cacheTTL := defaultCacheTTL
	if value, ok := os.LookupEnv("CATALOG_CACHE_TTL"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return CatalogConfig{}, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
		}
		cacheTTL = parsed
	}

	feedDelay := defaultFeedDelay
	if value, ok := os.LookupEnv("FEED_LOAD_DELAY"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return CatalogConfig{}, fmt.Errorf("invalid FEED_LOAD_DELAY: %w", err)
		}
		feedDelay = parsed
	}

	return CatalogConfig{
		BaseURL:   os.Getenv("CATALOG_BASE_URL"),
		CacheTTL:  cacheTTL,
		FeedDelay: feedDelay,
	}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", true),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", true),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "storefront")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbName, sslMode,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
