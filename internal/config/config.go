package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureJWTSecret = "change-me-rental-listing-secret"

// Backend names accepted by LISTING_BACKEND.
const (
	BackendMock        = "mock"
	BackendRemoteStore = "remote-store"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName           string `mapstructure:"SERVICE_NAME"`
	HTTPPort              string `mapstructure:"HTTP_PORT"`
	GRPCPort              string `mapstructure:"GRPC_PORT"`
	PrometheusMetricsPort string `mapstructure:"PROMETHEUS_METRICS_PORT"`

	ListingBackend string `mapstructure:"LISTING_BACKEND"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddress    string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ListingCacheTTL time.Duration `mapstructure:"LISTING_CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	BcryptCost    int           `mapstructure:"BCRYPT_COST"`
	AdminEmail    string        `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`

	DefaultPageSize  int   `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxPageSize      int   `mapstructure:"MAX_PAGE_SIZE"`
	StrictValidation bool  `mapstructure:"STRICT_VALIDATION"`
	MaxUploadBytes   int64 `mapstructure:"MAX_UPLOAD_BYTES"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender   string `mapstructure:"SMTP_SENDER"`

	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var defaults = map[string]any{
	"SERVICE_NAME":            "rental-listing-service",
	"HTTP_PORT":               "8080",
	"GRPC_PORT":               "50052",
	"PROMETHEUS_METRICS_PORT": "9092",

	"LISTING_BACKEND": BackendMock,

	"MONGO_URI":      "mongodb://localhost:27017",
	"MONGO_DATABASE": "rentals",

	"REDIS_ADDRESS":     "localhost:6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"LISTING_CACHE_TTL": time.Hour,

	"NATS_URL": "",

	"MINIO_ENDPOINT":   "localhost:9000",
	"MINIO_ACCESS_KEY": "minioadmin",
	"MINIO_SECRET_KEY": "minioadmin",
	"MINIO_BUCKET":     "listing-images",
	"MINIO_USE_SSL":    false,

	"JWT_SECRET":     insecureJWTSecret,
	"JWT_TTL":        24 * time.Hour,
	"BCRYPT_COST":    10,
	"ADMIN_EMAIL":    "",
	"ADMIN_PASSWORD": "",

	"DEFAULT_PAGE_SIZE": 20,
	"MAX_PAGE_SIZE":     100,
	"STRICT_VALIDATION": true,
	"MAX_UPLOAD_BYTES":  int64(10 << 20),

	"SMTP_HOST":     "",
	"SMTP_PORT":     587,
	"SMTP_USERNAME": "",
	"SMTP_PASSWORD": "",
	"SMTP_SENDER":   "",

	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
}

// LoadConfig reads configuration from the environment. A .env file, if any,
// is loaded into the environment by main before this runs.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ListingBackend = strings.ToLower(strings.TrimSpace(cfg.ListingBackend))

	if cfg.JWTSecret == insecureJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("listing_backend", cfg.ListingBackend),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("minio_bucket", cfg.MinIOBucket),
		zap.Bool("smtp_enabled", cfg.SMTPHost != ""),
		zap.Int("default_page_size", cfg.DefaultPageSize),
		zap.Int("max_page_size", cfg.MaxPageSize),
		zap.Bool("strict_validation", cfg.StrictValidation),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	switch c.ListingBackend {
	case BackendMock:
	case BackendRemoteStore:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the remote-store backend"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for the remote-store backend"))
		}
		if c.MinIOBucket == "" {
			errs = append(errs, errors.New("MINIO_BUCKET is required for the remote-store backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("LISTING_BACKEND %q is not one of %q, %q", c.ListingBackend, BackendMock, BackendRemoteStore))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.MaxPageSize < 1 {
		errs = append(errs, errors.New("MAX_PAGE_SIZE must be at least 1"))
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE (%d)", c.MaxPageSize))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}
