package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/philly/imageblog/internal/adapters/media"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/spf13/viper"
)

// Storage and media drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
	StorageDriverBadger   = "badger"

	MediaDriverCloudinary = "cloudinary"
	MediaDriverLocal      = "local"

	defaultPort           = "5000"
	defaultRateLimitBurst = 10
)

type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	Port          string `mapstructure:"PORT"` // Used when SERVER_ADDRESS is empty
	Environment   string `mapstructure:"ENVIRONMENT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"` // Logging level (debug, info, warn, error)

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	BadgerPath    string `mapstructure:"BADGER_PATH"` // Empty means in-memory

	MediaDriver      string `mapstructure:"MEDIA_DRIVER"`
	CloudName        string `mapstructure:"CLOUD_NAME"`
	CloudAPIKey      string `mapstructure:"CLOUD_API_KEY"`
	CloudAPISecret   string `mapstructure:"CLOUD_API_SECRET"`
	CloudinaryFolder string `mapstructure:"CLOUDINARY_FOLDER"`
	MediaLocalDir    string `mapstructure:"MEDIA_LOCAL_DIR"`
	PublicBaseURL    string `mapstructure:"PUBLIC_BASE_URL"`
	MediaMaxBytes    int64  `mapstructure:"MEDIA_MAX_BYTES"`

	AllowedOrigins string  `mapstructure:"ALLOWED_ORIGINS"` // Comma separated
	JWKSEndpoint   string  `mapstructure:"JWKS_ENDPOINT"`   // Empty leaves write endpoints open
	JWTIssuer      string  `mapstructure:"JWT_ISSUER"`      // Expected JWT issuer for validation
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	TrustProxy     bool    `mapstructure:"TRUST_PROXY_HEADERS"` // Only behind a proxy that overwrites X-Forwarded-For
}

func LoadConfig(bootstrapLogger *logger.BootstrapLogger) (Config, error) {
	ctx := context.Background()

	// Load .env file if it exists (godotenv will find it automatically)
	// It's okay if the file doesn't exist - we'll use environment variables
	if err := godotenv.Load(); err != nil {
		bootstrapLogger.Info(ctx, "no .env file found, using environment variables only")
	} else {
		bootstrapLogger.Info(ctx, "loaded .env file")
	}

	v := viper.New()

	// Every key needs a default so Unmarshal sees it through AutomaticEnv
	v.SetDefault("SERVER_ADDRESS", "")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("DATABASE_URL", "postgresql://localhost:5432/imageblog?sslmode=disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "imageblog")
	v.SetDefault("BADGER_PATH", "data/badger")
	v.SetDefault("MEDIA_DRIVER", MediaDriverCloudinary)
	v.SetDefault("CLOUD_NAME", "")
	v.SetDefault("CLOUD_API_KEY", "")
	v.SetDefault("CLOUD_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", media.DefaultCloudinaryFolder)
	v.SetDefault("MEDIA_LOCAL_DIR", "data/media")
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("MEDIA_MAX_BYTES", media.DefaultMaxBytes)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWKS_ENDPOINT", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", defaultRateLimitBurst)
	v.SetDefault("TRUST_PROXY_HEADERS", false)

	// Enable automatic environment variable reading
	// Viper will now see all environment variables, including those loaded by godotenv
	v.AutomaticEnv()

	// BADGER_PATH="" selects an in-memory store
	v.AllowEmptyEnv(true)

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		bootstrapLogger.Error(ctx, "failed to unmarshal configuration", "error", err)
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	config.normalize()

	bootstrapLogger.Info(ctx, "configuration loaded",
		"environment", config.Environment,
		"log_level", config.LogLevel,
		"server_address", config.ServerAddress,
		"storage_driver", config.StorageDriver,
		"media_driver", config.MediaDriver,
	)

	if err := config.Validate(); err != nil {
		bootstrapLogger.Error(ctx, "configuration validation failed", "error", err)
		return Config{}, err
	}

	bootstrapLogger.Info(ctx, "configuration validated successfully")
	return config, nil
}

// normalize fills values derived from other settings
func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.MediaDriver = strings.ToLower(strings.TrimSpace(c.MediaDriver))

	if c.ServerAddress == "" {
		port := c.Port
		if port == "" {
			port = defaultPort
		}
		c.ServerAddress = ":" + port
	}

	if c.PublicBaseURL == "" {
		host := c.ServerAddress
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		c.PublicBaseURL = "http://" + host
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	if c.MediaMaxBytes <= 0 {
		c.MediaMaxBytes = media.DefaultMaxBytes
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = defaultRateLimitBurst
	}
}

// Validate fails on missing settings for the selected drivers
func (c Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	case StorageDriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo storage driver"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for the mongo storage driver"))
		}
	case StorageDriverBadger:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.MediaDriver {
	case MediaDriverCloudinary:
		if c.CloudName == "" || c.CloudAPIKey == "" || c.CloudAPISecret == "" {
			errs = append(errs, errors.New("CLOUD_NAME, CLOUD_API_KEY and CLOUD_API_SECRET are required for the cloudinary media driver"))
		}
	case MediaDriverLocal:
		if c.MediaLocalDir == "" {
			errs = append(errs, errors.New("MEDIA_LOCAL_DIR is required for the local media driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_DRIVER %q", c.MediaDriver))
	}

	if c.JWTIssuer != "" && c.JWKSEndpoint == "" {
		errs = append(errs, errors.New("JWT_ISSUER is set but JWKS_ENDPOINT is empty"))
	}

	return errors.Join(errs...)
}
