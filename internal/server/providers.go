package server

import (
	"github.com/philly/imageblog/internal/adapters/rest"
	"github.com/philly/imageblog/internal/adapters/rest/middleware"
	"github.com/philly/imageblog/internal/platform/logger"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

func provideVersion() rest.Version {
	return Version
}

// provideLoggerConfig creates logger config from server config
func provideLoggerConfig(config Config) logger.Config {
	return logger.Config{
		Environment: config.Environment,
		LogLevel:    config.LogLevel,
	}
}

func provideJWTConfig(config Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		JWKS:   config.JWKSEndpoint,
		Issuer: config.JWTIssuer,
	}
}

func provideRateLimitConfig(config Config) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	}
}

func provideMaxMediaBytes(config Config) rest.MaxMediaBytes {
	return rest.MaxMediaBytes(config.MediaMaxBytes)
}
