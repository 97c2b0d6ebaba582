package middleware

import (
	"context"

	"github.com/google/wire"
	"github.com/philly/imageblog/internal/platform/logger"
)

// ProviderSet is the wire provider set for middleware components
var ProviderSet = wire.NewSet(
	ProvideJWTMiddleware,
	ProvideRateLimiter,
)

// JWTConfig carries the minimal settings needed to construct the JWT middleware
type JWTConfig struct {
	JWKS   string
	Issuer string
}

// RateLimitConfig carries the per-client request budget
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ProvideJWTMiddleware creates JWT middleware from JWTConfig. It returns nil
// when no JWKS endpoint is configured, leaving the API open.
func ProvideJWTMiddleware(ctx context.Context, cfg JWTConfig, log logger.Logger) (*JWTMiddleware, error) {
	if cfg.JWKS == "" {
		log.Warn(ctx, "JWKS_ENDPOINT not set, write endpoints are open")
		return nil, nil
	}
	return NewJWTMiddleware(ctx, cfg.JWKS, cfg.Issuer)
}

// ProvideRateLimiter creates the rate limiter and its cleanup
func ProvideRateLimiter(cfg RateLimitConfig) (*RateLimiter, func()) {
	rl := NewRateLimiter(cfg.RPS, cfg.Burst)
	return rl, rl.Close
}
