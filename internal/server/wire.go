//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"
	"github.com/philly/imageblog/internal/adapters/rest"
	"github.com/philly/imageblog/internal/adapters/rest/middleware"
	"github.com/philly/imageblog/internal/platform/eventbus"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/posts/application"
)

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		// Bootstrap phase
		logger.NewBootstrapLogger,
		LoadConfig,

		// Logger configuration
		provideLoggerConfig,
		logger.ProviderSet,

		// Storage and media selected by config
		ProvidePostRepository,
		NewMediaBackend,
		provideMediaStore,

		// Platform services
		eventbus.ProviderSet,

		// Application services
		application.ProviderSet,

		// REST handlers
		rest.ProviderSet,
		provideVersion,
		provideMaxMediaBytes,

		// Middleware
		provideJWTConfig,
		provideRateLimitConfig,
		middleware.ProviderSet,

		// HTTP Server
		NewHTTPServer,

		// App
		NewApp,
	)

	return nil, nil, nil
}
