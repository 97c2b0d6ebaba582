package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/philly/imageblog/internal/platform/eventbus"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/posts/application"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server *http.Server
	bus    *eventbus.Bus
	logger logger.Logger
}

// NewApp takes the janitor so wire constructs it and its subscription
// exists before the first request.
func NewApp(server *http.Server, bus *eventbus.Bus, _ *application.MediaJanitor, log logger.Logger) *App {
	return &App{
		server: server,
		bus:    bus,
		logger: log,
	}
}

// Run starts the application and handles graceful shutdown
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "starting server", "addr", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to gracefully shutdown server: %w", err)
		}

		// Let pending compensations finish before storage closes
		if err := a.bus.Drain(shutdownCtx); err != nil {
			a.logger.Warn(shutdownCtx, "event handlers still running at shutdown", "error", err)
		}
	}

	a.logger.Info(context.Background(), "server stopped")
	return nil
}
