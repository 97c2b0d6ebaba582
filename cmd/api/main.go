package main

import (
	"context"
	"os"

	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/server"
)

func main() {
	ctx := context.Background()
	log := logger.NewBootstrapLogger()

	// Initialize the app with all dependencies wired
	app, cleanup, err := server.InitializeApp(ctx)
	if err != nil {
		log.Error(ctx, "failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		log.Error(ctx, "failed to run app", "error", err)
		cleanup()
		os.Exit(1)
	}
}
