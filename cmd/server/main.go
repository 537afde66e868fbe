package main

import (
	"context"
	"os"

	"github.com/nfrund/clashhub/internal/config"
	"github.com/nfrund/clashhub/internal/logging"
	"github.com/nfrund/clashhub/internal/server"
)

func main() {
	logger := logging.New()

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Create a new server instance.
	s, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	// Register all application routes.
	s.RegisterRoutes()

	// Start the server.
	if err := s.Start(ctx, cfg.GetServerAddr()); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
