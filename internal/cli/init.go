// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/gagyebu and cmd/gagyebu-worker.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"gagyebu/internal/backend"
	"gagyebu/internal/config"
	applog "gagyebu/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging for the named component,
// honoring LOG_LEVEL, and sets it as the default logger.
func SetupLogger(component string) *applog.Logger {
	logger := applog.New(component, applog.ParseLevel(os.Getenv("LOG_LEVEL")))
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore creates the document store for the given backend type.
// Returns the store or exits the process on failure.
func OpenStore(ctx context.Context, logger *applog.Logger, factory *backend.Factory, t backend.Type, cfg *config.Config) *backend.Result {
	result, err := factory.Create(ctx, t, cfg)
	if err != nil {
		logger.Error("Failed to initialize document store", "error", err, "backend", string(t))
		os.Exit(1)
	}
	return result
}
