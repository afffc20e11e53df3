// Package cli consolidates bootstrap code shared by the spendtrack binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"spendtrack/internal/config"
	applog "spendtrack/internal/log"
	"spendtrack/internal/settings"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging from the LOG_LEVEL environment
// variable and installs the result as the slog default.
func SetupLogger() *applog.Logger {
	return applog.Setup(os.Getenv("LOG_LEVEL"))
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

// OpenSettings opens the settings database at dbPath.
// Returns the store or exits the process on failure.
func OpenSettings(logger *applog.Logger, dbPath string) *settings.Store {
	store, err := settings.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open settings database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
