package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Env  string

	// AllowedOrigins is the CORS allowlist for the API server
	AllowedOrigins []string

	// ImportFeedURL is the external transaction feed consumed by the
	// bulk-import endpoint (server side)
	ImportFeedURL string

	// APIBaseURL is the ledger API the client talks to (client side)
	APIBaseURL string
}

// Load loads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "*")},
		ImportFeedURL:  getEnv("IMPORT_FEED_URL", ""),
		APIBaseURL:     getEnv("LEDGER_API_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable by either binary. The import
// feed URL is only required by the server and is checked at server startup.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("LEDGER_API_URL is required")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
