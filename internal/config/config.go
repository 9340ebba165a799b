package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	Port              string        `env:"PORT"                envDefault:"8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    envDefault:"10s"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"./data/dongyar.db"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Presentation
	Locale   string `env:"LOCALE"   envDefault:"fa"`
	Currency string `env:"CURRENCY" envDefault:"toman"`

	// Authentication (optional - leave empty to disable)
	AuthSecret string        `env:"AUTH_SECRET" envDefault:""`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"24h"`
}

// AuthEnabled reports whether saved settlements require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// Load reads the given dotenv files (".env" when none are given) and then
// parses configuration from the environment. Missing dotenv files are
// ignored; variables already set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
