package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string        `env:"APP_ENV" envDefault:"production"`
	Port             string        `env:"PORT" envDefault:"8080"`
	DBPath           string        `env:"DB_PATH" envDefault:":memory:"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT"`
	PolicyFile       string        `env:"POLICY_FILE"`
	DefaultPolicy    string        `env:"DEFAULT_POLICY" envDefault:"ib-floor-v2"`
	InventorySources []string      `env:"INVENTORY_SOURCES" envSeparator:","`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	FetchMaxElapsed  time.Duration `env:"FETCH_MAX_ELAPSED" envDefault:"2m"`
	MetricsPrefix    string        `env:"METRICS_PREFIX" envDefault:"slabquote"`
	MinAreaSqFt      float64       `env:"MIN_AREA_SQFT"`
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LoggerFormat returns LOG_FORMAT, or "console" in development and "json"
// elsewhere when it is unset.
func (c Config) LoggerFormat() string {
	switch {
	case c.LogFormat != "":
		return c.LogFormat
	case c.IsDev():
		return "console"
	default:
		return "json"
	}
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	return LoadWithDotEnv(".env")
}

// LoadWithDotEnv loads KEY=VALUE pairs from path without overwriting variables
// already set, then parses the environment into a Config. A missing file is
// not an error.
func LoadWithDotEnv(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv %s: %w", path, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if cfg.MinAreaSqFt < 0 {
		return nil, fmt.Errorf("MIN_AREA_SQFT must not be negative")
	}

	return &cfg, nil
}
