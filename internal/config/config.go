package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds settings read from the environment. Command-line flags
// override every field. The BackendURL default is the deployment the page
// was originally built against.
type Config struct {
	BackendURL   string        `env:"PROFILECARDS_BACKEND_URL"   envDefault:"https://me-api-playground-rlj9.onrender.com"`
	Timeout      time.Duration `env:"PROFILECARDS_TIMEOUT"       envDefault:"30s"`
	Addr         string        `env:"PROFILECARDS_ADDR"          envDefault:":8080"`
	Layout       string        `env:"PROFILECARDS_LAYOUT"        envDefault:"standard"`
	StrictStatus bool          `env:"PROFILECARDS_STRICT_STATUS" envDefault:"false"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("PROFILECARDS_TIMEOUT must be > 0, got %s", cfg.Timeout)
	}
	return cfg, nil
}
