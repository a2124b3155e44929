// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port    int  `env:"PORT" envDefault:"8080"`
	Verbose bool `env:"VERBOSE" envDefault:"false"`

	// StorageBackend selects where entities live: "memory" for throwaway
	// development runs, "sqlite" for anything that should survive a restart.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DBPath         string `env:"DB_PATH" envDefault:"data/painpal.db"`

	// IdentityJWTSecret enables verified authentication. When empty the
	// server runs in development mode and trusts the X-Identity-UID header.
	IdentityJWTSecret string `env:"IDENTITY_JWT_SECRET"`

	// Companion model access. An empty API key disables the companion
	// endpoints (they return errors); everything else still works.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %q or %q)",
			cfg.StorageBackend, BackendMemory, BackendSQLite)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}

	return cfg, nil
}
