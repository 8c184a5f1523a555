// Package cli loads the configuration of the workshop command-line client.
package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/report"
)

// Config is the client configuration.
type Config struct {
	Consumer consumer.Config
	Footer   report.Footer
	Verbose  bool `env:"WORKSHOP_VERBOSE" envDefault:"false"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
