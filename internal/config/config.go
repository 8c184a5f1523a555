package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/workshopai/internal/mailer"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/provider/openai"
	"github.com/davidbz/workshopai/internal/ratelimit"
)

// Config represents the workshop server configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Qwen      openai.Config
	Echo      EchoConfig
	RateLimit ratelimit.Config
	Mailer    mailer.Config
	Log       observability.LogConfig
}

// ServerConfig contains HTTP server settings.
// A zero WriteTimeout leaves streamed responses unbounded.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"0"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// EchoConfig toggles the offline echo provider.
type EchoConfig struct {
	Enabled bool `env:"ECHO_PROVIDER_ENABLED" envDefault:"false"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Server    *ServerConfig
	CORS      *CORSConfig
	Qwen      *openai.Config
	Echo      *EchoConfig
	RateLimit *ratelimit.Config
	Mailer    *mailer.Config
	Log       *observability.LogConfig
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Out:       dig.Out{},
		Server:    &cfg.Server,
		CORS:      &cfg.CORS,
		Qwen:      &cfg.Qwen,
		Echo:      &cfg.Echo,
		RateLimit: &cfg.RateLimit,
		Mailer:    &cfg.Mailer,
		Log:       &cfg.Log,
	}
}
