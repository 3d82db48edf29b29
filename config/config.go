package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// StorageBackend selects between the in-memory store and MongoDB. The
	// choice is invisible past the repository interfaces.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory" validate:"oneof=memory mongodb"`
	MongoURI       string `env:"MONGO_URI" validate:"required_if=StorageBackend mongodb"`
	MongoDatabase  string `env:"MONGO_DATABASE" envDefault:"todoapp"`

	JWTSecret         string `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTIssuer         string `env:"JWT_ISSUER" envDefault:"todo-app"`
	JWTAudience       string `env:"JWT_AUDIENCE" envDefault:"todo-app"`
	JWTExpiresMinutes int    `env:"JWT_EXPIRES_MINUTES" envDefault:"60" validate:"min=1,max=1440"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
