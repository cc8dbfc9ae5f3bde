package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/geohunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// RedisURL switches player location history to Redis so multiple
	// instances share it. Empty keeps the in-memory store.
	RedisURL string `env:"REDIS_URL"`

	// GoogleMapsAPIKey enables real POI lookup; empty uses fallback POIs.
	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	// AnthropicAPIKey enables generated narratives; empty uses templates.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
