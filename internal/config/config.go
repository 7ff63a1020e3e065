package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the listen address for the HTTP/websocket server.
	Addr string `env:"ADDR" envDefault:":8080"`
	// WSOrigins holds websocket origin patterns; empty means same-origin
	// only.
	WSOrigins []string `env:"WS_ORIGINS" envSeparator:","`
	// DevLog switches zap to its human-readable development encoder.
	DevLog bool `env:"DEV_LOG"`
}

// Load reads .env if one exists, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
