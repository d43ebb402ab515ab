package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg, a pointer to a struct with `env` tags, from the
// process environment.
//
// Example:
//
//	type Config struct {
//	    HTTPPort   int           `env:"HTTP_PORT" envDefault:"8080"`
//	    SessionTTL time.Duration `env:"CHATBOT_SESSION_TTL" envDefault:"30m"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
