// Package config provides the shared environment-variable loader used by
// service configuration packages.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from environment variables according to its `env`
// struct tags. cfg must be a pointer to a struct.
//
// Example:
//
//	type Config struct {
//	    HTTPPort int    `env:"BOOKLOG_HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
