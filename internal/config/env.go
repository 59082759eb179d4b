package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment. ServerAddr, when
// set, overrides server.address from the config file.
type Env struct {
	ConfigPath   string `env:"ARENA_CONFIG" envDefault:"./arena_config.json"`
	DatabasePath string `env:"ARENA_DB" envDefault:"./data/arena.db"`
	ServerAddr   string `env:"ARENA_ADDR"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	StaleScan    string `env:"ARENA_STALE_SCAN" envDefault:"0 * * * * *"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	err := ParseEnv(&e)
	return e, err
}
