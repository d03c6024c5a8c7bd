package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// TestConfig points store integration tests at a scratch database. Each test
// works in its own schema, so one database serves parallel runs.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

// LoadTest fails when TEST_POSTGRES_DSN is unset; callers skip on error.
func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return TestConfig{}, fmt.Errorf("load test config: %w", err)
	}
	return cfg, nil
}
