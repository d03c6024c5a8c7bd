package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// SampleEvery keeps one line in N when greater than one.
	SampleEvery int `env:"LOG_SAMPLE_EVERY" envDefault:"0"`

	// File, when set, receives a copy of every line; it is truncated once
	// it grows past MaxMB.
	File  string `env:"LOG_FILE"`
	MaxMB int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return LogConfig{}, err
	}
	if cfg.SampleEvery < 0 {
		return LogConfig{}, fmt.Errorf("LOG_SAMPLE_EVERY must not be negative, got %d", cfg.SampleEvery)
	}
	if cfg.File != "" && cfg.MaxMB <= 0 {
		return LogConfig{}, fmt.Errorf("LOG_MAX_MB must be positive, got %d", cfg.MaxMB)
	}
	return cfg, nil
}
