package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// PostgresDSN is optional; an empty value runs without result storage.
	PostgresDSN string `env:"POSTGRES_DSN"`

	GameIdleTTL     time.Duration `env:"GAME_IDLE_TTL" envDefault:"30m"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"500"`
	EventBufferSize int           `env:"EVENT_BUFFER_SIZE" envDefault:"200"`

	// ShuffleSeed fixes the deal sequence when non-zero.
	ShuffleSeed int64 `env:"SHUFFLE_SEED" envDefault:"0"`

	AdsDeadline time.Duration `env:"ADS_DEADLINE" envDefault:"5s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
