package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"klondike/internal/config"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stdout
	file   *cappedFile
)

// Init configures the global zerolog logger. When cfg.File is set, lines go
// to stdout and to a size-capped file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var raw io.Writer = os.Stdout
	var fw *cappedFile
	if cfg.File != "" {
		w, err := openCappedFile(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		fw = w
		raw = io.MultiWriter(os.Stdout, w)
	}

	var console io.Writer = raw
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: raw}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	mu.Lock()
	if file != nil {
		_ = file.Close()
	}
	file = fw
	output = raw
	mu.Unlock()
	return nil
}

// Writer is the raw destination Init chose, for handlers that format their
// own lines such as the HTTP request logger.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	output = os.Stdout
	return err
}
