package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"klondike/internal/ads"
	"klondike/internal/config"
	"klondike/internal/gateway"
	"klondike/internal/logging"
	"klondike/internal/notify"
	"klondike/internal/store"
	httptransport "klondike/internal/transport/http"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	coord *gateway.Coordinator
	store *store.Store
	http  *http.Server
}

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logging.Close() }()

	srv, err := newServer(context.Background(), cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv.coord.StartJanitor(ctx, cfg.Server.JanitorInterval, cfg.Server.GameIdleTTL)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		errCh <- srv.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	}
	srv.shutdown()
}

// newServer wires the coordinator, the optional result store and the router.
func newServer(ctx context.Context, cfg config.ServerConfig) (*server, error) {
	opts := gateway.Options{
		HistoryLimit:    cfg.HistoryLimit,
		EventBufferSize: cfg.EventBufferSize,
		ShuffleSeed:     cfg.ShuffleSeed,
		Ads:             ads.WithDeadline(ads.Disabled{}, cfg.AdsDeadline),
		Sink:            notify.LogSink{Logger: log.Logger},
	}

	var st *store.Store
	// Interfaces stay nil when storage is off so handlers see "disabled".
	var results httptransport.ResultStore
	if cfg.PostgresDSN != "" {
		var err error
		st, err = store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		opts.Recorder = st
		results = st
	} else {
		log.Warn().Msg("POSTGRES_DSN not set; game results will not be stored")
	}

	coord := gateway.NewCoordinator(opts)
	r := httptransport.NewRouter(coord, results)
	httptransport.LogRoutes(r)

	return &server{
		coord: coord,
		store: st,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

func (s *server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	s.coord.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	log.Info().Msg("server stopped")
}
