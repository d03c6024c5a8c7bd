package httptransport

import (
	"expvar"
	"net/http"
	"sort"
	"strings"

	"klondike/internal/gateway"
	"klondike/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter mounts the game API. results may be nil when no database is
// configured; the result routes then answer store_disabled.
func NewRouter(games *gateway.Coordinator, results ResultStore) *chi.Mux {
	gameHandlers := NewGameHandlers(games, ws.NewServer(games))
	resultHandlers := NewResultHandlers(results)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", resultHandlers.Health(games))

	r.Route("/api", func(r chi.Router) {
		// Hijacked connections bypass the request logger.
		r.Get("/games/{game_id}/ws", gameHandlers.WS())

		r.Group(func(r chi.Router) {
			r.Use(APILogMiddleware())
			r.Post("/games", gameHandlers.Create())
			r.Get("/games/{game_id}", gameHandlers.Get())
			r.Delete("/games/{game_id}", gameHandlers.Delete())

			r.Group(func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Post("/games/{game_id}/click", gameHandlers.Click())
				r.Post("/games/{game_id}/moves", gameHandlers.Move())
				r.Post("/games/{game_id}/{action}", gameHandlers.Action())
			})

			r.Get("/results", resultHandlers.List())
			r.Get("/results/stats", resultHandlers.Stats())

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	})
	return r
}

// LogRoutes logs every registered method and pattern, sorted by path.
func LogRoutes(r chi.Router) {
	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, route+" "+method)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Strings(routes)
	for i, rt := range routes {
		path, method, _ := strings.Cut(rt, " ")
		routes[i] = method + " " + path
	}
	log.Info().Int("count", len(routes)).Strs("routes", routes).Msg("registered routes")
}
