package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"klondike/internal/store"

	"github.com/rs/zerolog/log"
)

// ResultStore is the read side of result storage. A nil ResultStore means
// the server runs without a database.
type ResultStore interface {
	ListResults(ctx context.Context, limit, offset int) ([]store.Result, error)
	Stats(ctx context.Context) (store.Stats, error)
	Ping(ctx context.Context) error
}

type ResultHandlers struct {
	results ResultStore
}

func NewResultHandlers(results ResultStore) *ResultHandlers {
	return &ResultHandlers{results: results}
}

func (h *ResultHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.results == nil {
			WriteHTTPError(w, http.StatusNotFound, "store_disabled")
			return
		}
		metricResultsQueryTotal.Add(1)
		limit, offset := ParsePagination(r)
		items, err := h.results.ListResults(r.Context(), limit, offset)
		if err != nil {
			metricResultsQueryErrors.Add(1)
			log.Error().Err(err).Msg("list results failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *ResultHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.results == nil {
			WriteHTTPError(w, http.StatusNotFound, "store_disabled")
			return
		}
		metricResultsQueryTotal.Add(1)
		st, err := h.results.Stats(r.Context())
		if err != nil {
			metricResultsQueryErrors.Add(1)
			log.Error().Err(err).Msg("result stats failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, st)
	}
}

// Health reports liveness and, when a database is configured, whether it
// answers.
func (h *ResultHandlers) Health(games interface{ Len() int }) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"ok": true, "db": "disabled", "games": games.Len()}
		if h.results != nil {
			if err := h.results.Ping(r.Context()); err != nil {
				resp["ok"] = false
				resp["db"] = "down"
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(resp)
				return
			}
			resp["db"] = "up"
		}
		writeJSON(w, resp)
	}
}
