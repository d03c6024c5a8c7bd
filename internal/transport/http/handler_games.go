package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"klondike/internal/board"
	"klondike/internal/game"
	"klondike/internal/game/viewmodel"
	"klondike/internal/gateway"
	"klondike/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var errUnknownCard = errors.New("unknown_card")

type GameResponse struct {
	GameID  string                   `json:"game_id"`
	Changed bool                     `json:"changed"`
	Reason  string                   `json:"reason,omitempty"`
	State   viewmodel.BoardStateView `json:"state"`
}

type ClickRequest struct {
	CardID string `json:"card_id"`
}

type MoveRequest struct {
	Cards []string     `json:"cards"`
	From  game.PileRef `json:"from"`
	To    game.PileRef `json:"to"`
}

type GameHandlers struct {
	games *gateway.Coordinator
	ws    *ws.Server
}

func NewGameHandlers(games *gateway.Coordinator, wsSrv *ws.Server) *GameHandlers {
	return &GameHandlers{games: games, ws: wsSrv}
}

func (h *GameHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.games.CreateGame(r.Context())
		if err != nil {
			status, code := MapGameError(err)
			WriteHTTPError(w, status, code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(GameResponse{GameID: view.GameID, State: view})
	}
}

func (h *GameHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "game_id")
		view, err := h.games.Snapshot(r.Context(), id)
		if err != nil {
			status, code := MapGameError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, GameResponse{GameID: id, State: view})
	}
}

func (h *GameHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.games.Close(r.Context(), chi.URLParam(r, "game_id")); err != nil {
			status, code := MapGameError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

// Action runs one of the body-less board actions named by the route.
func (h *GameHandlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := gateway.Action(chi.URLParam(r, "action"))
		if action == gateway.ActionClick {
			WriteHTTPError(w, http.StatusNotFound, "unknown_action")
			return
		}
		h.run(w, r, func(b *board.Board) (bool, error) {
			return gateway.Dispatch(b, action, "")
		})
	}
}

func (h *GameHandlers) Click() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClickRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		h.run(w, r, func(b *board.Board) (bool, error) {
			return b.Click(req.CardID), nil
		})
	}
}

// Move submits a composed move. A move the rules refuse is answered with
// changed=false; a move that does not describe the board is a 400.
func (h *GameHandlers) Move() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		m, err := req.toMove()
		if err != nil {
			status, code := MapGameError(err)
			WriteHTTPError(w, status, code)
			return
		}
		h.run(w, r, func(b *board.Board) (bool, error) {
			before := b.State().Moves
			if err := b.Move(m); err != nil {
				return false, err
			}
			return b.State().Moves != before, nil
		})
	}
}

func (h *GameHandlers) WS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ws.HandleGame(w, r, chi.URLParam(r, "game_id")); err != nil {
			status, code := MapGameError(err)
			WriteHTTPError(w, status, code)
		}
	}
}

func (h *GameHandlers) run(w http.ResponseWriter, r *http.Request, fn func(b *board.Board) (bool, error)) {
	id := chi.URLParam(r, "game_id")
	metricGameActionTotal.Add(1)
	var changed bool
	view, err := h.games.Do(r.Context(), id, func(b *board.Board) error {
		var err error
		changed, err = fn(b)
		return err
	})
	resp := GameResponse{GameID: id, Changed: changed, State: view}
	switch {
	case err == nil:
	case errors.Is(err, game.ErrInvalidMove):
		resp.Reason = "invalid_move"
	default:
		metricGameActionErrors.Add(1)
		status, code := MapGameError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("game_id", id).Msg("game action failed")
		}
		WriteHTTPError(w, status, code)
		return
	}
	writeJSON(w, resp)
}

func (m MoveRequest) toMove() (game.Move, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return game.Move{}, game.ErrInvalidPile
	}
	if len(m.Cards) == 0 {
		return game.Move{}, game.ErrCardsMismatch
	}
	cards := make([]game.Card, 0, len(m.Cards))
	for _, id := range m.Cards {
		c, ok := game.ParseCardID(id)
		if !ok {
			return game.Move{}, errUnknownCard
		}
		cards = append(cards, c)
	}
	return game.Move{Cards: cards, From: m.From, To: m.To}, nil
}
