package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"klondike/internal/game/viewmodel"
	"klondike/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	baseURL := strings.TrimRight(getenv("SERVER_URL", "http://localhost:8080"), "/")

	gameID, err := createGame(baseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("create game failed")
	}
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/games/" + gameID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("dial failed")
	}
	defer conn.Close()

	p := newPlayer()
	pending := ""
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		if base.Type == ws.TypeEvent {
			var ev ws.EventMessage
			if err := json.Unmarshal(data, &ev); err == nil {
				log.Info().Str("event", string(ev.Event.Kind)).Int("moves", ev.Event.Moves).Msg(ev.Event.Message)
			}
			continue
		}
		var st ws.StateMessage
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		if st.Request != pending {
			continue
		}
		if pending != "" {
			p.observe(st.Changed)
		}
		if st.State.Won {
			log.Info().Int("moves", st.State.Moves).Msg("won")
			return
		}
		msg, ok := p.next(st.State)
		if !ok {
			log.Info().Int("moves", st.State.Moves).Msg("stuck; giving up")
			return
		}
		pending = msg.Type
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func createGame(baseURL string) (string, error) {
	resp, err := http.Post(baseURL+"/api/games", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create game: status %d", resp.StatusCode)
	}
	var body struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.GameID, nil
}

// player taps every exposed card toward the foundations and draws when none
// fits. It gives up after a full pass over stock and waste changes nothing.
type player struct {
	refused   map[string]bool
	lastCard  string
	idleDraws int
	finished  bool
}

func newPlayer() *player {
	return &player{refused: map[string]bool{}}
}

func (p *player) next(s viewmodel.BoardStateView) (ws.ClientMessage, bool) {
	if p.finished {
		return ws.ClientMessage{}, false
	}
	for _, id := range exposed(s) {
		if !p.refused[id] {
			p.lastCard = id
			return ws.ClientMessage{Type: ws.TypeAction, Action: "click", CardID: id}, true
		}
	}
	p.lastCard = ""
	if p.idleDraws > s.Stock.Count+s.Waste.Count {
		p.finished = true
		return ws.ClientMessage{Type: ws.TypeAction, Action: "autocomplete"}, true
	}
	p.idleDraws++
	return ws.ClientMessage{Type: ws.TypeAction, Action: "draw"}, true
}

// observe feeds back whether the last request changed the game.
func (p *player) observe(changed bool) {
	if p.lastCard == "" {
		if p.idleDraws > 0 {
			// A draw exposes a new waste card; earlier refusals may fit now.
			p.refused = map[string]bool{}
		}
		return
	}
	if changed {
		p.refused = map[string]bool{}
		p.idleDraws = 0
		return
	}
	p.refused[p.lastCard] = true
}

func exposed(s viewmodel.BoardStateView) []string {
	var ids []string
	if n := len(s.Waste.Cards); n > 0 && s.Waste.Cards[n-1].ID != "" {
		ids = append(ids, s.Waste.Cards[n-1].ID)
	}
	for _, pile := range s.Tableau {
		if n := len(pile.Cards); n > 0 && pile.Cards[n-1].FaceUp {
			ids = append(ids, pile.Cards[n-1].ID)
		}
	}
	return ids
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
