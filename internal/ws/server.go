package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"klondike/internal/board"
	"klondike/internal/drag"
	"klondike/internal/game"
	"klondike/internal/gateway"
)

var errUnknownMessage = errors.New("unknown_message")

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 32
)

type Client struct {
	conn   *websocket.Conn
	gameID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Server streams one game per connection: pointer input in, state and
// event frames out.
type Server struct {
	coord    *gateway.Coordinator
	upgrader websocket.Upgrader
}

func NewServer(coord *gateway.Coordinator) *Server {
	return &Server{
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// HandleGame upgrades the request and serves gameID until either side hangs
// up. An unknown game is reported before the upgrade so the caller can
// answer with a plain HTTP error.
func (s *Server) HandleGame(w http.ResponseWriter, r *http.Request, gameID string) error {
	events, unsubscribe, err := s.coord.Subscribe(gameID)
	if err != nil {
		return err
	}
	replay, err := s.coord.Replay(gameID, r.URL.Query().Get("last_event_id"))
	if err != nil {
		unsubscribe()
		return err
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		// Upgrade already answered the request.
		return nil
	}
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)
	defer metricWSConnectionsActive.Add(-1)

	c := &Client{conn: conn, gameID: gameID, send: make(chan []byte, sendBuffer)}
	done := make(chan struct{})
	go s.writeLoop(c, done)

	c.enqueue(s.handle(r.Context(), gameID, ClientMessage{}))
	for _, rec := range replay {
		c.enqueue(newEventMessage(rec))
	}
	go func() {
		for rec := range events {
			c.enqueue(newEventMessage(rec))
		}
		// The game is gone; end the read loop too.
		_ = conn.Close()
	}()

	s.readLoop(r.Context(), c)
	unsubscribe()
	c.close()
	<-done
	_ = conn.Close()
	log.Debug().Str("game_id", gameID).Msg("ws client disconnected")
	return nil
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			out := s.handle(ctx, c.gameID, ClientMessage{})
			out.Error = "invalid_json"
			c.enqueue(out)
			continue
		}
		out := s.handle(ctx, c.gameID, msg)
		c.enqueue(out)
		if out.Error == gateway.ErrGameNotFound.Error() {
			return
		}
	}
}

func (s *Server) writeLoop(c *Client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies msg to the game and describes the result. An empty Type
// only reads the current state.
func (s *Server) handle(ctx context.Context, gameID string, msg ClientMessage) StateMessage {
	out := StateMessage{Type: TypeState, ProtocolVersion: ProtocolVersion, Request: msg.Type}
	view, err := s.coord.Do(ctx, gameID, func(b *board.Board) error {
		changed, err := apply(b, msg)
		out.Changed = changed
		if sess, ok := b.Drag(); ok {
			out.Drag = newDragView(sess)
		}
		return err
	})
	out.State = view
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func apply(b *board.Board, msg ClientMessage) (bool, error) {
	switch msg.Type {
	case "":
		return false, nil
	case TypePointerDown:
		return false, b.PointerDown(drag.PointerDown{CardID: msg.CardID, Pointer: msg.Pointer, CardOrigin: msg.CardOrigin})
	case TypePointerMove:
		b.PointerMove(msg.Pointer)
		return false, nil
	case TypeHover:
		if msg.Target == nil || !msg.Target.Valid() {
			return false, game.ErrInvalidPile
		}
		b.Hover(*msg.Target, msg.Entering)
		return false, nil
	case TypePointerUp:
		return b.PointerUp(), nil
	case TypePointerCancel:
		b.PointerCancel()
		return false, nil
	case TypeAction:
		return gateway.Dispatch(b, gateway.Action(msg.Action), msg.CardID)
	default:
		return false, errUnknownMessage
	}
}

// enqueue drops frames for a client that cannot keep up rather than stall
// the game.
func (c *Client) enqueue(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("game_id", c.gameID).Msg("encode ws frame failed")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		metricWSFramesDropped.Add(1)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
