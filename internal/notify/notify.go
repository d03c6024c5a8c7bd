package notify

import (
	"time"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindNewGame      Kind = "new_game"
	KindAutoComplete Kind = "auto_complete"
	KindWon          Kind = "won"
	KindHint         Kind = "hint"
	KindHintRefused  Kind = "hint_refused"
)

// Event is an observational outcome of a board action.
type Event struct {
	Kind    Kind      `json:"kind"`
	GameID  string    `json:"game_id"`
	Moves   int       `json:"moves"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Sink receives events. Implementations must be safe for concurrent use and
// must not block: ad callbacks can publish from other goroutines.
type Sink interface {
	Notify(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Notify(ev Event) { f(ev) }

type nop struct{}

func (nop) Notify(Event) {}

// Nop discards every event.
var Nop Sink = nop{}

type multi []Sink

func (m multi) Notify(ev Event) {
	for _, s := range m {
		s.Notify(ev)
	}
}

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// LogSink writes events to a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Notify(ev Event) {
	s.Logger.Info().
		Str("event", string(ev.Kind)).
		Str("game_id", ev.GameID).
		Int("moves", ev.Moves).
		Str("message", ev.Message).
		Msg("game event")
}
