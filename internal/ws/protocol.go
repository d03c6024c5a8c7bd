package ws

import (
	"klondike/internal/drag"
	"klondike/internal/game"
	"klondike/internal/game/viewmodel"
	"klondike/internal/notify"
)

const ProtocolVersion = "1.0"

// Inbound message types.
const (
	TypePointerDown   = "pointer_down"
	TypePointerMove   = "pointer_move"
	TypeHover         = "hover"
	TypePointerUp     = "pointer_up"
	TypePointerCancel = "pointer_cancel"
	TypeAction        = "action"
)

// Outbound message types.
const (
	TypeState = "state"
	TypeEvent = "event"
)

// ClientMessage is the union of everything a client may send; Type selects
// which fields are read.
type ClientMessage struct {
	Type       string        `json:"type"`
	CardID     string        `json:"card_id,omitempty"`
	Pointer    drag.Point    `json:"pointer"`
	CardOrigin drag.Point    `json:"card_origin"`
	Target     *game.PileRef `json:"target,omitempty"`
	Entering   bool          `json:"entering,omitempty"`
	Action     string        `json:"action,omitempty"`
}

type DragView struct {
	Cards  []string      `json:"cards"`
	Source game.PileRef  `json:"source"`
	Origin drag.Point    `json:"origin"`
	Target *game.PileRef `json:"target,omitempty"`
}

type StateMessage struct {
	Type            string                   `json:"type"`
	ProtocolVersion string                   `json:"protocol_version"`
	Request         string                   `json:"request,omitempty"`
	Changed         bool                     `json:"changed"`
	Error           string                   `json:"error,omitempty"`
	State           viewmodel.BoardStateView `json:"state"`
	Drag            *DragView                `json:"drag,omitempty"`
}

type EventMessage struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	EventID         string       `json:"event_id"`
	ServerTS        int64        `json:"server_ts"`
	Event           notify.Event `json:"event"`
}

func newDragView(s drag.Session) *DragView {
	ids := make([]string, 0, len(s.Cards))
	for _, c := range s.Cards {
		ids = append(ids, c.ID())
	}
	return &DragView{Cards: ids, Source: s.Source, Origin: s.Origin(), Target: s.Target}
}

func newEventMessage(rec notify.Record) EventMessage {
	return EventMessage{
		Type:            TypeEvent,
		ProtocolVersion: ProtocolVersion,
		EventID:         rec.EventID,
		ServerTS:        rec.ServerTS,
		Event:           rec.Event,
	}
}
