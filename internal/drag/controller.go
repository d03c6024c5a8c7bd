package drag

import (
	"errors"

	"klondike/internal/game"
)

var (
	ErrUnknownCard  = errors.New("unknown_card")
	ErrNotDraggable = errors.New("not_draggable")
	ErrBusy         = errors.New("drag_in_progress")
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSelecting Phase = "selecting"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerDown is what an input adapter reports when a gesture starts: the
// touched card and where the pointer and the card's top-left corner are.
type PointerDown struct {
	CardID     string `json:"card_id"`
	Pointer    Point  `json:"pointer"`
	CardOrigin Point  `json:"card_origin"`
}

// Session is the transient state of one gesture. Cards is a copy taken at
// pickup and never aliases the live piles.
type Session struct {
	Cards    []game.Card
	Source   game.PileRef
	Offset   Point
	Position Point
	Target   *game.PileRef
}

// Origin is where the dragged stack should be drawn.
func (s Session) Origin() Point {
	return Point{X: s.Position.X - s.Offset.X, Y: s.Position.Y - s.Offset.Y}
}

// Controller turns one pointer gesture at a time into a candidate move. It
// never changes game state; Release hands the resolved move to the caller.
type Controller struct {
	session *Session
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) Phase() Phase {
	if c.session == nil {
		return PhaseIdle
	}
	return PhaseSelecting
}

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	out := *c.session
	out.Cards = append([]game.Card(nil), c.session.Cards...)
	if c.session.Target != nil {
		t := *c.session.Target
		out.Target = &t
	}
	return out, true
}

// Begin starts a gesture on the card named by ev. The card must be the top
// of the waste or a foundation, or a face-up tableau card, in which case the
// run above it comes along.
func (c *Controller) Begin(s game.GameState, ev PointerDown) error {
	if c.session != nil {
		return ErrBusy
	}
	ref, _, ok := s.Locate(ev.CardID)
	if !ok {
		return ErrUnknownCard
	}
	cards, ok := game.MovableFrom(s, ref, ev.CardID)
	if !ok {
		return ErrNotDraggable
	}
	c.session = &Session{
		Cards:    cards,
		Source:   ref,
		Offset:   Point{X: ev.Pointer.X - ev.CardOrigin.X, Y: ev.Pointer.Y - ev.CardOrigin.Y},
		Position: ev.Pointer,
	}
	return nil
}

// Move tracks the pointer. It reports false when no gesture is active.
func (c *Controller) Move(p Point) bool {
	if c.session == nil {
		return false
	}
	c.session.Position = p
	return true
}

// Hover marks ref as the drop candidate while entering; leaving clears it
// only when ref is the current candidate.
func (c *Controller) Hover(ref game.PileRef, entering bool) {
	if c.session == nil {
		return
	}
	if entering {
		target := ref
		c.session.Target = &target
		return
	}
	if c.session.Target != nil && *c.session.Target == ref {
		c.session.Target = nil
	}
}

// Release ends the gesture. When a candidate exists, the source still holds
// the picked-up cards and the placement rules accept them there, the move to
// commit is returned.
func (c *Controller) Release(s game.GameState) (game.Move, bool) {
	sess := c.session
	c.session = nil
	if sess == nil || sess.Target == nil || len(sess.Cards) == 0 {
		return game.Move{}, false
	}
	cards, ok := game.MovableFrom(s, sess.Source, sess.Cards[0].ID())
	if !ok || !sameCards(cards, sess.Cards) {
		return game.Move{}, false
	}
	if !game.CanDrop(s, cards, *sess.Target) {
		return game.Move{}, false
	}
	return game.Move{Cards: cards, From: sess.Source, To: *sess.Target}, true
}

func sameCards(a, b []game.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Cancel aborts the gesture without committing anything.
func (c *Controller) Cancel() {
	c.session = nil
}
