package drag

import (
	"errors"
	"testing"

	"klondike/internal/game"
)

func up(s game.Suit, r game.Rank) game.Card { return game.Card{Suit: s, Rank: r, FaceUp: true} }
func down(s game.Suit, r game.Rank) game.Card { return game.Card{Suit: s, Rank: r} }

func fixture() game.GameState {
	var s game.GameState
	s.Stock = []game.Card{down(game.Clubs, game.Four)}
	s.Waste = []game.Card{up(game.Clubs, game.Two), up(game.Hearts, game.Six)}
	s.Foundations[0] = []game.Card{up(game.Spades, game.Ace)}
	s.Tableau[0] = []game.Card{down(game.Diamonds, game.King), up(game.Spades, game.Seven)}
	s.Tableau[1] = []game.Card{down(game.Spades, game.Nine), up(game.Clubs, game.Eight), up(game.Diamonds, game.Seven)}
	s.Tableau[2] = []game.Card{up(game.Hearts, game.Nine)}
	s.Tableau[3] = []game.Card{up(game.Spades, game.Two)}
	return s
}

func TestBeginFromWasteTop(t *testing.T) {
	c := NewController()
	s := fixture()
	err := c.Begin(s, PointerDown{CardID: "heart-6", Pointer: Point{X: 110, Y: 60}, CardOrigin: Point{X: 100, Y: 40}})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if c.Phase() != PhaseSelecting {
		t.Fatalf("phase = %s, want selecting", c.Phase())
	}
	sess, ok := c.Session()
	if !ok || len(sess.Cards) != 1 || sess.Source != game.Waste() {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.Offset != (Point{X: 10, Y: 20}) {
		t.Fatalf("offset = %+v", sess.Offset)
	}
}

func TestBeginRejectsNonTopAndHiddenCards(t *testing.T) {
	s := fixture()
	cases := []struct {
		id   string
		want error
	}{
		{"club-2", ErrNotDraggable},
		{"club-4", ErrNotDraggable},
		{"diamond-K", ErrNotDraggable},
		{"heart-Q", ErrUnknownCard},
	}
	for _, tc := range cases {
		c := NewController()
		if err := c.Begin(s, PointerDown{CardID: tc.id}); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.id, err, tc.want)
		}
		if c.Phase() != PhaseIdle {
			t.Fatalf("%s: controller left idle", tc.id)
		}
	}
}

func TestBeginTableauTakesRun(t *testing.T) {
	c := NewController()
	s := fixture()
	if err := c.Begin(s, PointerDown{CardID: "club-8"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	sess, _ := c.Session()
	if len(sess.Cards) != 2 || sess.Cards[1].ID() != "diamond-7" || sess.Source != game.Tableau(1) {
		t.Fatalf("unexpected run: %+v", sess)
	}
	if err := c.Begin(s, PointerDown{CardID: "heart-9"}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second begin err = %v, want busy", err)
	}
}

func TestSessionCardsAreSnapshots(t *testing.T) {
	c := NewController()
	s := fixture()
	if err := c.Begin(s, PointerDown{CardID: "club-8"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.Tableau[1][1].FaceUp = false
	sess, _ := c.Session()
	if !sess.Cards[0].FaceUp {
		t.Fatal("session shares storage with the pile")
	}
	sess.Cards[0].Rank = game.King
	again, _ := c.Session()
	if again.Cards[0].Rank != game.Eight {
		t.Fatal("Session() exposed internal storage")
	}
}

func TestMoveAndHoverDoNotCommit(t *testing.T) {
	c := NewController()
	s := fixture()
	if c.Move(Point{X: 1, Y: 1}) {
		t.Fatal("move while idle should report false")
	}
	c.Hover(game.Tableau(0), true)
	if _, ok := c.Session(); ok {
		t.Fatal("hover while idle created a session")
	}

	_ = c.Begin(s, PointerDown{CardID: "heart-6", Pointer: Point{X: 5, Y: 5}, CardOrigin: Point{X: 0, Y: 0}})
	if !c.Move(Point{X: 50, Y: 80}) {
		t.Fatal("move during drag should report true")
	}
	c.Hover(game.Tableau(0), true)
	sess, _ := c.Session()
	if sess.Position != (Point{X: 50, Y: 80}) || sess.Origin() != (Point{X: 45, Y: 75}) {
		t.Fatalf("unexpected position: %+v origin %+v", sess.Position, sess.Origin())
	}
	if sess.Target == nil || *sess.Target != game.Tableau(0) {
		t.Fatalf("expected tableau 0 target, got %v", sess.Target)
	}
	c.Hover(game.Tableau(2), false)
	if sess, _ := c.Session(); sess.Target == nil {
		t.Fatal("leaving a different pile cleared the target")
	}
	c.Hover(game.Tableau(0), false)
	if sess, _ := c.Session(); sess.Target != nil {
		t.Fatal("leaving the target pile should clear it")
	}
}

func TestReleaseOnValidTableau(t *testing.T) {
	c := NewController()
	s := fixture()
	_ = c.Begin(s, PointerDown{CardID: "heart-6"})
	c.Hover(game.Tableau(0), true)

	m, ok := c.Release(s)
	if !ok {
		t.Fatal("expected red six onto black seven to be accepted")
	}
	if m.From != game.Waste() || m.To != game.Tableau(0) || len(m.Cards) != 1 || m.Cards[0].ID() != "heart-6" {
		t.Fatalf("unexpected move: %+v", m)
	}
	if c.Phase() != PhaseIdle {
		t.Fatal("release should return to idle")
	}
}

func TestReleaseRejections(t *testing.T) {
	s := fixture()

	c := NewController()
	_ = c.Begin(s, PointerDown{CardID: "heart-6"})
	if _, ok := c.Release(s); ok {
		t.Fatal("release without a target must not produce a move")
	}

	c = NewController()
	_ = c.Begin(s, PointerDown{CardID: "heart-6"})
	c.Hover(game.Tableau(2), true)
	if _, ok := c.Release(s); ok {
		t.Fatal("red six on red nine must be rejected")
	}

	c = NewController()
	_ = c.Begin(s, PointerDown{CardID: "club-8"})
	c.Hover(game.Foundation(1), true)
	if _, ok := c.Release(s); ok {
		t.Fatal("foundation must refuse a two-card run")
	}

	c = NewController()
	_ = c.Begin(s, PointerDown{CardID: "spade-2"})
	c.Hover(game.Waste(), true)
	if _, ok := c.Release(s); ok {
		t.Fatal("waste is never a drop target")
	}
	if c.Phase() != PhaseIdle {
		t.Fatal("rejected release should still return to idle")
	}
}

func TestReleaseRejectsStaleSource(t *testing.T) {
	s := fixture()

	c := NewController()
	_ = c.Begin(s, PointerDown{CardID: "heart-6"})
	c.Hover(game.Tableau(0), true)
	drawn := s.Clone()
	drawn.Waste = append(drawn.Waste, up(game.Clubs, game.Four))
	drawn.Stock = nil
	if _, ok := c.Release(drawn); ok {
		t.Fatal("release after the waste top changed must be refused")
	}

	c = NewController()
	_ = c.Begin(s, PointerDown{CardID: "spade-2"})
	c.Hover(game.Foundation(0), true)
	moved := s.Clone()
	moved.Foundations[0] = append(moved.Foundations[0], up(game.Spades, game.Two))
	moved.Tableau[3] = nil
	if _, ok := c.Release(moved); ok {
		t.Fatal("release of a card that already left its pile must be refused")
	}

	c = NewController()
	_ = c.Begin(s, PointerDown{CardID: "club-8"})
	c.Hover(game.Tableau(2), true)
	shorter := s.Clone()
	shorter.Tableau[1] = shorter.Tableau[1][:2]
	if _, ok := c.Release(shorter); ok {
		t.Fatal("release of a run that changed under the gesture must be refused")
	}
}

func TestReleaseSingleCardToFoundation(t *testing.T) {
	c := NewController()
	s := fixture()
	_ = c.Begin(s, PointerDown{CardID: "spade-2"})
	c.Hover(game.Foundation(0), true)
	m, ok := c.Release(s)
	if !ok || m.To != game.Foundation(0) || m.From != game.Tableau(3) {
		t.Fatalf("expected spade two home, got %+v ok=%v", m, ok)
	}
}

func TestCancel(t *testing.T) {
	c := NewController()
	s := fixture()
	_ = c.Begin(s, PointerDown{CardID: "heart-6"})
	c.Hover(game.Tableau(0), true)
	c.Cancel()
	if c.Phase() != PhaseIdle {
		t.Fatal("cancel should return to idle")
	}
	if _, ok := c.Release(s); ok {
		t.Fatal("release after cancel must not produce a move")
	}
}
