package board

import (
	"time"

	"klondike/internal/ads"
	"klondike/internal/drag"
	"klondike/internal/game"
	"klondike/internal/history"
	"klondike/internal/notify"
)

const hintMessage = "Look for cards you can move to the foundation piles"

type Options struct {
	GameID       string
	HistoryLimit int
	Sink         notify.Sink
	Ads          ads.Service
	Now          func() time.Time
}

// Board owns one live game: the current state, its undo history and the
// drag gesture in progress. It is not safe for concurrent use.
type Board struct {
	id      string
	engine  *game.Engine
	state   game.GameState
	history *history.History
	drag    *drag.Controller
	sink    notify.Sink
	ads     ads.Service
	now     func() time.Time

	games int
	wonAt time.Time
}

// New deals the first game.
func New(engine *game.Engine, opts Options) *Board {
	if opts.Sink == nil {
		opts.Sink = notify.Nop
	}
	if opts.Ads == nil {
		opts.Ads = ads.Disabled{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &Board{
		id:      opts.GameID,
		engine:  engine,
		history: history.New(opts.HistoryLimit),
		drag:    drag.NewController(),
		sink:    opts.Sink,
		ads:     opts.Ads,
		now:     opts.Now,
	}
	b.NewGame()
	return b
}

func (b *Board) ID() string { return b.id }

func (b *Board) State() game.GameState { return b.state }

func (b *Board) CanUndo() bool { return b.history.CanUndo() }

func (b *Board) CanRedo() bool { return b.history.CanRedo() }

// Games is how many games this board has dealt.
func (b *Board) Games() int { return b.games }

// NewGame deals a fresh layout and forgets the previous game's history.
// From the second game on an interstitial is requested; the deal never
// waits for it.
func (b *Board) NewGame() {
	b.drag.Cancel()
	b.history.Reset()
	b.state = b.engine.NewGame()
	b.wonAt = time.Time{}
	b.games++
	if b.games > 1 {
		b.ads.ShowInterstitial(nil)
	}
	b.emit(notify.KindNewGame, "")
}

// Draw turns the next stock card, or recycles the waste.
func (b *Board) Draw() bool {
	return b.commit(b.engine.Draw(b.state))
}

// StockTap is the click id for the stock pile itself. Snapshots hide stock
// card ids, so clients tap the pile rather than its top card.
const StockTap = "stock"

// Click handles a tap on cardID: StockTap or the stock top draws (or
// recycles an exhausted stock), an empty id with an exhausted stock
// recycles, and a face-up waste or tableau top that fits a foundation goes
// there.
func (b *Board) Click(cardID string) bool {
	s := b.state
	if cardID == StockTap {
		return b.Draw()
	}
	if top := s.Top(game.Stock()); top != nil && top.ID() == cardID {
		return b.Draw()
	}
	if cardID == "" {
		if len(s.Stock) == 0 && len(s.Waste) > 0 {
			return b.Draw()
		}
		return false
	}
	ref, _, ok := s.Locate(cardID)
	if !ok || (ref.Kind != game.PileWaste && ref.Kind != game.PileTableau) {
		return false
	}
	top := s.Top(ref)
	if top == nil || top.ID() != cardID || !top.FaceUp {
		return false
	}
	to, ok := game.FoundationFor(s, *top)
	if !ok {
		return false
	}
	return b.commit(b.engine.Apply(s, game.Move{Cards: []game.Card{*top}, From: ref, To: to}))
}

// Move commits a move composed outside the board after validating it
// against the current state.
func (b *Board) Move(m game.Move) error {
	if err := game.ValidateMove(b.state, m); err != nil {
		return err
	}
	// Callers may only know card ids; commit the cards as they lie.
	m.Cards, _ = game.MovableFrom(b.state, m.From, m.Cards[0].ID())
	b.commit(b.engine.Apply(b.state, m))
	return nil
}

// AutoComplete runs the greedy foundation pass.
func (b *Board) AutoComplete() bool {
	changed := b.commit(b.engine.AutoComplete(b.state))
	b.emit(notify.KindAutoComplete, "")
	return changed
}

func (b *Board) Undo() bool {
	b.drag.Cancel()
	prev, ok := b.history.Undo(b.state)
	if ok {
		b.state = prev
	}
	return ok
}

func (b *Board) Redo() bool {
	b.drag.Cancel()
	next, ok := b.history.Redo(b.state)
	if ok {
		b.state = next
	}
	return ok
}

// Hint redoes when an undone step is available. Otherwise it asks for a
// rewarded ad and raises a hint or a refusal; the game state is untouched
// either way.
func (b *Board) Hint() bool {
	if b.history.CanRedo() {
		return b.Redo()
	}
	id, moves := b.id, b.state.Moves
	sink, now := b.sink, b.now
	b.ads.ShowRewarded(func() {
		sink.Notify(notify.Event{Kind: notify.KindHint, GameID: id, Moves: moves, Message: hintMessage, At: now()})
	}, func() {
		sink.Notify(notify.Event{Kind: notify.KindHintRefused, GameID: id, Moves: moves, Message: "Watch the full ad to get a hint", At: now()})
	})
	return false
}

func (b *Board) PointerDown(ev drag.PointerDown) error {
	return b.drag.Begin(b.state, ev)
}

func (b *Board) PointerMove(p drag.Point) bool {
	return b.drag.Move(p)
}

func (b *Board) Hover(ref game.PileRef, entering bool) {
	b.drag.Hover(ref, entering)
}

// PointerUp ends the gesture and commits the dropped move when it is legal.
func (b *Board) PointerUp() bool {
	m, ok := b.drag.Release(b.state)
	if !ok {
		return false
	}
	return b.commit(b.engine.Apply(b.state, m))
}

func (b *Board) PointerCancel() {
	b.drag.Cancel()
}

// Drag exposes the active gesture, if any.
func (b *Board) Drag() (drag.Session, bool) {
	return b.drag.Session()
}

// commit records the current state and installs next when next differs.
// Every pile-changing transition bumps the move counter, so an unchanged
// counter means the action was rejected.
func (b *Board) commit(next game.GameState) bool {
	if next.Moves == b.state.Moves {
		return false
	}
	// A gesture picked up from the old state no longer describes the piles.
	b.drag.Cancel()
	b.history.Record(b.state)
	b.state = next
	if next.Won && b.wonAt.IsZero() {
		b.wonAt = next.EndTime
		b.emit(notify.KindWon, "Congratulations! You won!")
		b.ads.ShowInterstitial(nil)
	}
	return true
}

func (b *Board) emit(kind notify.Kind, msg string) {
	b.sink.Notify(notify.Event{Kind: kind, GameID: b.id, Moves: b.state.Moves, Message: msg, At: b.now()})
}
