package viewmodel

import (
	"time"

	"klondike/internal/game"
)

type CardView struct {
	ID     string `json:"id,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Color  string `json:"color,omitempty"`
	FaceUp bool   `json:"face_up"`
}

type PileView struct {
	Kind  string     `json:"kind"`
	Index int        `json:"index"`
	Count int        `json:"count"`
	Cards []CardView `json:"cards"`
}

type BoardStateView struct {
	GameID      string     `json:"game_id"`
	Stock       PileView   `json:"stock"`
	Waste       PileView   `json:"waste"`
	Foundations []PileView `json:"foundations"`
	Tableau     []PileView `json:"tableau"`
	Moves       int        `json:"moves"`
	StartedAt   int64      `json:"started_at_ms"`
	EndedAt     int64      `json:"ended_at_ms,omitempty"`
	ElapsedMS   int64      `json:"elapsed_ms"`
	Won         bool       `json:"won"`
	CanUndo     bool       `json:"can_undo"`
	CanRedo     bool       `json:"can_redo"`
}

// HistoryFlags carries the undo/redo availability shown next to the board.
type HistoryFlags struct {
	CanUndo bool
	CanRedo bool
}

// BuildBoardState renders s for a client. Face-down cards keep their slot but
// not their identity; revealHidden turns that masking off for debugging.
func BuildBoardState(gameID string, s game.GameState, flags HistoryFlags, now time.Time, revealHidden bool) BoardStateView {
	out := BoardStateView{
		GameID:      gameID,
		Stock:       buildPile(game.Stock(), s.Stock, revealHidden),
		Waste:       buildPile(game.Waste(), s.Waste, revealHidden),
		Foundations: make([]PileView, 0, game.FoundationCount),
		Tableau:     make([]PileView, 0, game.TableauCount),
		Moves:       s.Moves,
		ElapsedMS:   s.Elapsed(now).Milliseconds(),
		Won:         s.Won,
		CanUndo:     flags.CanUndo,
		CanRedo:     flags.CanRedo,
	}
	for i := range s.Foundations {
		out.Foundations = append(out.Foundations, buildPile(game.Foundation(i), s.Foundations[i], revealHidden))
	}
	for i := range s.Tableau {
		out.Tableau = append(out.Tableau, buildPile(game.Tableau(i), s.Tableau[i], revealHidden))
	}
	if !s.StartTime.IsZero() {
		out.StartedAt = s.StartTime.UnixMilli()
	}
	if !s.EndTime.IsZero() {
		out.EndedAt = s.EndTime.UnixMilli()
	}
	return out
}

func buildPile(ref game.PileRef, cards []game.Card, revealHidden bool) PileView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, buildCard(c, revealHidden))
	}
	return PileView{Kind: string(ref.Kind), Index: ref.Index, Count: len(cards), Cards: views}
}

func buildCard(c game.Card, revealHidden bool) CardView {
	if !c.FaceUp && !revealHidden {
		return CardView{}
	}
	return CardView{
		ID:     c.ID(),
		Suit:   c.Suit.String(),
		Rank:   c.Rank.String(),
		Color:  string(c.Color()),
		FaceUp: c.FaceUp,
	}
}
