package game

import "errors"

var (
	ErrInvalidMove   = errors.New("invalid_move")
	ErrInvalidPile   = errors.New("invalid_pile")
	ErrCardsMismatch = errors.New("cards_mismatch")
)

// Move is the (cards, source, destination) triple handed to the engine.
type Move struct {
	Cards []Card
	From  PileRef
	To    PileRef
}

// CanPlaceOnFoundation reports whether card may land on a foundation whose
// top is top (nil for an empty pile).
func CanPlaceOnFoundation(card Card, top *Card) bool {
	if !card.FaceUp {
		return false
	}
	if top == nil {
		return card.Rank == Ace
	}
	return top.Suit == card.Suit && card.Rank == top.Rank+1
}

// CanPlaceOnTableau reports whether card may land on a tableau pile whose top
// is top (nil for an empty pile).
func CanPlaceOnTableau(card Card, top *Card) bool {
	if !card.FaceUp {
		return false
	}
	if top == nil {
		return card.Rank == King
	}
	return top.FaceUp && top.Color() != card.Color() && card.Rank == top.Rank-1
}

// CanDrop applies the placement rule of the destination kind to the leading
// card of a moving set. Foundations take single cards only.
func CanDrop(s GameState, cards []Card, to PileRef) bool {
	if len(cards) == 0 || !to.Valid() {
		return false
	}
	switch to.Kind {
	case PileFoundation:
		return len(cards) == 1 && CanPlaceOnFoundation(cards[0], s.Top(to))
	case PileTableau:
		return CanPlaceOnTableau(cards[0], s.Top(to))
	default:
		return false
	}
}

// MovableFrom returns the cards that would leave from when cardID is picked
// up: the top card of waste or a foundation, or the face-up run starting at
// cardID on a tableau pile. Stock cards never move this way.
func MovableFrom(s GameState, from PileRef, cardID string) ([]Card, bool) {
	if !from.Valid() {
		return nil, false
	}
	pile := s.Pile(from)
	switch from.Kind {
	case PileWaste, PileFoundation:
		top := topOf(pile)
		if top == nil || top.ID() != cardID {
			return nil, false
		}
		return []Card{*top}, true
	case PileTableau:
		for i, c := range pile {
			if c.ID() != cardID {
				continue
			}
			if !c.FaceUp {
				return nil, false
			}
			return clonePile(pile[i:]), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// ValidateMove is the check call sites run on a move composed from outside
// input before handing it to the engine.
func ValidateMove(s GameState, m Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return ErrInvalidPile
	}
	if len(m.Cards) == 0 {
		return ErrCardsMismatch
	}
	cards, ok := MovableFrom(s, m.From, m.Cards[0].ID())
	if !ok || len(cards) != len(m.Cards) {
		return ErrCardsMismatch
	}
	for i := range cards {
		if cards[i].ID() != m.Cards[i].ID() {
			return ErrCardsMismatch
		}
	}
	if !CanDrop(s, cards, m.To) {
		return ErrInvalidMove
	}
	return nil
}
