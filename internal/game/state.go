package game

import (
	"strconv"
	"time"
)

type PileKind string

const (
	PileStock      PileKind = "stock"
	PileWaste      PileKind = "waste"
	PileFoundation PileKind = "foundation"
	PileTableau    PileKind = "tableau"
)

const (
	FoundationCount = 4
	TableauCount    = 7
	RankCount       = 13
)

// PileRef addresses one pile. Index is ignored for stock and waste.
type PileRef struct {
	Kind  PileKind `json:"kind"`
	Index int      `json:"index"`
}

func Stock() PileRef { return PileRef{Kind: PileStock} }

func Waste() PileRef { return PileRef{Kind: PileWaste} }

func Foundation(i int) PileRef { return PileRef{Kind: PileFoundation, Index: i} }

func Tableau(i int) PileRef { return PileRef{Kind: PileTableau, Index: i} }

func (p PileRef) Valid() bool {
	n := p.Kind.count()
	return n > 0 && p.Index >= 0 && p.Index < n
}

func (p PileRef) String() string {
	return string(p.Kind) + "[" + strconv.Itoa(p.Index) + "]"
}

func (k PileKind) count() int {
	switch k {
	case PileStock, PileWaste:
		return 1
	case PileFoundation:
		return FoundationCount
	case PileTableau:
		return TableauCount
	default:
		return 0
	}
}

// GameState is treated as immutable: every engine operation returns a new
// value whose pile slices share nothing with its input.
type GameState struct {
	Stock       []Card
	Waste       []Card
	Foundations [FoundationCount][]Card
	Tableau     [TableauCount][]Card
	Moves       int
	StartTime   time.Time
	EndTime     time.Time
	Won         bool
}

func (s GameState) Clone() GameState {
	out := s
	out.Stock = clonePile(s.Stock)
	out.Waste = clonePile(s.Waste)
	for i := range s.Foundations {
		out.Foundations[i] = clonePile(s.Foundations[i])
	}
	for i := range s.Tableau {
		out.Tableau[i] = clonePile(s.Tableau[i])
	}
	return out
}

// Pile returns the cards of ref. The slice aliases s and must not be modified.
func (s GameState) Pile(ref PileRef) []Card {
	if !ref.Valid() {
		return nil
	}
	switch ref.Kind {
	case PileStock:
		return s.Stock
	case PileWaste:
		return s.Waste
	case PileFoundation:
		return s.Foundations[ref.Index]
	default:
		return s.Tableau[ref.Index]
	}
}

// Top returns the top card of ref, or nil when the pile is empty.
func (s GameState) Top(ref PileRef) *Card {
	return topOf(s.Pile(ref))
}

// Locate finds the pile and position of the card with the given id.
func (s GameState) Locate(cardID string) (PileRef, int, bool) {
	for _, ref := range AllPiles() {
		for i, c := range s.Pile(ref) {
			if c.ID() == cardID {
				return ref, i, true
			}
		}
	}
	return PileRef{}, 0, false
}

// CardCount is the number of cards across every pile.
func (s GameState) CardCount() int {
	n := 0
	for _, ref := range AllPiles() {
		n += len(s.Pile(ref))
	}
	return n
}

// Elapsed is the play time up to now, frozen once the game is won.
func (s GameState) Elapsed(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if !s.EndTime.IsZero() {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// AllPiles lists every pile in a fixed order: stock, waste, foundations, tableau.
func AllPiles() []PileRef {
	refs := make([]PileRef, 0, 2+FoundationCount+TableauCount)
	refs = append(refs, Stock(), Waste())
	for i := 0; i < FoundationCount; i++ {
		refs = append(refs, Foundation(i))
	}
	for i := 0; i < TableauCount; i++ {
		refs = append(refs, Tableau(i))
	}
	return refs
}

func (s *GameState) pileRef(ref PileRef) *[]Card {
	switch ref.Kind {
	case PileStock:
		return &s.Stock
	case PileWaste:
		return &s.Waste
	case PileFoundation:
		return &s.Foundations[ref.Index]
	default:
		return &s.Tableau[ref.Index]
	}
}

func clonePile(p []Card) []Card {
	if p == nil {
		return nil
	}
	return append(make([]Card, 0, len(p)), p...)
}

func topOf(p []Card) *Card {
	if len(p) == 0 {
		return nil
	}
	c := p[len(p)-1]
	return &c
}
