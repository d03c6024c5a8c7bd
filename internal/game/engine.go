package game

import (
	"math/rand"
	"time"
)

// Engine applies Klondike transitions. It holds the random source for deals
// and the clock used for the start and end stamps; it owns no game state.
type Engine struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewEngine(rnd *rand.Rand, now func() time.Time) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{rnd: rnd, now: now}
}

// NewGame shuffles a fresh deck and deals it.
func (e *Engine) NewGame() GameState {
	return Deal(Shuffle(CreateDeck(), e.rnd), e.now())
}

// Deal lays out a shuffled deck. Cards are popped from the end of deck:
// round i gives one card to each of tableau piles i..6 and the card landing
// on pile i is turned up. What is left becomes the stock in deck order.
func Deal(deck []Card, start time.Time) GameState {
	rest := clonePile(deck)
	var s GameState
	for i := 0; i < TableauCount; i++ {
		for j := i; j < TableauCount; j++ {
			c := rest[len(rest)-1]
			rest = rest[:len(rest)-1]
			c.FaceUp = i == j
			s.Tableau[j] = append(s.Tableau[j], c)
		}
	}
	for i := range rest {
		rest[i].FaceUp = false
	}
	s.Stock = rest
	s.Waste = []Card{}
	for i := range s.Foundations {
		s.Foundations[i] = []Card{}
	}
	s.StartTime = start
	return s
}

// Draw turns the stock top onto the waste, or recycles the waste into the
// stock when the stock is empty. With both empty the state is returned as is.
func (e *Engine) Draw(s GameState) GameState {
	if len(s.Stock) == 0 {
		if len(s.Waste) == 0 {
			return s
		}
		next := s.Clone()
		stock := make([]Card, 0, len(s.Waste))
		for i := len(s.Waste) - 1; i >= 0; i-- {
			c := s.Waste[i]
			c.FaceUp = false
			stock = append(stock, c)
		}
		next.Stock = stock
		next.Waste = []Card{}
		next.Moves++
		return next
	}
	next := s.Clone()
	c := next.Stock[len(next.Stock)-1]
	next.Stock = next.Stock[:len(next.Stock)-1]
	c.FaceUp = true
	next.Waste = append(next.Waste, c)
	next.Moves++
	return next
}

// Apply performs m without checking legality; callers validate first.
// An empty card set leaves the state unchanged.
func (e *Engine) Apply(s GameState, m Move) GameState {
	if len(m.Cards) == 0 || !m.From.Valid() || !m.To.Valid() {
		return s
	}
	next := s.Clone()
	next.Moves++

	src := next.pileRef(m.From)
	switch m.From.Kind {
	case PileStock, PileWaste, PileFoundation:
		if len(*src) > 0 {
			*src = (*src)[:len(*src)-1]
		}
	case PileTableau:
		cut := -1
		for i, c := range *src {
			if c.ID() == m.Cards[0].ID() {
				cut = i
				break
			}
		}
		if cut >= 0 {
			*src = (*src)[:cut]
		}
		if n := len(*src); n > 0 && !(*src)[n-1].FaceUp {
			(*src)[n-1].FaceUp = true
		}
	}

	dst := next.pileRef(m.To)
	if m.To.Kind == PileFoundation {
		*dst = append(*dst, m.Cards[0])
	} else {
		*dst = append(*dst, m.Cards...)
	}
	return e.settle(next)
}

// IsWon reports whether every foundation holds a full suit.
func IsWon(s GameState) bool {
	for _, f := range s.Foundations {
		if len(f) != RankCount {
			return false
		}
	}
	return true
}

// AutoComplete greedily sends cards to the foundations until a full pass
// finds nothing to move. Tableau tops are tried left to right before the
// waste top, and foundations in index order. It is not a solver: it never
// makes a non-foundation move to free a buried card.
func (e *Engine) AutoComplete(s GameState) GameState {
	cur := s
	for {
		m, ok := nextFoundationMove(cur)
		if !ok {
			break
		}
		cur = e.Apply(cur, m)
	}
	return e.settle(cur)
}

func nextFoundationMove(s GameState) (Move, bool) {
	for i := 0; i < TableauCount; i++ {
		top := s.Top(Tableau(i))
		if top == nil || !top.FaceUp {
			continue
		}
		if to, ok := FoundationFor(s, *top); ok {
			return Move{Cards: []Card{*top}, From: Tableau(i), To: to}, true
		}
	}
	if top := s.Top(Waste()); top != nil {
		if to, ok := FoundationFor(s, *top); ok {
			return Move{Cards: []Card{*top}, From: Waste(), To: to}, true
		}
	}
	return Move{}, false
}

// FoundationFor returns the first foundation, in index order, that accepts card.
func FoundationFor(s GameState, card Card) (PileRef, bool) {
	for j := 0; j < FoundationCount; j++ {
		if CanPlaceOnFoundation(card, s.Top(Foundation(j))) {
			return Foundation(j), true
		}
	}
	return PileRef{}, false
}

// settle refreshes the won flag and stamps EndTime on the first win.
func (e *Engine) settle(s GameState) GameState {
	s.Won = IsWon(s)
	if s.Won && s.EndTime.IsZero() {
		s.EndTime = e.now()
	}
	return s
}
