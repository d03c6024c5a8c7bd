package game

import (
	"math/rand"
	"time"
)

type Suit int

type Rank int

type Color string

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const (
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

const (
	Red   Color = "red"
	Black Color = "black"
)

const DeckSize = 52

var suitNames = map[Suit]string{Hearts: "heart", Diamonds: "diamond", Clubs: "club", Spades: "spade"}

var rankNames = map[Rank]string{
	Ace: "A", Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
	Eight: "8", Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K",
}

func (s Suit) String() string { return suitNames[s] }

func (r Rank) String() string { return rankNames[r] }

func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Card is a value; FaceUp belongs to the state the card sits in.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// ID is the card's identity and never changes, e.g. "heart-A".
func (c Card) ID() string {
	return c.Suit.String() + "-" + c.Rank.String()
}

func (c Card) Color() Color { return c.Suit.Color() }

func (c Card) String() string { return c.ID() }

// CreateDeck returns the canonical deck, face-down, suit-major and rank-ascending.
func CreateDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for s := Hearts; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return cards
}

// Shuffle returns a Fisher-Yates permutation of deck. The input is left untouched.
func Shuffle(deck []Card, rnd *rand.Rand) []Card {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	out := append([]Card(nil), deck...)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ParseCardID is the inverse of Card.ID. The returned card is face-down.
func ParseCardID(id string) (Card, bool) {
	for s, sn := range suitNames {
		prefix := sn + "-"
		if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
			continue
		}
		for r, rn := range rankNames {
			if id[len(prefix):] == rn {
				return Card{Suit: s, Rank: r}, true
			}
		}
	}
	return Card{}, false
}
