package game

import (
	"math/rand"
	"time"
)

type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds the 52-card product of the four suits and thirteen ranks,
// with ids assigned 0..51.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	id := 0
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{ID: id, Suit: suit, Rank: rank})
			id++
		}
	}
	return &Deck{Cards: cards}
}

// NewRand returns a time-seeded random source. Callers that need
// reproducible shuffles pass their own seeded *rand.Rand instead.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffled returns a new deck holding the same cards in a uniformly random
// permutation (Fisher-Yates with an inclusive upper bound at each step).
// The receiver is left untouched. A nil rng means time-seeded.
func (d *Deck) Shuffled(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = NewRand()
	}
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{Cards: cards}
}

func (d *Deck) Count() int {
	return len(d.Cards)
}

// Draw removes and returns the top n cards. The top of the deck is the tail
// of the slice. Asking for more cards than the deck holds is a caller
// contract violation and panics.
func (d *Deck) Draw(n int) (cards []Card) {
	for range n {
		card := d.Cards[len(d.Cards)-1]
		cards = append(cards, card)
		d.Cards = d.Cards[:len(d.Cards)-1]
	}
	return
}
