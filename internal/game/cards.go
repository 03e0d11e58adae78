package game

import (
	"fmt"
	"strings"
)

type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in its fixed enumeration order. Tie-breaks that
// depend on suit order iterate this slice.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitString = map[Suit]string{
	Hearts:   "Hearts",
	Diamonds: "Diamonds",
	Clubs:    "Clubs",
	Spades:   "Spades",
}

func (s Suit) String() string {
	return suitString[s]
}

// ParseSuit converts a suit name (any casing) back to a Suit.
func ParseSuit(name string) (Suit, error) {
	for suit, str := range suitString {
		if strings.EqualFold(name, str) {
			return suit, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

type Rank int

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank of a standard deck.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// WildRank is always playable and lets its player nominate the active suit.
const WildRank = Eight

var rankString = map[Rank]string{
	Ace:   "Ace",
	Two:   "Two",
	Three: "Three",
	Four:  "Four",
	Five:  "Five",
	Six:   "Six",
	Seven: "Seven",
	Eight: "Eight",
	Nine:  "Nine",
	Ten:   "Ten",
	Jack:  "Jack",
	Queen: "Queen",
	King:  "King",
}

func (r Rank) String() string {
	return rankString[r]
}

// Card is an immutable playing card. ID is unique within one deck instance
// and is the sole key for hand membership and removal; two decks can hold
// logically identical cards with different ids.
type Card struct {
	ID   int  `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank.String(), c.Suit.String())
}

func (c Card) IsWild() bool {
	return c.Rank == WildRank
}
