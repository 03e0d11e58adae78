// Package eights implements the rules engine for a two-player game of
// Crazy Eights: one human seat and one automated opponent. The engine owns
// both hands, the draw and discard piles, the active suit override, turn
// ownership and the game phase. Every mutating operation validates the
// caller's intent, applies it atomically (including the win check and the
// draw-pile recycle check) and returns a fresh Snapshot; refused intents
// come back as Rejection values and leave the state alone.
package eights

import (
	"fmt"
	"math/rand"

	"eights-server/internal/game"
)

type Player string

const (
	Human    Player = "player"
	Computer Player = "computer"
)

func (p Player) other() Player {
	if p == Human {
		return Computer
	}
	return Human
}

type Phase string

const (
	PhaseNotStarted   Phase = "not_started"
	PhaseInProgress   Phase = "in_progress"
	PhaseAwaitingSuit Phase = "awaiting_suit_choice"
	PhaseFinished     Phase = "finished"
)

const handSize = 8

// Game is the authoritative state of one match. Zero games are not usable;
// construct with NewGame or NewGameFromDeck, then call Start.
type Game struct {
	hands       map[Player][]game.Card
	drawPile    *game.Deck
	discardPile []game.Card
	activeSuit  *game.Suit
	turn        Player
	phase       Phase
	winner      *Player
	lastEvent   string

	rng     *rand.Rand
	stacked *game.Deck // pre-ordered deck for deterministic starts
}

// NewGame creates an unstarted game. rng drives the initial shuffle and any
// later reshuffles; nil means time-seeded.
func NewGame(rng *rand.Rand) *Game {
	if rng == nil {
		rng = game.NewRand()
	}
	return &Game{
		hands: map[Player][]game.Card{Human: {}, Computer: {}},
		phase: PhaseNotStarted,
		rng:   rng,
	}
}

// NewGameFromDeck creates an unstarted game that will deal from the given
// deck in its exact order instead of shuffling a fresh one. Hosts and tests
// use it to build reproducible scenarios.
func NewGameFromDeck(deck *game.Deck) *Game {
	g := NewGame(nil)
	g.stacked = deck
	return g
}

// Start shuffles and deals: 8 cards to each player from the front of the
// deck, then the first non-wild card of the remainder seeds the discard
// pile. If every remaining card is wild the first remaining card seeds the
// pile regardless. The rest becomes the draw pile with its top at the tail.
// The human acts first.
//
// Starting from a deck too small to deal violates the construction contract
// and panics.
func (g *Game) Start() (Snapshot, error) {
	if g.phase != PhaseNotStarted {
		return g.Snapshot(), reject(WrongPhase, "game already started")
	}

	deck := g.stacked
	if deck == nil {
		deck = game.NewDeck().Shuffled(g.rng)
	}
	if deck.Count() < 2*handSize+1 {
		panic(fmt.Sprintf("eights: deck of %d cards cannot seat a game (need %d)", deck.Count(), 2*handSize+1))
	}

	cards := deck.Cards
	g.hands[Human] = append([]game.Card{}, cards[:handSize]...)
	g.hands[Computer] = append([]game.Card{}, cards[handSize:2*handSize]...)

	rest := cards[2*handSize:]
	starter := 0
	for i, card := range rest {
		if !card.IsWild() {
			starter = i
			break
		}
	}
	g.discardPile = []game.Card{rest[starter]}

	pile := make([]game.Card, 0, len(rest)-1)
	pile = append(pile, rest[:starter]...)
	pile = append(pile, rest[starter+1:]...)
	g.drawPile = &game.Deck{Cards: pile}

	g.activeSuit = nil
	g.turn = Human
	g.phase = PhaseInProgress
	g.winner = nil
	g.lastEvent = fmt.Sprintf("dealt %d cards each; %s starts the discard pile", handSize, rest[starter])

	return g.Snapshot(), nil
}

// TopCard returns the top of the discard pile, or nil before the deal.
func (g *Game) TopCard() *game.Card {
	if len(g.discardPile) == 0 {
		return nil
	}
	card := g.discardPile[len(g.discardPile)-1]
	return &card
}

// LegalMoves returns the ids of every card the player could legally play
// right now. Empty unless the game is in progress and it is their turn.
func (g *Game) LegalMoves(p Player) []int {
	if g.phase != PhaseInProgress || g.turn != p {
		return nil
	}
	var ids []int
	for _, card := range legalCandidates(g.hands[p], g.TopCard(), g.activeSuit) {
		ids = append(ids, card.ID)
	}
	return ids
}

func (g *Game) handIndex(p Player, cardID int) int {
	for i, card := range g.hands[p] {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

func (g *Game) checkWinner() {
	for _, p := range []Player{Human, Computer} {
		if len(g.hands[p]) == 0 {
			winner := p
			g.phase = PhaseFinished
			g.winner = &winner
			g.activeSuit = nil
			g.lastEvent = fmt.Sprintf("%s has no cards left and wins", winner)
			return
		}
	}
}
