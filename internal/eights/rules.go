package eights

import "eights-server/internal/game"

// IsLegal reports whether card may be played on top of the discard pile.
// Wild cards are always playable. Otherwise the effective target suit is the
// active suit override if one is set, else the top card's own suit, and the
// play is legal iff the card matches that suit or the top card's rank.
//
// A nil top card allows any play. It cannot occur once a game has started
// (the discard pile is seeded at deal time and a reshuffle never consumes
// its top card); the permissive default is defensive only.
//
// This predicate is the single source of legality: the human intent
// validator, LegalMoves, and the opponent policy all call it.
func IsLegal(card game.Card, top *game.Card, override *game.Suit) bool {
	if card.IsWild() {
		return true
	}
	if top == nil {
		return true
	}
	target := top.Suit
	if override != nil {
		target = *override
	}
	return card.Suit == target || card.Rank == top.Rank
}

func legalCandidates(hand []game.Card, top *game.Card, override *game.Suit) []game.Card {
	var candidates []game.Card
	for _, card := range hand {
		if IsLegal(card, top, override) {
			candidates = append(candidates, card)
		}
	}
	return candidates
}
