package eights

import "eights-server/internal/game"

// Move is the opponent policy's decision for one action. Either Draw is set,
// or Card names the card to play (with Suit carrying the nomination when
// that card is wild).
type Move struct {
	Draw bool
	Card game.Card
	Suit *game.Suit
}

// ChooseMove picks the automated player's next action. The policy is greedy,
// one-ply and fully deterministic given its inputs: play the first non-wild
// legal card in hand order, fall back to the first wild, draw when nothing
// is legal. It filters candidates with the same IsLegal predicate the intent
// validator uses.
func ChooseMove(hand []game.Card, top *game.Card, override *game.Suit) Move {
	candidates := legalCandidates(hand, top, override)
	if len(candidates) == 0 {
		return Move{Draw: true}
	}

	chosen := candidates[0]
	for _, card := range candidates {
		if !card.IsWild() {
			chosen = card
			break
		}
	}

	move := Move{Card: chosen}
	if chosen.IsWild() {
		suit := nominateSuit(hand, chosen)
		move.Suit = &suit
	}
	return move
}

// nominateSuit picks the suit held most often in the rest of the hand,
// maximising the computer's own future legal moves. Ties break by the fixed
// suit enumeration order.
func nominateSuit(hand []game.Card, played game.Card) game.Suit {
	counts := make(map[game.Suit]int)
	for _, card := range hand {
		if card.ID != played.ID {
			counts[card.Suit]++
		}
	}

	best := game.Suits[0]
	bestCount := -1
	for _, suit := range game.Suits {
		if counts[suit] > bestCount {
			best = suit
			bestCount = counts[suit]
		}
	}
	return best
}
