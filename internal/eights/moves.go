package eights

import (
	"fmt"

	"eights-server/internal/game"
)

// AttemptPlay plays the identified card from p's hand onto the discard pile.
//
// A wild played by the human enters the awaiting_suit_choice phase without
// flipping the turn; the nomination arrives later via ResolveSuitChoice and
// wildSuit is ignored. A wild played by the computer must carry its
// nomination atomically in wildSuit. Any non-wild play clears the override
// and flips the turn.
func (g *Game) AttemptPlay(p Player, cardID int, wildSuit *game.Suit) (Snapshot, error) {
	if g.turn != p {
		return g.Snapshot(), reject(NotYourTurn, "it is the %s's turn", g.turn)
	}
	if g.phase != PhaseInProgress {
		return g.Snapshot(), reject(WrongPhase, "cannot play a card while the game is %s", g.phase)
	}
	idx := g.handIndex(p, cardID)
	if idx < 0 {
		return g.Snapshot(), reject(CardNotInHand, "card %d is not in the %s's hand", cardID, p)
	}
	card := g.hands[p][idx]
	if !IsLegal(card, g.TopCard(), g.activeSuit) {
		return g.Snapshot(), reject(IllegalCard, "%s cannot be played on %s", card, *g.TopCard())
	}
	if p == Computer && card.IsWild() && wildSuit == nil {
		return g.Snapshot(), reject(IllegalCard, "a wild play by the computer must nominate a suit")
	}

	g.hands[p] = append(g.hands[p][:idx], g.hands[p][idx+1:]...)
	g.discardPile = append(g.discardPile, card)

	switch {
	case card.IsWild() && p == Computer:
		suit := *wildSuit
		g.activeSuit = &suit
		g.turn = Human
		g.lastEvent = fmt.Sprintf("computer played %s and nominated %s", card, suit)
	case card.IsWild():
		g.activeSuit = nil
		g.phase = PhaseAwaitingSuit
		g.lastEvent = fmt.Sprintf("player played %s and must nominate a suit", card)
	default:
		g.activeSuit = nil
		g.turn = p.other()
		g.lastEvent = fmt.Sprintf("%s played %s", p, card)
	}

	g.checkWinner()
	return g.Snapshot(), nil
}

// ResolveSuitChoice completes the human's pending wild play: the nominated
// suit becomes the active override and the turn passes to the computer.
func (g *Game) ResolveSuitChoice(suit game.Suit) (Snapshot, error) {
	if g.phase != PhaseAwaitingSuit {
		return g.Snapshot(), reject(WrongPhase, "no suit choice is pending")
	}
	s := suit
	g.activeSuit = &s
	g.turn = Computer
	g.phase = PhaseInProgress
	g.lastEvent = fmt.Sprintf("player nominated %s", suit)
	return g.Snapshot(), nil
}

// AttemptDraw moves the top card of the draw pile into p's hand. If the
// drawn card is immediately playable the turn does not flip and p may act
// again; otherwise the turn passes.
//
// If the draw pile is empty even after recycling the discard pile, there is
// nothing left to do on this turn: the draw is rejected with DrawPileEmpty
// and the turn passes as a forced pass.
func (g *Game) AttemptDraw(p Player) (Snapshot, error) {
	if g.turn != p {
		return g.Snapshot(), reject(NotYourTurn, "it is the %s's turn", g.turn)
	}
	if g.phase != PhaseInProgress {
		return g.Snapshot(), reject(WrongPhase, "cannot draw while the game is %s", g.phase)
	}

	g.reshuffleIfNeeded()
	if g.drawPile.Count() == 0 {
		g.turn = p.other()
		g.lastEvent = fmt.Sprintf("%s had nothing to draw; turn passes", p)
		return g.Snapshot(), reject(DrawPileEmpty, "the draw pile is exhausted")
	}

	card := g.drawPile.Draw(1)[0]
	g.hands[p] = append(g.hands[p], card)
	if IsLegal(card, g.TopCard(), g.activeSuit) {
		g.lastEvent = fmt.Sprintf("%s drew a playable card", p)
	} else {
		g.turn = p.other()
		g.lastEvent = fmt.Sprintf("%s drew a card", p)
	}

	g.reshuffleIfNeeded()
	return g.Snapshot(), nil
}

// reshuffleIfNeeded recycles the discard pile into the draw pile when the
// draw pile is nearly exhausted. The current top of the discard pile is set
// aside first and survives untouched, so the legal-move target never changes.
// Idempotent; a no-op while more than 2 cards remain to draw or fewer than
// 2 cards have been discarded.
func (g *Game) reshuffleIfNeeded() {
	if g.drawPile.Count() > 2 || len(g.discardPile) <= 1 {
		return
	}
	top := g.discardPile[len(g.discardPile)-1]
	recycled := make([]game.Card, 0, len(g.discardPile)-1+g.drawPile.Count())
	recycled = append(recycled, g.discardPile[:len(g.discardPile)-1]...)
	recycled = append(recycled, g.drawPile.Cards...)
	g.drawPile = (&game.Deck{Cards: recycled}).Shuffled(g.rng)
	g.discardPile = []game.Card{top}
}
