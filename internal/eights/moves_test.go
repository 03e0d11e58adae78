package eights

import (
	"math/rand"
	"testing"

	"eights-server/internal/game"
)

// midGame builds an in-progress game directly, bypassing the deal, so each
// test can stage the exact pile and hand shapes it needs.
func midGame(humanHand, computerHand, drawPile, discardPile []game.Card) *Game {
	return &Game{
		hands: map[Player][]game.Card{
			Human:    humanHand,
			Computer: computerHand,
		},
		drawPile:    &game.Deck{Cards: drawPile},
		discardPile: discardPile,
		turn:        Human,
		phase:       PhaseInProgress,
		rng:         rand.New(rand.NewSource(1)),
	}
}

func mk(id int, rank game.Rank, suit game.Suit) game.Card {
	return game.Card{ID: id, Suit: suit, Rank: rank}
}

func cardCount(g *Game) int {
	return len(g.hands[Human]) + len(g.hands[Computer]) + g.drawPile.Count() + len(g.discardPile)
}

func TestForcedPassOnExhaustedDrawPile(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts)},
		nil,
		[]game.Card{mk(2, game.Five, game.Spades)},
	)

	snap, err := g.AttemptDraw(Human)
	if ReasonOf(err) != DrawPileEmpty {
		t.Fatalf("Expected DRAW_PILE_EMPTY, got %v", err)
	}
	if snap.Turn != Computer {
		t.Errorf("Forced pass should flip the turn, got %s", snap.Turn)
	}
	if len(g.hands[Human]) != 1 {
		t.Errorf("Forced pass must not change the hand, has %d cards", len(g.hands[Human]))
	}
}

func TestDrawPlayableCardKeepsTurn(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts)},
		[]game.Card{
			mk(10, game.King, game.Diamonds),
			mk(11, game.King, game.Diamonds),
			mk(12, game.King, game.Diamonds),
			mk(3, game.Nine, game.Spades), // tail = next draw, matches the top suit
		},
		[]game.Card{mk(4, game.Six, game.Clubs), mk(5, game.Six, game.Hearts), mk(2, game.Five, game.Spades)},
	)

	snap, err := g.AttemptDraw(Human)
	if err != nil {
		t.Fatalf("AttemptDraw failed: %v", err)
	}
	if snap.Turn != Human {
		t.Errorf("Drawing a playable card should keep the turn, got %s", snap.Turn)
	}
	if len(snap.PlayerHand) != 2 {
		t.Errorf("Hand should hold 2 cards after the draw, has %d", len(snap.PlayerHand))
	}
}

func TestDrawUnplayableCardFlipsTurn(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts)},
		[]game.Card{
			mk(10, game.King, game.Diamonds),
			mk(11, game.King, game.Diamonds),
			mk(12, game.King, game.Diamonds),
			mk(3, game.Nine, game.Hearts), // matches neither spades nor Five
		},
		[]game.Card{mk(4, game.Six, game.Clubs), mk(5, game.Six, game.Diamonds), mk(2, game.Five, game.Spades)},
	)

	snap, err := g.AttemptDraw(Human)
	if err != nil {
		t.Fatalf("AttemptDraw failed: %v", err)
	}
	if snap.Turn != Computer {
		t.Errorf("Drawing an unplayable card should flip the turn, got %s", snap.Turn)
	}
	if len(snap.PlayerHand) != 2 {
		t.Errorf("Hand should hold 2 cards after the draw, has %d", len(snap.PlayerHand))
	}
}

// The override survives a draw: a drawn card legal only under the nominated
// suit still keeps the turn.
func TestDrawRespectsOverride(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts)},
		[]game.Card{
			mk(10, game.King, game.Diamonds),
			mk(11, game.King, game.Diamonds),
			mk(12, game.King, game.Diamonds),
			mk(3, game.Nine, game.Clubs),
		},
		[]game.Card{mk(4, game.Six, game.Hearts), mk(5, game.Six, game.Diamonds), mk(2, game.Eight, game.Spades)},
	)
	clubs := game.Clubs
	g.activeSuit = &clubs

	snap, err := g.AttemptDraw(Human)
	if err != nil {
		t.Fatalf("AttemptDraw failed: %v", err)
	}
	if snap.Turn != Human {
		t.Errorf("A club is playable under the clubs override; turn should stay, got %s", snap.Turn)
	}
}

func TestReshufflePreservesDiscardTop(t *testing.T) {
	discard := []game.Card{
		mk(20, game.Two, game.Hearts),
		mk(21, game.Three, game.Hearts),
		mk(22, game.Four, game.Hearts),
		mk(23, game.Six, game.Hearts),
		mk(24, game.Seven, game.Spades), // top, must survive in place
	}
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Clubs)},
		[]game.Card{mk(1, game.Three, game.Clubs)},
		[]game.Card{mk(30, game.King, game.Diamonds)},
		discard,
	)
	before := cardCount(g)

	g.reshuffleIfNeeded()

	if top := g.TopCard(); top == nil || top.ID != 24 {
		t.Fatalf("Reshuffle must keep the discard top in place, got %v", top)
	}
	if len(g.discardPile) != 1 {
		t.Errorf("Discard pile should shrink to the top card, has %d", len(g.discardPile))
	}
	if g.drawPile.Count() != 5 {
		t.Errorf("Draw pile should absorb the 4 recycled cards plus its own, has %d", g.drawPile.Count())
	}
	if cardCount(g) != before {
		t.Errorf("Reshuffle changed the card count from %d to %d", before, cardCount(g))
	}
}

func TestReshuffleNoOp(t *testing.T) {
	t.Run("draw pile still healthy", func(t *testing.T) {
		pile := []game.Card{mk(10, game.Two, game.Hearts), mk(11, game.Three, game.Hearts), mk(12, game.Four, game.Hearts)}
		g := midGame(nil, nil, pile, []game.Card{mk(20, game.Five, game.Spades), mk(21, game.Six, game.Spades)})

		g.reshuffleIfNeeded()

		if g.drawPile.Count() != 3 || len(g.discardPile) != 2 {
			t.Error("Reshuffle ran while the draw pile was still healthy")
		}
	})

	t.Run("nothing to recycle", func(t *testing.T) {
		g := midGame(nil, nil, nil, []game.Card{mk(20, game.Five, game.Spades)})

		g.reshuffleIfNeeded()

		if g.drawPile.Count() != 0 || len(g.discardPile) != 1 {
			t.Error("Reshuffle should leave a lone discard card alone")
		}
	})
}

func TestRejectionsLeaveStateUntouched(t *testing.T) {
	fresh := func() *Game {
		return midGame(
			[]game.Card{mk(0, game.Two, game.Hearts), mk(1, game.Nine, game.Clubs)},
			[]game.Card{mk(2, game.Three, game.Hearts)},
			[]game.Card{mk(10, game.King, game.Diamonds), mk(11, game.Queen, game.Diamonds), mk(12, game.Jack, game.Diamonds)},
			[]game.Card{mk(20, game.Five, game.Spades)},
		)
	}

	tests := []struct {
		name   string
		act    func(g *Game) error
		reason RejectionReason
	}{
		{
			name: "play out of turn",
			act: func(g *Game) error {
				_, err := g.AttemptPlay(Computer, 2, nil)
				return err
			},
			reason: NotYourTurn,
		},
		{
			name: "draw out of turn",
			act: func(g *Game) error {
				_, err := g.AttemptDraw(Computer)
				return err
			},
			reason: NotYourTurn,
		},
		{
			name: "card not in hand",
			act: func(g *Game) error {
				_, err := g.AttemptPlay(Human, 99, nil)
				return err
			},
			reason: CardNotInHand,
		},
		{
			name: "card held by the opponent",
			act: func(g *Game) error {
				_, err := g.AttemptPlay(Human, 2, nil)
				return err
			},
			reason: CardNotInHand,
		},
		{
			name: "illegal card",
			act: func(g *Game) error {
				_, err := g.AttemptPlay(Human, 0, nil) // Two of Hearts on Five of Spades
				return err
			},
			reason: IllegalCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fresh()
			before := g.Snapshot()

			err := tt.act(g)
			if ReasonOf(err) != tt.reason {
				t.Fatalf("Expected %s, got %v", tt.reason, err)
			}

			after := g.Snapshot()
			if len(after.PlayerHand) != len(before.PlayerHand) ||
				len(after.ComputerHand) != len(before.ComputerHand) ||
				after.DrawPileSize != before.DrawPileSize ||
				len(after.DiscardPile) != len(before.DiscardPile) ||
				after.Turn != before.Turn ||
				after.Phase != before.Phase {
				t.Error("A rejection must not change the game state")
			}
		})
	}
}

func TestTurnOrderPrecedesLegality(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Two, game.Hearts)},
		[]game.Card{mk(1, game.Two, game.Clubs)}, // illegal on the Five of Spades too
		[]game.Card{mk(10, game.King, game.Diamonds)},
		[]game.Card{mk(20, game.Five, game.Spades)},
	)

	_, err := g.AttemptPlay(Computer, 1, nil)
	if ReasonOf(err) != NotYourTurn {
		t.Errorf("Turn ownership is checked before legality; got %v", err)
	}
}

func TestWinDetection(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Five, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts), mk(2, game.Four, game.Hearts)},
		[]game.Card{mk(10, game.King, game.Diamonds), mk(11, game.Queen, game.Diamonds), mk(12, game.Jack, game.Diamonds)},
		[]game.Card{mk(20, game.Five, game.Spades)},
	)

	snap, err := g.AttemptPlay(Human, 0, nil)
	if err != nil {
		t.Fatalf("Winning play failed: %v", err)
	}
	if snap.Phase != PhaseFinished {
		t.Errorf("Phase should be finished, got %s", snap.Phase)
	}
	if snap.Winner == nil || *snap.Winner != Human {
		t.Errorf("Winner should be the player, got %v", snap.Winner)
	}
	if snap.ActiveSuit != nil {
		t.Errorf("A finished game carries no override, got %s", *snap.ActiveSuit)
	}

	_, err = g.AttemptPlay(Computer, 1, nil)
	if ReasonOf(err) != WrongPhase {
		t.Errorf("Play after the finish should be WRONG_PHASE, got %v", err)
	}
	_, err = g.AttemptDraw(Computer)
	if ReasonOf(err) != WrongPhase {
		t.Errorf("Draw after the finish should be WRONG_PHASE, got %v", err)
	}
}

// Shedding a wild as the last card ends the game on the spot. No suit
// nomination is owed for a hand that no longer exists.
func TestWildAsLastCardFinishesImmediately(t *testing.T) {
	g := midGame(
		[]game.Card{mk(0, game.Eight, game.Hearts)},
		[]game.Card{mk(1, game.Three, game.Hearts)},
		[]game.Card{mk(10, game.King, game.Diamonds)},
		[]game.Card{mk(20, game.Five, game.Spades)},
	)

	snap, err := g.AttemptPlay(Human, 0, nil)
	if err != nil {
		t.Fatalf("Winning wild play failed: %v", err)
	}
	if snap.Phase != PhaseFinished {
		t.Errorf("Phase should be finished, got %s", snap.Phase)
	}
	if snap.Winner == nil || *snap.Winner != Human {
		t.Errorf("Winner should be the player, got %v", snap.Winner)
	}

	_, err = g.ResolveSuitChoice(game.Clubs)
	if ReasonOf(err) != WrongPhase {
		t.Errorf("No suit choice is owed after the win, got %v", err)
	}
}

// Drives a full seeded game with the greedy policy on both seats and checks
// that all 52 cards stay accounted for on every step.
func TestFullGameConservation(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(99)))
	if _, err := g.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 5000; i++ {
		if g.phase == PhaseFinished {
			break
		}
		if g.phase == PhaseAwaitingSuit {
			if _, err := g.ResolveSuitChoice(nominateSuit(g.hands[Human], game.Card{ID: -1})); err != nil {
				t.Fatalf("step %d: suit choice failed: %v", i, err)
			}
			continue
		}

		p := g.turn
		move := ChooseMove(g.hands[p], g.TopCard(), g.activeSuit)
		var err error
		if move.Draw {
			_, err = g.AttemptDraw(p)
			if ReasonOf(err) == DrawPileEmpty {
				err = nil // forced pass, play on
			}
		} else {
			_, err = g.AttemptPlay(p, move.Card.ID, move.Suit)
		}
		if err != nil {
			t.Fatalf("step %d: %s move failed: %v", i, p, err)
		}

		if got := cardCount(g); got != 52 {
			t.Fatalf("step %d: %d cards in play, 52 expected", i, got)
		}
	}

	if g.phase != PhaseFinished {
		t.Fatal("Game did not finish within 5000 steps")
	}
	if g.winner == nil {
		t.Fatal("Finished game has no winner")
	}
}
