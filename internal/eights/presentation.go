package eights

import "eights-server/internal/game"

// Snapshot is the full, host-facing view of the game after an operation.
// Hands are copies; mutating a snapshot never touches the engine.
type Snapshot struct {
	PlayerHand   []game.Card `json:"playerHand"`
	ComputerHand []game.Card `json:"computerHand"`
	DrawPileSize int         `json:"drawPileSize"`
	DiscardPile  []game.Card `json:"discardPile"`
	ActiveSuit   *game.Suit  `json:"activeSuit"`
	Turn         Player      `json:"turn"`
	Phase        Phase       `json:"phase"`
	Winner       *Player     `json:"winner"`
	LastEvent    string      `json:"lastEvent"`
}

// TopCard returns the snapshot's top of discard, or nil before the deal.
func (s Snapshot) TopCard() *game.Card {
	if len(s.DiscardPile) == 0 {
		return nil
	}
	card := s.DiscardPile[len(s.DiscardPile)-1]
	return &card
}

func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		PlayerHand:   append([]game.Card{}, g.hands[Human]...),
		ComputerHand: append([]game.Card{}, g.hands[Computer]...),
		DiscardPile:  append([]game.Card{}, g.discardPile...),
		Turn:         g.turn,
		Phase:        g.phase,
		LastEvent:    g.lastEvent,
	}
	if g.drawPile != nil {
		snap.DrawPileSize = g.drawPile.Count()
	}
	if g.activeSuit != nil {
		suit := *g.activeSuit
		snap.ActiveSuit = &suit
	}
	if g.winner != nil {
		winner := *g.winner
		snap.Winner = &winner
	}
	return snap
}

// ClientState is the view sent to the human's client: their own hand in
// full, the computer's hand as a count only. The draw pile is likewise
// hidden information and exposed as a count.
type ClientState struct {
	Hand               []game.Card `json:"hand"`
	ComputerHandLength int         `json:"computerHandLength"`
	DrawPileSize       int         `json:"drawPileSize"`
	DiscardPile        []game.Card `json:"discardPile"`
	DiscardTopCard     *game.Card  `json:"discardTopCard"`
	ActiveSuit         *game.Suit  `json:"activeSuit"`
	ActiveSuitName     string      `json:"activeSuitName,omitempty"`
	YourTurn           bool        `json:"yourTurn"`
	Phase              Phase       `json:"phase"`
	Winner             *Player     `json:"winner"`
	LegalMoves         []int       `json:"legalMoves"`
	LastEvent          string      `json:"lastEvent"`
}

func (g *Game) ClientState() *ClientState {
	snap := g.Snapshot()
	state := &ClientState{
		Hand:               snap.PlayerHand,
		ComputerHandLength: len(snap.ComputerHand),
		DrawPileSize:       snap.DrawPileSize,
		DiscardPile:        snap.DiscardPile,
		DiscardTopCard:     snap.TopCard(),
		ActiveSuit:         snap.ActiveSuit,
		YourTurn:           snap.Turn == Human && snap.Phase != PhaseFinished,
		Phase:              snap.Phase,
		Winner:             snap.Winner,
		LegalMoves:         g.LegalMoves(Human),
		LastEvent:          snap.LastEvent,
	}
	if snap.ActiveSuit != nil {
		state.ActiveSuitName = snap.ActiveSuit.String()
	}
	return state
}
