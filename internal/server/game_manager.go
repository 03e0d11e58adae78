package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"eights-server/internal/eights"
	"eights-server/internal/game"
)

type GameManager struct {
	games     map[string]*ActiveGame
	usedCodes map[string]bool
	mu        sync.RWMutex

	// aiDelay is the cosmetic pause before the computer takes its turn.
	// Zero runs the computer synchronously inside the triggering call,
	// which is what the tests rely on; the engine is correct either way.
	aiDelay time.Duration

	// OnUpdate, when set, is invoked after a delayed computer turn
	// completes so the host can push fresh state to the client.
	OnUpdate func(*ActiveGame)
}

// ActiveGame binds one engine instance to one human seat. All engine access
// goes through mu: the websocket handler and a scheduled computer turn can
// race otherwise.
type ActiveGame struct {
	mu       sync.Mutex
	Engine   *eights.Game
	GameCode string
	Username string
	Token    string

	Moves     int // successful engine operations, for the results ledger
	Recorded  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewGameManager(aiDelay time.Duration) *GameManager {
	return &GameManager{
		games:     make(map[string]*ActiveGame),
		usedCodes: make(map[string]bool),
		aiDelay:   aiDelay,
	}
}

// CreateGame starts a fresh match: new shuffled deck, 8 cards each, human to
// act first. Returns the game and the player's session token.
func (gm *GameManager) CreateGame(username string) (*ActiveGame, string, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, "", err
	}

	gm.mu.Lock()
	gameCode := GenerateGameCode(gm.usedCodes)
	gm.usedCodes[gameCode] = true
	gm.mu.Unlock()

	token := uuid.New().String()

	engine := eights.NewGame(nil)
	if _, err := engine.Start(); err != nil {
		return nil, "", err
	}

	now := time.Now()
	ag := &ActiveGame{
		Engine:    engine,
		GameCode:  gameCode,
		Username:  username,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}

	gm.mu.Lock()
	gm.games[gameCode] = ag
	gm.mu.Unlock()

	return ag, token, nil
}

func (gm *GameManager) GetGame(gameCode string) (*ActiveGame, error) {
	gm.mu.RLock()
	ag, exists := gm.games[NormalizeGameCode(gameCode)]
	gm.mu.RUnlock()

	if !exists {
		return nil, errors.New("GAME_NOT_FOUND: Game not found")
	}
	return ag, nil
}

// PlayCard applies the human's play intent and, if the turn passes to the
// computer, lets the computer take its turn (after the pacing delay, when
// one is configured).
func (gm *GameManager) PlayCard(gameCode string, cardID int, suitName string) (*ActiveGame, eights.Snapshot, error) {
	ag, err := gm.GetGame(gameCode)
	if err != nil {
		return nil, eights.Snapshot{}, err
	}

	var wildSuit *game.Suit
	if suitName != "" {
		suit, err := game.ParseSuit(suitName)
		if err != nil {
			return ag, eights.Snapshot{}, errors.New("INVALID_SUIT: " + err.Error())
		}
		wildSuit = &suit
	}

	ag.mu.Lock()
	snap, err := ag.Engine.AttemptPlay(eights.Human, cardID, wildSuit)
	if err == nil {
		ag.Moves++
		ag.UpdatedAt = time.Now()
	}
	ag.mu.Unlock()

	if err != nil {
		return ag, snap, err
	}
	return ag, gm.maybeRunComputer(ag, snap), nil
}

// DrawCard applies the human's draw intent. A DrawPileEmpty rejection is the
// forced-pass case: the error is reported to the caller but the turn has
// flipped, so the computer still gets to move.
func (gm *GameManager) DrawCard(gameCode string) (*ActiveGame, eights.Snapshot, error) {
	ag, err := gm.GetGame(gameCode)
	if err != nil {
		return nil, eights.Snapshot{}, err
	}

	ag.mu.Lock()
	snap, err := ag.Engine.AttemptDraw(eights.Human)
	if err == nil || eights.ReasonOf(err) == eights.DrawPileEmpty {
		ag.Moves++
		ag.UpdatedAt = time.Now()
	}
	ag.mu.Unlock()

	if err != nil && eights.ReasonOf(err) != eights.DrawPileEmpty {
		return ag, snap, err
	}
	return ag, gm.maybeRunComputer(ag, snap), err
}

// ChooseSuit resolves the human's pending wild-card suit nomination.
func (gm *GameManager) ChooseSuit(gameCode string, suitName string) (*ActiveGame, eights.Snapshot, error) {
	ag, err := gm.GetGame(gameCode)
	if err != nil {
		return nil, eights.Snapshot{}, err
	}

	suit, err := game.ParseSuit(suitName)
	if err != nil {
		return ag, eights.Snapshot{}, errors.New("INVALID_SUIT: " + err.Error())
	}

	ag.mu.Lock()
	snap, err := ag.Engine.ResolveSuitChoice(suit)
	if err == nil {
		ag.Moves++
		ag.UpdatedAt = time.Now()
	}
	ag.mu.Unlock()

	if err != nil {
		return ag, snap, err
	}
	return ag, gm.maybeRunComputer(ag, snap), nil
}

func (gm *GameManager) maybeRunComputer(ag *ActiveGame, snap eights.Snapshot) eights.Snapshot {
	if snap.Phase != eights.PhaseInProgress || snap.Turn != eights.Computer {
		return snap
	}

	if gm.aiDelay <= 0 {
		return gm.RunComputerTurn(ag)
	}

	time.AfterFunc(gm.aiDelay, func() {
		gm.RunComputerTurn(ag)
		if gm.OnUpdate != nil {
			gm.OnUpdate(ag)
		}
	})
	return snap
}

// RunComputerTurn drives the opponent policy until the turn returns to the
// human or the game ends. A single turn is at most a few engine operations:
// each play flips the turn, a dead draw flips the turn, and a live draw is
// followed by playing the drawn card.
func (gm *GameManager) RunComputerTurn(ag *ActiveGame) eights.Snapshot {
	ag.mu.Lock()
	defer ag.mu.Unlock()

	snap := ag.Engine.Snapshot()
	for snap.Phase == eights.PhaseInProgress && snap.Turn == eights.Computer {
		move := eights.ChooseMove(snap.ComputerHand, snap.TopCard(), snap.ActiveSuit)

		var err error
		if move.Draw {
			snap, err = ag.Engine.AttemptDraw(eights.Computer)
		} else {
			snap, err = ag.Engine.AttemptPlay(eights.Computer, move.Card.ID, move.Suit)
		}

		if err != nil {
			if eights.ReasonOf(err) == eights.DrawPileEmpty {
				ag.Moves++ // forced pass still counts as the computer's action
				break
			}
			// The policy only offers legal candidates; anything else here
			// is a bug worth surfacing in the logs.
			log.Printf("Computer move refused on game %s: %v", ag.GameCode, err)
			break
		}
		ag.Moves++
	}

	ag.UpdatedAt = time.Now()
	return snap
}

func (gm *GameManager) RemoveGame(gameCode string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	code := NormalizeGameCode(gameCode)
	delete(gm.games, code)
	delete(gm.usedCodes, code)
}

// CleanupGames retires games idle for longer than maxAge and returns their
// codes so the caller can drop the matching sessions.
func (gm *GameManager) CleanupGames(maxAge time.Duration) []string {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	var removed []string
	cutoff := time.Now().Add(-maxAge)
	for code, ag := range gm.games {
		if ag.UpdatedAt.Before(cutoff) {
			delete(gm.games, code)
			delete(gm.usedCodes, code)
			removed = append(removed, code)
		}
	}
	return removed
}
