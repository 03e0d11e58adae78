package server

import "eights-server/internal/eights"

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// CREATE GAME (create_game)
// ============================================================================
type CreateGameRequest struct {
	Username string `json:"username"`
}

type CreateGameResponse struct {
	GameCode string `json:"gameCode"`
	Token    string `json:"token"`
}

// ============================================================================
// RECONNECT (reconnect)
// ============================================================================
type ReconnectRequest struct {
	Token string `json:"token"`
}

type ReconnectResponse struct {
	Success  bool   `json:"success"`
	GameCode string `json:"gameCode"`
	Message  string `json:"message,omitempty"`
}

// ============================================================================
// MOVES (play_card / draw_card / choose_suit)
// ============================================================================
type PlayCardRequest struct {
	CardID int `json:"cardId"`
	// Suit is only meaningful when CardID names a wild card; the engine
	// asks for the nomination afterwards via choose_suit.
	Suit string `json:"suit,omitempty"`
}

type ChooseSuitRequest struct {
	Suit string `json:"suit"`
}

type MoveResultResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// GAME STATE (game_state broadcast)
// ============================================================================
type GameStateMessage struct {
	GameCode string              `json:"gameCode"`
	State    *eights.ClientState `json:"state"`
}

// ============================================================================
// GAME OVER (game_over notification)
// ============================================================================
type GameOverNotification struct {
	Winner  string `json:"winner"`
	Message string `json:"message"`
}
