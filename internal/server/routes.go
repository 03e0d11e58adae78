package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"eights-server/internal/eights"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/results", s.resultsHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{"status": "up"}
	if s.db != nil {
		health = s.db.Health()
	}

	resp, err := json.Marshal(health)
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		http.Error(w, "Results ledger not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results, err := s.results.RecentResults(ctx, 20)
	if err != nil {
		log.Printf("Failed to load results: %v", err)
		http.Error(w, "Failed to load results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connectionManager.AddConnection(connectionID, socket)
	defer func() {
		s.connectionManager.RemoveConnection(connectionID)
		s.rateLimiter.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		if !s.rateLimiter.Allow(connectionID) {
			s.sendError(socket, ctx, "RATE_LIMITED: Too many messages, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			s.sendError(socket, ctx, "Invalid JSON")
			continue
		}

		log.Printf("Message Type '%s' from %s", msg.Type, connectionID)

		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx, connectionID)

		case "create_game":
			s.handleCreateGame(socket, ctx, connectionID, msg.Payload)

		case "reconnect":
			s.handleReconnect(socket, ctx, connectionID, msg.Payload)

		case "play_card":
			s.handlePlayCard(socket, ctx, connectionID, msg.Payload)

		case "draw_card":
			s.handleDrawCard(socket, ctx, connectionID)

		case "choose_suit":
			s.handleChooseSuit(socket, ctx, connectionID, msg.Payload)

		case "get_state":
			s.handleGetState(socket, ctx, connectionID)

		case "leave_game":
			s.handleLeaveGame(socket, ctx, connectionID)

		default:
			log.Printf("Unknown message type '%s' from %s", msg.Type, connectionID)
			s.sendError(socket, ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("Marshal error: %w", err)
	}

	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, msg string) {
	response := ServerMessage{
		Type: "error",
		Payload: ErrorMessage{
			Message: msg,
		},
	}

	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send error message: %v", err)
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context, connectionID string) {
	response := ServerMessage{
		Type:    "pong",
		Payload: struct{}{},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send pong to %s: %v", connectionID, err)
	}
}

func (s *Server) handleCreateGame(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req CreateGameRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid create_game payload")
		return
	}

	ag, token, err := s.gameManager.CreateGame(req.Username)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	s.sessionManager.StoreSession(SessionInfo{
		Token:    token,
		GameCode: ag.GameCode,
		Username: req.Username,
	})
	s.connectionManager.AddConnectionWithToken(connectionID, socket, token)

	response := ServerMessage{
		Type: "game_created",
		Payload: CreateGameResponse{
			GameCode: ag.GameCode,
			Token:    token,
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send game_created: %v", err)
		return
	}

	s.sendGameState(socket, ctx, ag)
}

func (s *Server) handleReconnect(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req ReconnectRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid reconnect payload")
		return
	}

	session, err := s.sessionManager.GetSession(req.Token)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	ag, err := s.gameManager.GetGame(session.GameCode)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	oldConnectionID := s.connectionManager.AddConnectionWithToken(connectionID, socket, req.Token)
	if oldConnectionID != "" && oldConnectionID != connectionID {
		oldConn := s.connectionManager.GetConnection(oldConnectionID)
		if oldConn != nil {
			s.sendMessage(oldConn, context.Background(), ServerMessage{
				Type: "disconnected_elsewhere",
				Payload: struct {
					Message string `json:"message"`
				}{
					Message: "You connected on another device",
				},
			})
			oldConn.Close(websocket.StatusNormalClosure, "Connected from another device")
		}
		s.connectionManager.RemoveConnection(oldConnectionID)
	}

	response := ServerMessage{
		Type: "reconnected",
		Payload: ReconnectResponse{
			Success:  true,
			GameCode: session.GameCode,
			Message:  "Successfully reconnected",
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send reconnected response: %v", err)
	}

	s.sendGameState(socket, ctx, ag)
}

// resolveGame maps the connection back to its active game via the session
// token. Errors are reported to the client directly.
func (s *Server) resolveGame(socket *websocket.Conn, ctx context.Context, connectionID string) *ActiveGame {
	token := s.connectionManager.GetTokenByConnection(connectionID)
	if token == "" {
		s.sendError(socket, ctx, "NOT_IN_GAME: No active game session")
		return nil
	}

	session, err := s.sessionManager.GetSession(token)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return nil
	}

	ag, err := s.gameManager.GetGame(session.GameCode)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return nil
	}
	return ag
}

func (s *Server) handlePlayCard(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req PlayCardRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid play_card payload")
		return
	}

	ag := s.resolveGame(socket, ctx, connectionID)
	if ag == nil {
		return
	}

	_, _, err := s.gameManager.PlayCard(ag.GameCode, req.CardID, req.Suit)
	s.finishMove(socket, ctx, ag, err, err == nil)
}

func (s *Server) handleDrawCard(socket *websocket.Conn, ctx context.Context, connectionID string) {
	ag := s.resolveGame(socket, ctx, connectionID)
	if ag == nil {
		return
	}

	_, _, err := s.gameManager.DrawCard(ag.GameCode)
	// A DrawPileEmpty rejection is a forced pass: the turn flipped, so the
	// client still needs fresh state alongside the failure result.
	stateChanged := err == nil || eights.ReasonOf(err) == eights.DrawPileEmpty
	s.finishMove(socket, ctx, ag, err, stateChanged)
}

func (s *Server) handleChooseSuit(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req ChooseSuitRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid choose_suit payload")
		return
	}

	ag := s.resolveGame(socket, ctx, connectionID)
	if ag == nil {
		return
	}

	_, _, err := s.gameManager.ChooseSuit(ag.GameCode, req.Suit)
	s.finishMove(socket, ctx, ag, err, err == nil)
}

func (s *Server) handleGetState(socket *websocket.Conn, ctx context.Context, connectionID string) {
	ag := s.resolveGame(socket, ctx, connectionID)
	if ag == nil {
		return
	}
	s.sendGameState(socket, ctx, ag)
}

func (s *Server) handleLeaveGame(socket *websocket.Conn, ctx context.Context, connectionID string) {
	ag := s.resolveGame(socket, ctx, connectionID)
	if ag == nil {
		return
	}

	token := s.connectionManager.GetTokenByConnection(connectionID)
	s.sessionManager.RemoveSession(token)
	s.gameManager.RemoveGame(ag.GameCode)

	response := ServerMessage{
		Type:    "left_game",
		Payload: struct{}{},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send left_game: %v", err)
	}
}

// finishMove reports the move outcome and, when the engine state changed,
// the resulting game state.
func (s *Server) finishMove(socket *websocket.Conn, ctx context.Context, ag *ActiveGame, moveErr error, stateChanged bool) {
	result := MoveResultResponse{Success: moveErr == nil}
	if moveErr != nil {
		result.Code = string(eights.ReasonOf(moveErr))
		result.Message = moveErr.Error()
	}

	if err := s.sendMessage(socket, ctx, ServerMessage{Type: "move_result", Payload: result}); err != nil {
		log.Printf("Failed to send move_result: %v", err)
		return
	}

	if stateChanged {
		s.sendGameState(socket, ctx, ag)
	}
}

func (s *Server) sendGameState(socket *websocket.Conn, ctx context.Context, ag *ActiveGame) {
	ag.mu.Lock()
	state := ag.Engine.ClientState()
	ag.mu.Unlock()

	msg := ServerMessage{
		Type: "game_state",
		Payload: GameStateMessage{
			GameCode: ag.GameCode,
			State:    state,
		},
	}
	if err := s.sendMessage(socket, ctx, msg); err != nil {
		log.Printf("Failed to send game state for %s: %v", ag.GameCode, err)
		return
	}

	if state.Winner != nil {
		s.handleGameOver(socket, ctx, ag, string(*state.Winner))
	}
}

// pushGameState delivers state to the game's player after a delayed computer
// turn; the player may have disconnected in the meantime.
func (s *Server) pushGameState(ag *ActiveGame) {
	connID := s.connectionManager.GetConnectionByToken(ag.Token)
	if connID == "" {
		return
	}
	conn := s.connectionManager.GetConnection(connID)
	if conn == nil {
		return
	}
	s.sendGameState(conn, context.Background(), ag)
}

func (s *Server) handleGameOver(socket *websocket.Conn, ctx context.Context, ag *ActiveGame, winner string) {
	msg := ServerMessage{
		Type: "game_over",
		Payload: GameOverNotification{
			Winner:  winner,
			Message: fmt.Sprintf("Game over: the %s wins", winner),
		},
	}
	if err := s.sendMessage(socket, ctx, msg); err != nil {
		log.Printf("Failed to send game_over: %v", err)
	}

	s.recordResult(ag, winner)
}

// recordResult writes the outcome to the results ledger exactly once.
func (s *Server) recordResult(ag *ActiveGame, winner string) {
	if s.results == nil {
		return
	}

	ag.mu.Lock()
	if ag.Recorded {
		ag.mu.Unlock()
		return
	}
	ag.Recorded = true
	moves := ag.Moves
	ag.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.results.RecordResult(ctx, GameResult{
		GameCode:   ag.GameCode,
		Username:   ag.Username,
		Winner:     winner,
		Moves:      moves,
		FinishedAt: time.Now(),
	})
	if err != nil {
		log.Printf("Failed to record result for game %s: %v", ag.GameCode, err)
		return
	}
	log.Printf("Game %s finished: %s won after %d moves", ag.GameCode, winner, moves)
}
