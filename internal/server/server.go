package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"eights-server/internal/database"
)

type Server struct {
	port              int
	db                database.Service // nil without DATABASE_URL
	results           *ResultsStore    // nil without DATABASE_URL
	connectionManager *ConnectionManager
	gameManager       *GameManager
	sessionManager    *SessionManager
	rateLimiter       *RateLimiter
}

func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	aiDelay := 1500 * time.Millisecond
	if raw := os.Getenv("AI_MOVE_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Invalid AI_MOVE_DELAY_MS %q: %v", raw, err)
		}
		aiDelay = time.Duration(ms) * time.Millisecond
	}

	s := &Server{
		port:              port,
		connectionManager: NewConnectionManager(),
		gameManager:       NewGameManager(aiDelay),
		sessionManager:    NewSessionManager(),
		rateLimiter:       NewRateLimiter(10, time.Second),
	}
	s.gameManager.OnUpdate = s.pushGameState

	// The results ledger is opt-in; without a database the server runs
	// fully in-memory.
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := database.New(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		s.db = db

		s.results = NewResultsStore(db.Pool())
		if err := s.results.Init(ctx); err != nil {
			log.Fatalf("Failed to initialize results store: %v", err)
		}
		log.Println("Results ledger enabled")
	}

	go s.cleanupTask()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// cleanupTask runs hourly, retiring games idle for more than 24 hours along
// with their sessions and any stale rate-limiter entries.
func (s *Server) cleanupTask() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := s.gameManager.CleanupGames(24 * time.Hour)
		for _, code := range removed {
			s.sessionManager.RemoveSessionsForGame(code)
		}
		s.rateLimiter.Cleanup()

		if len(removed) > 0 {
			log.Printf("Cleanup task: retired %d idle games", len(removed))
		}
	}
}

// Shutdown notifies connected clients and releases the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.connectionManager.mu.RLock()
	conns := make([]string, 0, len(s.connectionManager.connections))
	for id := range s.connectionManager.connections {
		conns = append(conns, id)
	}
	s.connectionManager.mu.RUnlock()

	for _, id := range conns {
		conn := s.connectionManager.GetConnection(id)
		if conn == nil {
			continue
		}
		s.sendMessage(conn, ctx, ServerMessage{
			Type: "server_shutdown",
			Payload: struct {
				Message string `json:"message"`
			}{
				Message: "Server is shutting down",
			},
		})
	}

	if s.db != nil {
		s.db.Close()
	}
	return nil
}
