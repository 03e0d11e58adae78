// Package database wraps the postgres connection pool used by the results
// ledger. The database is optional: the server runs fully in-memory when no
// DATABASE_URL is configured.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Service interface {
	// Health reports connectivity status for the /health endpoint.
	Health() map[string]string
	Pool() *pgxpool.Pool
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// New connects to postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (Service, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &service{pool: pool}, nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return map[string]string{
			"status": "down",
			"error":  err.Error(),
		}
	}

	stats := s.pool.Stat()
	return map[string]string{
		"status":            "up",
		"total_connections": fmt.Sprintf("%d", stats.TotalConns()),
		"idle_connections":  fmt.Sprintf("%d", stats.IdleConns()),
	}
}

func (s *service) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *service) Close() {
	s.pool.Close()
}
