package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultsStore is a scoreboard of finished games. It records outcomes only:
// no in-flight game state is ever written, so a server restart forgets every
// running game by design.
type ResultsStore struct {
	pool *pgxpool.Pool
}

type GameResult struct {
	GameCode   string    `json:"gameCode"`
	Username   string    `json:"username"`
	Winner     string    `json:"winner"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finishedAt"`
}

func NewResultsStore(pool *pgxpool.Pool) *ResultsStore {
	return &ResultsStore{pool: pool}
}

// Init creates the results table. A single table needs no migration tooling.
func (rs *ResultsStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS game_results (
			id          BIGSERIAL PRIMARY KEY,
			game_code   TEXT        NOT NULL,
			username    TEXT        NOT NULL,
			winner      TEXT        NOT NULL,
			moves       INT         NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := rs.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create game_results table: %w", err)
	}
	return nil
}

func (rs *ResultsStore) RecordResult(ctx context.Context, result GameResult) error {
	query := `
		INSERT INTO game_results (game_code, username, winner, moves, finished_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := rs.pool.Exec(ctx, query,
		result.GameCode,
		result.Username,
		result.Winner,
		result.Moves,
		result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record result for game %s: %w", result.GameCode, err)
	}
	return nil
}

func (rs *ResultsStore) RecentResults(ctx context.Context, limit int) ([]GameResult, error) {
	query := `
		SELECT game_code, username, winner, moves, finished_at
		FROM game_results
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := rs.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.GameCode, &r.Username, &r.Winner, &r.Moves, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return results, nil
}
