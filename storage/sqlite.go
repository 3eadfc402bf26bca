// Package storage keeps a log of finished games in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS games (
	game_id     TEXT PRIMARY KEY,
	generation  INTEGER NOT NULL,
	winner      INTEGER NOT NULL,
	moves       INTEGER NOT NULL,
	width       INTEGER NOT NULL,
	height      INTEGER NOT NULL,
	players     INTEGER NOT NULL,
	treasure_x  INTEGER NOT NULL,
	treasure_y  INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create games table: %w", err)
	}
	log.WithField("component", "storage").Infof("SQLite persistence initialized at %s", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished game. Recording the same game twice keeps the
// latest values.
func (s *Store) Record(ctx context.Context, r model.GameResult) error {
	const query = `
	INSERT INTO games (game_id, generation, winner, moves, width, height, players,
		treasure_x, treasure_y, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(game_id) DO UPDATE SET
		winner = excluded.winner,
		moves = excluded.moves,
		finished_at = excluded.finished_at;
	`
	_, err := s.db.ExecContext(ctx, query,
		r.GameID, r.Generation, r.Winner, r.Moves, r.Width, r.Height, r.Players,
		r.Treasure.X, r.Treasure.Y, r.StartedAt.UTC(), r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("record game %s: %w", r.GameID, err)
	}
	return nil
}

// Recent returns up to limit games, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]model.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT game_id, generation, winner, moves, width, height, players,
		treasure_x, treasure_y, started_at, finished_at
	FROM games ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	results := make([]model.GameResult, 0)
	for rows.Next() {
		var r model.GameResult
		var started, finished time.Time
		if err := rows.Scan(&r.GameID, &r.Generation, &r.Winner, &r.Moves, &r.Width, &r.Height, &r.Players,
			&r.Treasure.X, &r.Treasure.Y, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		r.StartedAt, r.FinishedAt = started, finished
		results = append(results, r)
	}
	return results, rows.Err()
}
