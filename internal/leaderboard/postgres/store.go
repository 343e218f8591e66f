// Package postgres provides the database-backed leaderboard store.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"quizbot/internal/config"
	"quizbot/internal/leaderboard"
	"quizbot/internal/logger"
)

// Store persists leaderboard entries in a Postgres table. Save replaces the
// full entry set inside one transaction, matching the file store semantics.
type Store struct {
	db *sqlx.DB
}

// Connect opens the database connection, configures the pool, and verifies
// connectivity.
func Connect(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("host", cfg.Host),
			slog.String("db", cfg.Name),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, "db", "db.connect",
		slog.String("host", cfg.Host),
		slog.String("db", cfg.Name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads all leaderboard entries.
func (s *Store) Load() ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	err := s.db.Select(&entries,
		`SELECT user_id, display_name, score, total_questions, percentage FROM leaderboard`)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	return entries, nil
}

// Save replaces the stored entry set.
func (s *Store) Save(entries []leaderboard.Entry) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM leaderboard`); err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	for _, e := range entries {
		_, err := tx.NamedExec(
			`INSERT INTO leaderboard (user_id, display_name, score, total_questions, percentage)
			 VALUES (:user_id, :display_name, :score, :total_questions, :percentage)`, e)
		if err != nil {
			return fmt.Errorf("insert entry for user %d: %w", e.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
