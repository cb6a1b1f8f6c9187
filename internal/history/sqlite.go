package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lox/blackjack-trainer/internal/session"
)

// SQLiteStore keeps summaries in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			variant TEXT NOT NULL DEFAULT '',
			risk TEXT NOT NULL DEFAULT '',
			rounds INTEGER NOT NULL,
			net TEXT NOT NULL,
			wagered TEXT NOT NULL,
			accuracy REAL NOT NULL,
			summary TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a summary
func (s *SQLiteStore) Save(ctx context.Context, sum session.Summary) error {
	blob, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, started_at, ended_at, variant, risk, rounds, net, wagered, accuracy, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID.String(),
		sum.StartedAt.UTC().Format(time.RFC3339Nano),
		sum.EndedAt.UTC().Format(time.RFC3339Nano),
		sum.Variant,
		sum.Risk,
		sum.Rounds,
		sum.Net.String(),
		sum.Wagered.String(),
		sum.Accuracy,
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sum.ID, err)
	}
	return nil
}

// Get loads one summary
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (session.Summary, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT summary FROM sessions WHERE id = ?`, id.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return session.Summary{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decodeSummary(blob)
}

// List returns summaries newest first
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT summary FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum, err := decodeSummary(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func decodeSummary(blob string) (session.Summary, error) {
	var sum session.Summary
	if err := json.Unmarshal([]byte(blob), &sum); err != nil {
		return session.Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	return sum, nil
}
