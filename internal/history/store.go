// Package history persists session summaries.
package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lox/blackjack-trainer/internal/session"
)

// ErrNotFound is returned by Get for an unknown session id
var ErrNotFound = errors.New("history: session not found")

// Store saves and lists session summaries
type Store interface {
	Save(ctx context.Context, s session.Summary) error
	Get(ctx context.Context, id uuid.UUID) (session.Summary, error)
	// List returns the most recent sessions first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]session.Summary, error)
	Close() error
}

// Open picks a store by file extension: .json is a JSON file, anything else
// is a SQLite database.
func Open(path string) (Store, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path), nil
	}
	s, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
