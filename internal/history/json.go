package history

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/lox/blackjack-trainer/internal/fileutil"
	"github.com/lox/blackjack-trainer/internal/session"
)

// JSONStore keeps every summary in one JSON array, rewritten atomically on
// each save
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) load() ([]session.Summary, error) {
	var all []session.Summary
	if _, err := fileutil.ReadJSON(s.path, &all); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.path, err)
	}
	return all, nil
}

// Save replaces a summary with the same id or appends it
func (s *JSONStore) Save(_ context.Context, sum session.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(all, func(x session.Summary) bool { return x.ID == sum.ID })
	if i >= 0 {
		all[i] = sum
	} else {
		all = append(all, sum)
	}
	return fileutil.WriteJSONAtomic(s.path, all, 0o644)
}

// Get loads one summary
func (s *JSONStore) Get(_ context.Context, id uuid.UUID) (session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return session.Summary{}, err
	}
	for _, sum := range all {
		if sum.ID == id {
			return sum, nil
		}
	}
	return session.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns summaries newest first
func (s *JSONStore) List(_ context.Context, limit int) ([]session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b session.Summary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Close is a no-op; the file is only open during Save
func (s *JSONStore) Close() error { return nil }
