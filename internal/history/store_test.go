package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-trainer/internal/session"
)

func summary(start time.Time, net string) session.Summary {
	return session.Summary{
		ID:               uuid.New(),
		Variant:          "S17 DAS",
		Risk:             "medium",
		StartedAt:        start,
		EndedAt:          start.Add(time.Hour),
		Duration:         time.Hour,
		StartingBankroll: decimal.NewFromInt(1000),
		EndingBankroll:   decimal.NewFromInt(1000).Add(decimal.RequireFromString(net)),
		Net:              decimal.RequireFromString(net),
		Wagered:          decimal.NewFromInt(500),
		Rounds:           50,
		Accuracy:         97.5,
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := summary(base, "-25")
	second := summary(base.Add(24*time.Hour), "40.5")
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.True(t, second.Net.Equal(all[0].Net))
	assert.True(t, all[0].StartedAt.Equal(second.StartedAt))

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Rounds)
	assert.Equal(t, 97.5, got.Accuracy)

	first.Rounds = 75
	require.NoError(t, store.Save(ctx, first))
	all, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2, "saving an existing id replaces it")
	got, err = store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, got.Rounds)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.IsType(t, &SQLiteStore{}, store)
	exerciseStore(t, store)
}

func TestJSONStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.IsType(t, &JSONStore{}, store)
	exerciseStore(t, store)
}

func TestJSONStoreEmpty(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
	all, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}
