package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string  `json:"id"`
	Rounds int     `json:"rounds"`
	Net    float64 `json:"net"`
}

func TestReadJSONMissingFile(t *testing.T) {
	t.Parallel()

	var got []record
	found, err := ReadJSON(filepath.Join(t.TempDir(), "sessions.json"), &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestWriteJSONAtomicReplacesHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")

	first := []record{{ID: "a", Rounds: 10, Net: -25}}
	require.NoError(t, WriteJSONAtomic(path, first, 0o644))

	second := append(first, record{ID: "b", Rounds: 3, Net: 12.5})
	require.NoError(t, WriteJSONAtomic(path, second, 0o644))

	var got []record
	found, err := ReadJSON(path, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// Only the target remains once the rename has landed
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sessions.json", entries[0].Name())
}

func TestWriteJSONAtomicIsIndented(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteJSONAtomic(path, record{ID: "x", Rounds: 1}, 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": \"x\",\n  \"rounds\": 1,\n  \"net\": 0\n}\n", string(data))
}

func TestWriteJSONAtomicUnencodable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := WriteJSONAtomic(filepath.Join(dir, "bad.json"), map[string]any{"ch": make(chan int)}, 0o644)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode bad.json")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteJSONAtomicMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope", "sessions.json")
	assert.Error(t, WriteJSONAtomic(path, []record{}, 0o644))
}

func TestReadJSONCorruptKeepsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, WriteFileAtomic(path, []byte(`[{"id": "a", "rounds": `), 0o644))

	var got []record
	found, err := ReadJSON(path, &got)
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "decode sessions.json")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
