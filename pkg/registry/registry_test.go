package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesEmptyFileWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_systems.json")
	r, err := New(path)
	require.NoError(t, err)

	entries, err := r.All()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_systems.json")
	r, err := New(path)
	require.NoError(t, err)

	require.NoError(t, r.Add("sys1", "5000", 5000))
	require.NoError(t, r.Add("sys1", "5000", 5000))

	entries, err := r.All()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRemoveDeregisters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_systems.json")
	r, err := New(path)
	require.NoError(t, err)

	require.NoError(t, r.Add("sys1", "5000", 5000))
	require.NoError(t, r.Add("sys2", "5001", 5001))
	require.NoError(t, r.Remove("sys1"))

	entries, err := r.All()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sys2", entries[0].ID)
}

func TestLookupFindsRegisteredEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_systems.json")
	r, err := New(path)
	require.NoError(t, err)
	require.NoError(t, r.Add("sys1", "5000", 5000))

	entry, ok := r.Lookup("sys1")
	require.True(t, ok)
	assert.Equal(t, 5000, entry.Port)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}
