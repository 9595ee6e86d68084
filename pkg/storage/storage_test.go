package storage

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string
	Count int
}

func idOfWidget(w widget) string { return w.ID }

func TestAppendAndLoadList(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Append(s, "widgets", widget{ID: "a", Count: 1}, idOfWidget))
	require.NoError(t, Append(s, "widgets", widget{ID: "b", Count: 2}, idOfWidget))

	list := LoadList[widget](s, "widgets")
	assert.Len(t, list, 2)
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Append(s, "widgets", widget{ID: "a"}, idOfWidget))
	err = Append(s, "widgets", widget{ID: "a"}, idOfWidget)
	assert.Error(t, err)
}

func TestReplaceUpdatesMatchingRecord(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Append(s, "widgets", widget{ID: "a", Count: 1}, idOfWidget))
	require.NoError(t, Replace(s, "widgets", "a", widget{ID: "a", Count: 9}, idOfWidget))

	list := LoadList[widget](s, "widgets")
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].Count)
}

func TestDeleteByIDAndWholeCollection(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Append(s, "widgets", widget{ID: "a"}, idOfWidget))
	require.NoError(t, Append(s, "widgets", widget{ID: "b"}, idOfWidget))

	id := "a"
	require.NoError(t, Delete[widget](s, "widgets", &id, idOfWidget))
	assert.Len(t, LoadList[widget](s, "widgets"), 1)

	require.NoError(t, Delete[widget](s, "widgets", nil, idOfWidget))
	assert.Empty(t, LoadList[widget](s, "widgets"))
}

func TestLoadListOnMissingOrCorruptFileReturnsEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, LoadList[widget](s, "never-written"))

	require.NoError(t, os.WriteFile(s.path("broken"), []byte("not json"), 0o644))
	assert.Empty(t, LoadList[widget](s, "broken"))
}

func TestOverwriteAndLoadSingleton(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Overwrite(s, "system", widget{ID: "sys1", Count: 5}))
	got := LoadSingleton[widget](s, "system")
	assert.Equal(t, "sys1", got.ID)
	assert.Equal(t, 5, got.Count)
}

func TestMutateSingletonAppliesFnAtomically(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Overwrite(s, "counter", widget{Count: 0}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = MutateSingleton(s, "counter", func(w widget) widget {
				w.Count++
				return w
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, LoadSingleton[widget](s, "counter").Count)
}

func TestWritesAreAtomicViaTempRename(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, Overwrite(s, "system", widget{ID: "x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "no leftover temp file expected, found %s", e.Name())
	}
}

func TestDeleteWhereRemovesMatching(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Append(s, "widgets", widget{ID: "a", Count: 1}, idOfWidget))
	require.NoError(t, Append(s, "widgets", widget{ID: "b", Count: 2}, idOfWidget))

	require.NoError(t, DeleteWhere(s, "widgets", func(w widget) bool { return w.Count == 1 }))
	list := LoadList[widget](s, "widgets")
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}
