// Package storage is the persistence façade: one JSON file per collection,
// written atomically (temp file + rename) and serialized by a per-collection
// mutex. It has no notion of the resource model above it; callers supply the
// record type and an id accessor.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuemby/arraysim/pkg/log"
)

// Store is a directory of named JSON collections.
type Store struct {
	dir string

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) lockFor(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// writeAtomic writes data to the collection file via a sibling temp file and
// rename, so a crash mid-write leaves the previous version readable.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadList reads a list-valued collection, returning an empty slice if the
// file is absent or fails to parse.
func LoadList[T any](s *Store, collection string) []T {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	return loadListLocked[T](s, collection)
}

func loadListLocked[T any](s *Store, collection string) []T {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		log.WithComponent("storage").Warn().Str("collection", collection).Err(err).Msg("failed to parse collection, treating as empty")
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func saveListLocked[T any](s *Store, collection string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path(collection), data)
}

// Append adds rec to collection, failing if a record with the same id
// already exists.
func Append[T any](s *Store, collection string, rec T, idOf func(T) string) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	list := loadListLocked[T](s, collection)
	id := idOf(rec)
	for _, it := range list {
		if idOf(it) == id {
			return fmt.Errorf("%s with id %s already exists", collection, id)
		}
	}
	list = append(list, rec)
	return saveListLocked(s, collection, list)
}

// AppendLog adds rec to an append-only collection with no id uniqueness
// constraint (io_metrics and similar sample streams).
func AppendLog[T any](s *Store, collection string, rec T) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	list := loadListLocked[T](s, collection)
	list = append(list, rec)
	return saveListLocked(s, collection, list)
}

// Replace overwrites the record matching id; no-op if absent.
func Replace[T any](s *Store, collection string, id string, rec T, idOf func(T) string) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	list := loadListLocked[T](s, collection)
	for i, it := range list {
		if idOf(it) == id {
			list[i] = rec
			return saveListLocked(s, collection, list)
		}
	}
	return nil
}

// Delete removes the record matching id, or clears the whole collection if
// id is nil. Returns an error if the record is still present afterward.
func Delete[T any](s *Store, collection string, id *string, idOf func(T) string) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	if id == nil {
		return saveListLocked[T](s, collection, []T{})
	}
	list := loadListLocked[T](s, collection)
	kept := make([]T, 0, len(list))
	for _, it := range list {
		if idOf(it) != *id {
			kept = append(kept, it)
		}
	}
	if err := saveListLocked(s, collection, kept); err != nil {
		return err
	}
	for _, it := range kept {
		if idOf(it) == *id {
			return fmt.Errorf("failed to delete %s %s", collection, *id)
		}
	}
	return nil
}

// DeleteWhere removes every record for which match returns true.
func DeleteWhere[T any](s *Store, collection string, match func(T) bool) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	list := loadListLocked[T](s, collection)
	kept := make([]T, 0, len(list))
	for _, it := range list {
		if !match(it) {
			kept = append(kept, it)
		}
	}
	return saveListLocked(s, collection, kept)
}

// LoadSingleton reads a singleton-valued collection (e.g. system_metrics),
// returning the zero value if absent or unparsable.
func LoadSingleton[T any](s *Store, collection string) T {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	var out T
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.WithComponent("storage").Warn().Str("collection", collection).Err(err).Msg("failed to parse singleton, treating as zero value")
		var zero T
		return zero
	}
	return out
}

// Overwrite replaces the entire contents of a singleton-valued collection.
func Overwrite[T any](s *Store, collection string, v T) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()
	return overwriteLocked(s, collection, v)
}

func overwriteLocked[T any](s *Store, collection string, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path(collection), data)
}

// MutateSingleton loads a singleton collection, applies fn, and saves the
// result, all under one hold of the collection's lock — the read-modify-
// write primitive callers need when Load-then-Overwrite would otherwise
// race against a concurrent writer of the same collection.
func MutateSingleton[T any](s *Store, collection string, fn func(T) T) error {
	l := s.lockFor(collection)
	l.Lock()
	defer l.Unlock()

	var current T
	data, err := os.ReadFile(s.path(collection))
	if err == nil {
		_ = json.Unmarshal(data, &current)
	}
	updated := fn(current)
	return overwriteLocked(s, collection, updated)
}
