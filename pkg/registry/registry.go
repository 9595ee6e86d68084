// Package registry is the shared, cross-process record of which systems are
// live and on what port, backed by a single global_systems.json file in the
// process working directory. Every instance on the host reads and writes
// the same file without a cross-process lock: each write replaces the file
// atomically, concurrent writers from sibling instances are last-write-wins,
// and a bounded retry covers failed reads and writes.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cuemby/arraysim/pkg/types"
)

const (
	defaultPath  = "global_systems.json"
	retryAttempts = 3
	retryDelay    = 20 * time.Millisecond
)

// Registry wraps the shared registry file. A single process-local mutex
// serializes this process's own writers; writes from sibling instances are
// not coordinated with it.
type Registry struct {
	mu   sync.Mutex
	path string
}

// New returns a Registry rooted at the given path (pass "" for the default
// global_systems.json in the working directory), creating an empty file if
// absent.
func New(path string) (*Registry, error) {
	if path == "" {
		path = defaultPath
	}
	r := &Registry{path: path}
	if info, err := os.Stat(path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		if err := writeEntries(path, []types.RegistryEntry{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func readEntries(path string) ([]types.RegistryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.RegistryEntry{}, nil
		}
		return nil, err
	}
	var entries []types.RegistryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []types.RegistryEntry{}, nil
	}
	return entries, nil
}

func writeEntries(path string, entries []types.RegistryEntry) error {
	if entries == nil {
		entries = []types.RegistryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp-%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Add registers a system, a no-op if it is already present. Retries a
// bounded number of times if reading or writing the file fails; a sibling
// process writing between this read and write is not detected, and the
// later write wins.
func (r *Registry) Add(id, name string, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		entries, err := readEntries(r.path)
		if err != nil {
			lastErr = err
			time.Sleep(retryDelay)
			continue
		}
		for _, e := range entries {
			if e.ID == id {
				return nil
			}
		}
		entries = append(entries, types.RegistryEntry{ID: id, Name: name, Port: port})
		if err := writeEntries(r.path, entries); err != nil {
			lastErr = err
			time.Sleep(retryDelay)
			continue
		}
		return nil
	}
	return fmt.Errorf("registry add failed after %d attempts: %w", retryAttempts, lastErr)
}

// Remove deregisters a system. A no-op if not present.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		entries, err := readEntries(r.path)
		if err != nil {
			lastErr = err
			time.Sleep(retryDelay)
			continue
		}
		kept := make([]types.RegistryEntry, 0, len(entries))
		for _, e := range entries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		if err := writeEntries(r.path, kept); err != nil {
			lastErr = err
			time.Sleep(retryDelay)
			continue
		}
		return nil
	}
	return fmt.Errorf("registry remove failed after %d attempts: %w", retryAttempts, lastErr)
}

// All returns a snapshot of every registered system.
func (r *Registry) All() ([]types.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return readEntries(r.path)
}

// Lookup returns the registry entry for id, if any.
func (r *Registry) Lookup(id string) (types.RegistryEntry, bool) {
	entries, err := r.All()
	if err != nil {
		return types.RegistryEntry{}, false
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return types.RegistryEntry{}, false
}
