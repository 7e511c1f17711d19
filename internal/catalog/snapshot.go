// Package catalog serves the in-memory property snapshot the faceted
// filter runs over. The snapshot is an explicitly constructed, injected
// read-only provider: loaded once at startup, refreshed on demand, never
// mutated by facet evaluation, so concurrent reads are safe.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"inmuebles-portal/internal/models"
)

// Source supplies the full active catalog on each reload.
type Source interface {
	ListProperties() ([]models.Property, error)
}

// Snapshot caches the catalog behind a read/write lock.
type Snapshot struct {
	mu     sync.RWMutex
	source Source
	items  []models.Property
}

// NewSnapshot builds an empty snapshot over the given source; call Reload
// to populate it.
func NewSnapshot(source Source) *Snapshot {
	return &Snapshot{source: source}
}

// Reload swaps in a fresh read of the catalog.
func (s *Snapshot) Reload() error {
	items, err := s.source.ListProperties()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns the current snapshot. Callers must not mutate it.
func (s *Snapshot) Items() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Len reports the snapshot size.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// fileSource reads the catalog from a JSON seed file, used when no
// database is configured and as the fixture path in tests.
type fileSource struct {
	path string
}

// FileSource returns a Source backed by a JSON array of properties.
func FileSource(path string) Source {
	return &fileSource{path: path}
}

func (f *fileSource) ListProperties() ([]models.Property, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	var items []models.Property
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("catalog seed root must be a JSON array: %w", err)
	}
	active := items[:0]
	for _, p := range items {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

// SliceSource wraps an in-memory slice, used by tests.
type SliceSource []models.Property

func (s SliceSource) ListProperties() ([]models.Property, error) {
	return s, nil
}
