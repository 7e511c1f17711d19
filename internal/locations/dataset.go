// Package locations provides the read-only location dataset consumed by
// the local search fallback. The dataset is loaded once and reused across
// requests; Reload swaps it atomically so tests and operators can refresh
// it without restarting.
package locations

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"inmuebles-portal/internal/models"
)

// Dataset holds an immutable snapshot of location records behind a
// read/write lock. Concurrent readers are independent.
type Dataset struct {
	mu      sync.RWMutex
	path    string
	records []models.LocationRecord
}

// Open loads the canonical JSON array from path.
func Open(path string) (*Dataset, error) {
	d := &Dataset{path: path}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// FromRecords builds a dataset from an in-memory slice, used by tests and
// by callers that already hold ingestion output.
func FromRecords(records []models.LocationRecord) *Dataset {
	return &Dataset{records: records}
}

// Reload re-reads the backing file. A dataset built from records is left
// unchanged.
func (d *Dataset) Reload() error {
	if d.path == "" {
		return nil
	}
	records, err := Load(d.path)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.records = records
	d.mu.Unlock()
	return nil
}

// All returns the current snapshot. Callers must not mutate it.
func (d *Dataset) All() []models.LocationRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

// Len reports the snapshot size.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Load reads a JSON array of location records from disk. A root that is
// not an array is an error.
func Load(path string) ([]models.LocationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations dataset: %w", err)
	}
	var records []models.LocationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("locations dataset root must be a JSON array: %w", err)
	}
	return records, nil
}
