package search

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/models"
)

// remoteIndex is the synchronizer's view of the search index. LocationIndex
// implements it; tests substitute a fake.
type remoteIndex interface {
	EnsureIndex() error
	ApplySettings(synonyms map[string][]string) error
	FetchAll() ([]models.LocationRecord, error)
	Upsert(batch []models.LocationRecord) error
	Delete(ids []string) error
}

// SyncOptions control one reconciliation run.
type SyncOptions struct {
	// Prune deletes remote ids absent from the local dataset.
	Prune bool
	// DryRun classifies without writing anything.
	DryRun bool
}

// SyncReport summarizes a run. Running twice with no local changes must
// yield zero adds, updates and deletes on the second run.
type SyncReport struct {
	Added   int
	Updated int
	Deleted int
	Skipped int
}

// Syncer reconciles the canonical local dataset against the remote index,
// applying only the minimal add/update/delete sets. Batches are applied
// sequentially, each confirmed before the next, so remote state stays
// observable and a retry never interleaves with an in-flight batch.
type Syncer struct {
	remote remoteIndex
	logger *logrus.Logger

	// BatchSize bounds one upsert or delete call.
	BatchSize int
	// MaxRetries bounds backoff attempts for transient remote errors.
	MaxRetries int
	// RetryBase is the initial backoff delay, doubled per attempt and
	// capped at 30s.
	RetryBase time.Duration

	now func() time.Time
}

func NewSyncer(remote remoteIndex, logger *logrus.Logger) *Syncer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Syncer{
		remote:     remote,
		logger:     logger,
		BatchSize:  5000,
		MaxRetries: 5,
		RetryBase:  500 * time.Millisecond,
		now:        time.Now,
	}
}

type syncPlan struct {
	upserts []models.LocationRecord
	deletes []string
	added   int
	updated int
	skipped int
}

// classify diffs local records against remote hashes. Locally duplicated
// ids keep the first occurrence; the dataset guarantees uniqueness.
func classify(local, remote []models.LocationRecord, prune bool) syncPlan {
	remoteHashes := make(map[string]string, len(remote))
	for _, rec := range remote {
		remoteHashes[rec.ID] = ContentHash(rec)
	}

	var plan syncPlan
	seen := make(map[string]struct{}, len(local))
	for _, rec := range local {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}

		remoteHash, exists := remoteHashes[rec.ID]
		switch {
		case !exists:
			plan.added++
			plan.upserts = append(plan.upserts, rec)
		case remoteHash != ContentHash(rec):
			plan.updated++
			plan.upserts = append(plan.upserts, rec)
		default:
			plan.skipped++
		}
	}

	if prune {
		for _, rec := range remote {
			if _, ok := seen[rec.ID]; !ok {
				plan.deletes = append(plan.deletes, rec.ID)
			}
		}
	}
	return plan
}

// Run executes one reconciliation. The synonym table is re-applied with
// the index settings on every non-dry run.
func (s *Syncer) Run(local []models.LocationRecord, synonyms map[string][]string, opts SyncOptions) (*SyncReport, error) {
	var remote []models.LocationRecord
	err := s.withRetry("fetch remote documents", func() error {
		var fetchErr error
		remote, fetchErr = s.remote.FetchAll()
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote records: %w", err)
	}

	plan := classify(local, remote, opts.Prune)
	report := &SyncReport{
		Added:   plan.added,
		Updated: plan.updated,
		Deleted: len(plan.deletes),
		Skipped: plan.skipped,
	}

	s.logger.WithFields(logrus.Fields{
		"local":   len(local),
		"remote":  len(remote),
		"added":   report.Added,
		"updated": report.Updated,
		"deleted": report.Deleted,
		"skipped": report.Skipped,
		"dry_run": opts.DryRun,
	}).Info("sync plan computed")

	if opts.DryRun {
		return report, nil
	}

	if err := s.withRetry("ensure index", s.remote.EnsureIndex); err != nil {
		return nil, fmt.Errorf("failed to ensure index: %w", err)
	}
	if err := s.withRetry("apply index settings", func() error {
		return s.remote.ApplySettings(synonyms)
	}); err != nil {
		return nil, fmt.Errorf("failed to apply index settings: %w", err)
	}

	stamp := s.now().UTC().Format(time.RFC3339)
	for start := 0; start < len(plan.upserts); start += s.BatchSize {
		end := minInt(start+s.BatchSize, len(plan.upserts))
		batch := make([]models.LocationRecord, end-start)
		copy(batch, plan.upserts[start:end])
		for i := range batch {
			batch[i].UpdatedAt = stamp
		}
		if err := s.withRetry("upsert batch", func() error {
			return s.remote.Upsert(batch)
		}); err != nil {
			return nil, fmt.Errorf("failed to upsert batch at offset %d: %w", start, err)
		}
		s.logger.WithField("count", len(batch)).Debug("batch upserted")
	}

	for start := 0; start < len(plan.deletes); start += s.BatchSize {
		end := minInt(start+s.BatchSize, len(plan.deletes))
		if err := s.withRetry("delete batch", func() error {
			return s.remote.Delete(plan.deletes[start:end])
		}); err != nil {
			return nil, fmt.Errorf("failed to delete batch at offset %d: %w", start, err)
		}
	}

	return report, nil
}

// withRetry retries transient remote failures with exponential backoff.
// Non-transient failures and retry-budget exhaustion propagate, aborting
// the run; already-applied batches are not rolled back.
func (s *Syncer) withRetry(op string, fn func() error) error {
	delay := s.RetryBase
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt >= s.MaxRetries {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).WithError(err).Warn("transient remote error, backing off")
		time.Sleep(delay)
		delay *= 2
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
