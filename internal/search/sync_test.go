package search

import (
	"errors"
	"testing"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmuebles-portal/internal/models"
)

// fakeIndex stands in for the remote search index.
type fakeIndex struct {
	docs map[string]models.LocationRecord

	upsertCalls  int
	deleteCalls  int
	settingsSets int
	fetchErrs    []error
}

func newFakeIndex(records ...models.LocationRecord) *fakeIndex {
	f := &fakeIndex{docs: map[string]models.LocationRecord{}}
	for _, rec := range records {
		f.docs[rec.ID] = rec
	}
	return f
}

func (f *fakeIndex) EnsureIndex() error { return nil }

func (f *fakeIndex) ApplySettings(synonyms map[string][]string) error {
	f.settingsSets++
	return nil
}

func (f *fakeIndex) FetchAll() ([]models.LocationRecord, error) {
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([]models.LocationRecord, 0, len(f.docs))
	for _, rec := range f.docs {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeIndex) Upsert(batch []models.LocationRecord) error {
	f.upsertCalls++
	for _, rec := range batch {
		f.docs[rec.ID] = rec
	}
	return nil
}

func (f *fakeIndex) Delete(ids []string) error {
	f.deleteCalls++
	for _, id := range ids {
		delete(f.docs, id)
	}
	return nil
}

func locRecord(id, name string, popularity int) models.LocationRecord {
	return models.LocationRecord{
		ID:         id,
		Name:       name,
		Slug:       id,
		Type:       models.TypeCity,
		Popularity: popularity,
	}
}

func newTestSyncer(remote remoteIndex) *Syncer {
	s := NewSyncer(remote, nil)
	s.RetryBase = time.Millisecond
	return s
}

func TestSyncAddUpdateDelete(t *testing.T) {
	unchanged := locRecord("cty-a", "A", 60)
	changed := locRecord("cty-b", "B", 60)
	remoteOnly := locRecord("cty-c", "C", 60)

	remote := newFakeIndex(unchanged, changed, remoteOnly)

	changedLocal := changed
	changedLocal.Popularity = 75
	local := []models.LocationRecord{unchanged, changedLocal, locRecord("cty-d", "D", 50)}

	t.Run("prune on", func(t *testing.T) {
		report, err := newTestSyncer(newFakeIndex(unchanged, changed, remoteOnly)).
			Run(local, nil, SyncOptions{Prune: true})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 1, report.Deleted)
		assert.Equal(t, 1, report.Skipped)
	})

	t.Run("prune off", func(t *testing.T) {
		report, err := newTestSyncer(remote).Run(local, nil, SyncOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Deleted)
		assert.Equal(t, 1, report.Skipped)
	})
}

func TestSyncIdempotence(t *testing.T) {
	local := []models.LocationRecord{
		locRecord("cty-a", "A", 60),
		locRecord("cty-b", "B", 70),
		locRecord("st-x", "X", 80),
	}
	remote := newFakeIndex()
	syncer := newTestSyncer(remote)

	first, err := syncer.Run(local, nil, SyncOptions{Prune: true})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Added)

	// With no local changes, the second run is a pure no-op: every
	// record skips via hash match despite the fresh updated_at stamps.
	second, err := syncer.Run(local, nil, SyncOptions{Prune: true})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, 3, second.Skipped)
}

func TestSyncDryRun(t *testing.T) {
	remote := newFakeIndex(locRecord("cty-old", "Old", 10))
	local := []models.LocationRecord{locRecord("cty-new", "New", 50)}

	report, err := newTestSyncer(remote).Run(local, nil, SyncOptions{Prune: true, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Deleted)
	// Nothing was written.
	assert.Zero(t, remote.upsertCalls)
	assert.Zero(t, remote.deleteCalls)
	assert.Zero(t, remote.settingsSets)
	assert.Contains(t, remote.docs, "cty-old")
}

func TestSyncStampsUpdatedAt(t *testing.T) {
	remote := newFakeIndex()
	local := []models.LocationRecord{locRecord("cty-a", "A", 60)}

	_, err := newTestSyncer(remote).Run(local, nil, SyncOptions{})
	require.NoError(t, err)

	stored := remote.docs["cty-a"]
	require.NotEmpty(t, stored.UpdatedAt)
	_, parseErr := time.Parse(time.RFC3339, stored.UpdatedAt)
	assert.NoError(t, parseErr)
	// The local slice itself is left unstamped.
	assert.Empty(t, local[0].UpdatedAt)
}

func TestSyncBatching(t *testing.T) {
	remote := newFakeIndex()
	syncer := newTestSyncer(remote)
	syncer.BatchSize = 2

	local := []models.LocationRecord{
		locRecord("cty-a", "A", 1),
		locRecord("cty-b", "B", 2),
		locRecord("cty-c", "C", 3),
		locRecord("cty-d", "D", 4),
		locRecord("cty-e", "E", 5),
	}

	report, err := syncer.Run(local, nil, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Added)
	assert.Equal(t, 3, remote.upsertCalls)
}

func TestSyncNonTransientErrorAborts(t *testing.T) {
	remote := newFakeIndex()
	remote.fetchErrs = []error{errors.New("index schema mismatch")}

	_, err := newTestSyncer(remote).Run(nil, nil, SyncOptions{})
	assert.Error(t, err)
}

func TestSyncRetriesTransientErrors(t *testing.T) {
	// Rate limiting and temporary unavailability back off and retry; the
	// run still completes once the remote recovers.
	for _, code := range []int{429, 502, 503, 504} {
		rec := locRecord("cty-a", "A", 60)
		remote := newFakeIndex(rec)
		remote.fetchErrs = []error{&meilisearch.Error{StatusCode: code}}

		report, err := newTestSyncer(remote).Run([]models.LocationRecord{rec}, nil, SyncOptions{})
		require.NoError(t, err, "status %d", code)
		assert.Equal(t, 1, report.Skipped, "status %d", code)
	}
}

func TestSyncRetryBudgetExhausted(t *testing.T) {
	remote := newFakeIndex()
	for i := 0; i < 5; i++ {
		remote.fetchErrs = append(remote.fetchErrs, &meilisearch.Error{StatusCode: 503})
	}

	syncer := newTestSyncer(remote)
	syncer.MaxRetries = 2

	_, err := syncer.Run(nil, nil, SyncOptions{})
	require.Error(t, err)

	var meiliErr *meilisearch.Error
	assert.True(t, errors.As(err, &meiliErr))
}
