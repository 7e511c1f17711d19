package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmuebles-portal/internal/models"
)

func TestSnapshotReload(t *testing.T) {
	source := SliceSource{
		{ID: 1, Title: "Casa uno", Status: models.PropertyStatusActive},
		{ID: 2, Title: "Casa dos", Status: models.PropertyStatusActive},
	}

	snap := NewSnapshot(source)
	assert.Zero(t, snap.Len())

	require.NoError(t, snap.Reload())
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "Casa uno", snap.Items()[0].Title)
}

func TestFileSourceFiltersInactive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 1, "title": "Activa", "status": "active"},
		{"id": 2, "title": "Retirada", "status": "removed"},
		{"id": 3, "title": "Sin estado"}
	]`), 0o644))

	items, err := FileSource(path).ListProperties()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)
}

func TestFileSourceRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o644))

	_, err := FileSource(path).ListProperties()
	assert.Error(t, err)
}
