package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inmuebles-portal/internal/models"
)

func sampleRecord() models.LocationRecord {
	lat, lng := 19.43, -99.13
	return models.LocationRecord{
		ID:             "nb-ciudad-de-mexico-roma-norte",
		Name:           "Roma Norte",
		Slug:           "roma-norte",
		Type:           models.TypeNeighborhood,
		State:          "Ciudad de México",
		StateSlug:      "ciudad-de-mexico",
		City:           "Ciudad de México",
		CitySlug:       "ciudad-de-mexico",
		ParentSlug:     "ciudad-de-mexico",
		Lat:            &lat,
		Lng:            &lng,
		Popularity:     72,
		SearchKeywords: []string{"roma", "la roma"},
		PostalCodes:    []string{"06700", "06760"},
	}
}

func TestContentHashSetReordering(t *testing.T) {
	base := sampleRecord()

	reordered := sampleRecord()
	reordered.SearchKeywords = []string{"la roma", "roma"}
	reordered.PostalCodes = []string{"06760", "06700"}

	// Keywords and postal codes are sets; order never affects identity.
	assert.Equal(t, ContentHash(base), ContentHash(reordered))
}

func TestContentHashIgnoresDuplicatesAndEmpties(t *testing.T) {
	base := sampleRecord()

	noisy := sampleRecord()
	noisy.PostalCodes = []string{"06700", "06700", "", "06760"}

	assert.Equal(t, ContentHash(base), ContentHash(noisy))
}

func TestContentHashExcludesUpdatedAt(t *testing.T) {
	base := sampleRecord()

	stamped := sampleRecord()
	stamped.UpdatedAt = "2026-01-15T10:00:00Z"

	assert.Equal(t, ContentHash(base), ContentHash(stamped))
}

func TestContentHashDetectsChanges(t *testing.T) {
	base := sampleRecord()

	changed := sampleRecord()
	changed.Popularity = 73
	assert.NotEqual(t, ContentHash(base), ContentHash(changed))

	renamed := sampleRecord()
	renamed.Name = "Roma Sur"
	assert.NotEqual(t, ContentHash(base), ContentHash(renamed))

	moved := sampleRecord()
	moved.Lat = nil
	assert.NotEqual(t, ContentHash(base), ContentHash(moved))
}
