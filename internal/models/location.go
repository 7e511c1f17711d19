package models

// EntityType classifies a geographic entity in the location hierarchy.
type EntityType string

const (
	TypeState        EntityType = "state"
	TypeMunicipality EntityType = "municipality"
	TypeCity         EntityType = "city"
	TypeNeighborhood EntityType = "neighborhood"
	TypeMetro        EntityType = "metro"
)

// ParseEntityType validates a raw type string from a query parameter.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case TypeState, TypeMunicipality, TypeCity, TypeNeighborhood, TypeMetro:
		return EntityType(s), true
	}
	return "", false
}

// LocationRecord is the normalized schema for a geographic entity.
// Records are produced in bulk by the ingestion pipeline, stored as a flat
// JSON array, and pushed to the search index by the synchronizer. IDs are
// globally unique across all types; slugs are only unique per id.
type LocationRecord struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Slug string     `json:"slug"`
	Type EntityType `json:"type"`

	// Denormalized ancestor names and slugs so the index can filter
	// without joins.
	State            string `json:"state,omitempty"`
	StateSlug        string `json:"state_slug,omitempty"`
	Municipality     string `json:"municipality,omitempty"`
	MunicipalitySlug string `json:"municipality_slug,omitempty"`
	City             string `json:"city,omitempty"`
	CitySlug         string `json:"city_slug,omitempty"`

	// ParentSlug references the immediate containing entity: state for a
	// municipality, municipality for a city, city for a neighborhood.
	ParentSlug string `json:"parent_slug,omitempty"`

	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	// Popularity ranks result ordering; higher is more prominent.
	Popularity int `json:"popularity"`

	// SearchKeywords holds alias tokens (abbreviations, alternate
	// spellings) that must match even when absent from Name. Treated as a
	// set for hashing.
	SearchKeywords []string `json:"search_keywords,omitempty"`

	// PostalCodes accumulated per entity, mostly at neighborhood
	// granularity. Treated as a set for hashing.
	PostalCodes []string `json:"postal_codes,omitempty"`

	// UpdatedAt is stamped on every upsert to the remote index and is
	// excluded from identity and diff comparisons.
	UpdatedAt string `json:"updated_at,omitempty"`
}
