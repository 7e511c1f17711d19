package search

import (
	"errors"
	"sort"
	"strings"

	"inmuebles-portal/internal/locations"
	"inmuebles-portal/internal/models"
	"inmuebles-portal/internal/normalize"
)

const (
	// DefaultLimit applies when the caller supplies no limit.
	DefaultLimit = 12
	maxLimit     = 20

	defaultTopCities = 8
	defaultTopStates = 6

	jointSearchLimit  = 15
	backfillThreshold = 10
	backfillLimit     = 10
)

// ErrRemoteSearch wraps remote index failures so handlers can distinguish
// "search unavailable" from "no results".
var ErrRemoteSearch = errors.New("remote location search failed")

// SearchOptions scope one backend query.
type SearchOptions struct {
	// Types restricts matching to the given entity types; empty means all.
	Types []models.EntityType
	// CitySlug restricts neighborhood matches to one city.
	CitySlug string
	Limit    int
}

// Backend answers location queries. The remote implementation delegates to
// the search index (typo tolerance, synonyms); the local one scans the
// in-memory dataset with plain normalized substring matching. Both must
// rank by popularity descending then name ascending.
type Backend interface {
	Search(query string, opts SearchOptions) ([]models.LocationRecord, error)
	Top(t models.EntityType, limit int) ([]models.LocationRecord, error)
	Name() string
}

// GroupedResult partitions matches by display group. Slices are never nil
// so the JSON shape stays stable.
type GroupedResult struct {
	Cities        []models.LocationRecord `json:"cities"`
	States        []models.LocationRecord `json:"states"`
	Neighborhoods []models.LocationRecord `json:"neighborhoods"`
}

func newGroupedResult() *GroupedResult {
	return &GroupedResult{
		Cities:        []models.LocationRecord{},
		States:        []models.LocationRecord{},
		Neighborhoods: []models.LocationRecord{},
	}
}

// Resolver turns free-text queries into grouped, ranked results. The
// backend is chosen once at startup; grouping, ranking and backfill rules
// are identical in both modes.
type Resolver struct {
	backend Backend
}

func NewResolver(backend Backend) *Resolver {
	return &Resolver{backend: backend}
}

// BackendName identifies the active mode for logs and health output.
func (r *Resolver) BackendName() string {
	return r.backend.Name()
}

// Resolve answers "what locations match this text". An empty or
// sub-2-character query returns the curated default view: top cities and
// top states by popularity, no neighborhoods. With an explicit type the
// search is scoped to it, with parentSlug further restricting
// neighborhoods to their city. Otherwise states and cities are searched
// jointly and neighborhoods backfill only when the combined hit count is
// sparse, so they don't drown strong city/state matches.
func (r *Resolver) Resolve(query string, entityType models.EntityType, parentSlug string, limit int) (*GroupedResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return r.curatedDefault()
	}

	if entityType != "" {
		return r.typedSearch(query, entityType, parentSlug, limit)
	}
	return r.jointSearch(query)
}

func (r *Resolver) curatedDefault() (*GroupedResult, error) {
	result := newGroupedResult()

	cities, err := r.backend.Top(models.TypeCity, defaultTopCities)
	if err != nil {
		return nil, err
	}
	states, err := r.backend.Top(models.TypeState, defaultTopStates)
	if err != nil {
		return nil, err
	}

	result.Cities = dedupeByID(cities)
	result.States = dedupeByID(states)
	return result, nil
}

func (r *Resolver) typedSearch(query string, entityType models.EntityType, parentSlug string, limit int) (*GroupedResult, error) {
	opts := SearchOptions{Types: []models.EntityType{entityType}, Limit: limit}
	if entityType == models.TypeNeighborhood {
		opts.CitySlug = parentSlug
	}

	hits, err := r.backend.Search(query, opts)
	if err != nil {
		return nil, err
	}

	result := newGroupedResult()
	partition(result, dedupeByID(hits))
	return result, nil
}

func (r *Resolver) jointSearch(query string) (*GroupedResult, error) {
	hits, err := r.backend.Search(query, SearchOptions{
		Types: []models.EntityType{models.TypeState, models.TypeCity},
		Limit: jointSearchLimit,
	})
	if err != nil {
		return nil, err
	}

	result := newGroupedResult()
	hits = dedupeByID(hits)
	partition(result, hits)

	if len(hits) < backfillThreshold {
		hoods, err := r.backend.Search(query, SearchOptions{
			Types: []models.EntityType{models.TypeNeighborhood},
			Limit: backfillLimit,
		})
		if err != nil {
			return nil, err
		}
		result.Neighborhoods = dedupeByID(hoods)
	}
	return result, nil
}

// partition routes records into display groups: states alone, neighborhoods
// alone, everything else (municipality, city, metro) into cities.
func partition(result *GroupedResult, records []models.LocationRecord) {
	for _, rec := range records {
		switch rec.Type {
		case models.TypeState:
			result.States = append(result.States, rec)
		case models.TypeNeighborhood:
			result.Neighborhoods = append(result.Neighborhoods, rec)
		default:
			result.Cities = append(result.Cities, rec)
		}
	}
}

func dedupeByID(records []models.LocationRecord) []models.LocationRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.LocationRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// localBackend serves queries from the in-memory dataset when no remote
// index is configured. It has no synonym table: abbreviation queries only
// match through each record's embedded search keywords, so local mode may
// legitimately return fewer results than remote mode.
type localBackend struct {
	dataset *locations.Dataset
}

// NewLocalBackend wraps a dataset provider as the fallback backend.
func NewLocalBackend(dataset *locations.Dataset) Backend {
	return &localBackend{dataset: dataset}
}

func (b *localBackend) Name() string { return "local" }

func (b *localBackend) Search(query string, opts SearchOptions) ([]models.LocationRecord, error) {
	folded := normalize.Fold(query)

	var matches []models.LocationRecord
	for _, rec := range b.dataset.All() {
		if !typeAllowed(rec.Type, opts.Types) {
			continue
		}
		if opts.CitySlug != "" && rec.CitySlug != opts.CitySlug {
			continue
		}
		if folded != "" && !localMatch(rec, folded) {
			continue
		}
		matches = append(matches, rec)
	}

	rankByPopularity(matches)
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

func (b *localBackend) Top(t models.EntityType, limit int) ([]models.LocationRecord, error) {
	return b.Search("", SearchOptions{Types: []models.EntityType{t}, Limit: limit})
}

// localMatch mirrors the matching contract: folded name starts with or
// contains the folded query, or the folded keyword string contains it.
func localMatch(rec models.LocationRecord, folded string) bool {
	name := normalize.Fold(rec.Name)
	if strings.HasPrefix(name, folded) || strings.Contains(name, folded) {
		return true
	}
	if len(rec.SearchKeywords) == 0 {
		return false
	}
	keywords := normalize.Fold(strings.Join(rec.SearchKeywords, " "))
	return strings.Contains(keywords, folded)
}

func typeAllowed(t models.EntityType, allowed []models.EntityType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func rankByPopularity(records []models.LocationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Popularity != records[j].Popularity {
			return records[i].Popularity > records[j].Popularity
		}
		return records[i].Name < records[j].Name
	})
}

// remoteBackend adapts LocationIndex to the Backend interface. Errors are
// wrapped in ErrRemoteSearch; a configured-but-failing index is surfaced,
// never silently degraded to local data.
type remoteBackend struct {
	index *LocationIndex
}

// NewRemoteBackend wraps the search index client as the remote backend.
func NewRemoteBackend(index *LocationIndex) Backend {
	return &remoteBackend{index: index}
}

func (b *remoteBackend) Name() string { return "remote" }

func (b *remoteBackend) Search(query string, opts SearchOptions) ([]models.LocationRecord, error) {
	records, err := b.index.Search(query, opts)
	if err != nil {
		return nil, errors.Join(ErrRemoteSearch, err)
	}
	return records, nil
}

func (b *remoteBackend) Top(t models.EntityType, limit int) ([]models.LocationRecord, error) {
	records, err := b.index.Top(t, limit)
	if err != nil {
		return nil, errors.Join(ErrRemoteSearch, err)
	}
	return records, nil
}
