// Package ingest transforms a raw postal/administrative dataset into the
// four-tier location hierarchy (state, municipality, city, neighborhood).
package ingest

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/aliases"
	"inmuebles-portal/internal/models"
	"inmuebles-portal/internal/normalize"
)

// Row is one source record from the postal dataset. State and municipality
// are required; a row without them is skipped.
type Row struct {
	Neighborhood string
	Municipality string
	State        string
	PostalCode   string
	Lat          *float64
	Lng          *float64
}

// GazetteerEntry supplies population and coordinates for a locality,
// matched case- and accent-insensitively on (state, municipality).
type GazetteerEntry struct {
	State      string   `json:"state"`
	Name       string   `json:"name"`
	Population int      `json:"population"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Result is the flat output of one pipeline run.
type Result struct {
	Records []models.LocationRecord
	Skipped int
}

// Pipeline derives location records from source rows. Runs are
// deterministic: popularity scores come from the bucketed population curve
// or from a stable hash of the record slug, never from a random source.
type Pipeline struct {
	aliases *aliases.Table
	logger  *logrus.Logger
}

func NewPipeline(table *aliases.Table, logger *logrus.Logger) *Pipeline {
	if table == nil {
		table = aliases.Default()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{aliases: table, logger: logger}
}

// Run builds the full hierarchy from scratch. Repeated rows for the same
// neighborhood accumulate postal codes into a deduplicated set; the first
// occurrence of a name wins for display.
func (p *Pipeline) Run(rows []Row, gazetteer []GazetteerEntry) *Result {
	gaz := indexGazetteer(gazetteer)

	states := map[string]*models.LocationRecord{}
	muns := map[string]*models.LocationRecord{}
	cities := map[string]*models.LocationRecord{}
	hoods := map[string]*models.LocationRecord{}
	hoodPostals := map[string]map[string]struct{}{}

	skipped := 0
	for _, row := range rows {
		stateName := strings.TrimSpace(row.State)
		munName := strings.TrimSpace(row.Municipality)
		if stateName == "" || munName == "" {
			skipped++
			continue
		}

		st := p.upsertState(states, stateName)
		mun := p.upsertMunicipality(muns, st, munName)
		city := p.upsertCity(cities, st, mun, gaz)

		hoodName := strings.TrimSpace(row.Neighborhood)
		if hoodName == "" {
			continue
		}
		hood := p.upsertNeighborhood(hoods, st, mun, city, hoodName, row)
		if code := strings.TrimSpace(row.PostalCode); code != "" {
			set := hoodPostals[hood.ID]
			if set == nil {
				set = map[string]struct{}{}
				hoodPostals[hood.ID] = set
			}
			set[code] = struct{}{}
		}
	}

	hoodsByID := make(map[string]*models.LocationRecord, len(hoods))
	for _, rec := range hoods {
		hoodsByID[rec.ID] = rec
	}
	for id, set := range hoodPostals {
		codes := make([]string, 0, len(set))
		for c := range set {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		hoodsByID[id].PostalCodes = codes
	}

	records := make([]models.LocationRecord, 0, len(states)+len(muns)+len(cities)+len(hoods))
	records = append(records, collect(states)...)
	records = append(records, collect(muns)...)
	records = append(records, collect(cities)...)
	records = append(records, collect(hoods)...)

	return &Result{Records: records, Skipped: skipped}
}

func (p *Pipeline) upsertState(states map[string]*models.LocationRecord, name string) *models.LocationRecord {
	slug := normalize.Slug(name)
	if rec, ok := states[slug]; ok {
		return rec
	}
	rec := &models.LocationRecord{
		ID:             "st-" + slug,
		Name:           name,
		Slug:           slug,
		Type:           models.TypeState,
		State:          name,
		StateSlug:      slug,
		Popularity:     scoreInRange(slug, 70, 85),
		SearchKeywords: p.aliases.States[normalize.Fold(name)],
	}
	states[slug] = rec
	return rec
}

func (p *Pipeline) upsertMunicipality(muns map[string]*models.LocationRecord, st *models.LocationRecord, name string) *models.LocationRecord {
	slug := normalize.Slug(name)
	key := st.Slug + "/" + slug
	if rec, ok := muns[key]; ok {
		return rec
	}
	keywords := append([]string{}, p.aliases.MunicipalityHints...)
	keywords = append(keywords, p.aliases.Municipalities[normalize.Fold(name)]...)
	rec := &models.LocationRecord{
		ID:               "mun-" + st.Slug + "-" + slug,
		Name:             name,
		Slug:             slug,
		Type:             models.TypeMunicipality,
		State:            st.Name,
		StateSlug:        st.Slug,
		Municipality:     name,
		MunicipalitySlug: slug,
		ParentSlug:       st.Slug,
		Popularity:       60,
		SearchKeywords:   keywords,
	}
	muns[key] = rec
	return rec
}

// upsertCity derives a city from the municipality seat. The source data
// has no independent city concept, so the municipality name stands in for
// the city; the gazetteer refines coordinates and popularity when it has a
// matching locality.
func (p *Pipeline) upsertCity(cities map[string]*models.LocationRecord, st, mun *models.LocationRecord, gaz map[string]GazetteerEntry) *models.LocationRecord {
	key := st.Slug + "/" + mun.Slug
	if rec, ok := cities[key]; ok {
		return rec
	}
	rec := &models.LocationRecord{
		ID:               "cty-" + st.Slug + "-" + mun.Slug,
		Name:             mun.Name,
		Slug:             mun.Slug,
		Type:             models.TypeCity,
		State:            st.Name,
		StateSlug:        st.Slug,
		Municipality:     mun.Name,
		MunicipalitySlug: mun.Slug,
		City:             mun.Name,
		CitySlug:         mun.Slug,
		ParentSlug:       mun.Slug,
		Popularity:       60,
	}
	if entry, ok := gaz[normalize.Fold(st.Name)+"/"+normalize.Fold(mun.Name)]; ok {
		rec.Lat = entry.Lat
		rec.Lng = entry.Lng
		rec.Popularity = populationScore(entry.Population)
		// The municipality shares its seat's score and coordinates.
		mun.Popularity = rec.Popularity
		mun.Lat = entry.Lat
		mun.Lng = entry.Lng
	}
	cities[key] = rec
	return rec
}

func (p *Pipeline) upsertNeighborhood(hoods map[string]*models.LocationRecord, st, mun, city *models.LocationRecord, name string, row Row) *models.LocationRecord {
	slug := normalize.Slug(name)
	key := city.CitySlug + "/" + slug
	if rec, ok := hoods[key]; ok {
		return rec
	}
	lo, hi := 30, 49
	if p.aliases.IsMetroCity(city.CitySlug) {
		lo, hi = 55, 79
	}
	rec := &models.LocationRecord{
		ID:               "nb-" + city.CitySlug + "-" + slug,
		Name:             name,
		Slug:             slug,
		Type:             models.TypeNeighborhood,
		State:            st.Name,
		StateSlug:        st.Slug,
		Municipality:     mun.Name,
		MunicipalitySlug: mun.Slug,
		City:             city.Name,
		CitySlug:         city.CitySlug,
		ParentSlug:       city.CitySlug,
		Popularity:       scoreInRange(slug, lo, hi),
		Lat:              row.Lat,
		Lng:              row.Lng,
	}
	hoods[key] = rec
	return rec
}

// populationScore maps a population count onto the bucketed popularity
// curve: large cities land in [90,100], mid-size in [60,84], the rest in
// [50,60].
func populationScore(pop int) int {
	switch {
	case pop <= 0:
		return 60
	case pop >= 500_000:
		return 90 + minInt(10, (pop-500_000)/1_000_000)
	case pop >= 100_000:
		return 60 + minInt(24, (pop-100_000)/17_500)
	default:
		return 50 + minInt(10, pop/10_000)
	}
}

// scoreInRange maps a slug onto [lo, hi] via a stable FNV hash. The legacy
// tool randomized these ranges per run; the hash keeps the same spread
// while making re-runs reproducible.
func scoreInRange(slug string, lo, hi int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(slug))
	return lo + int(h.Sum32()%uint32(hi-lo+1))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func collect(m map[string]*models.LocationRecord) []models.LocationRecord {
	out := make([]models.LocationRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func indexGazetteer(entries []GazetteerEntry) map[string]GazetteerEntry {
	idx := make(map[string]GazetteerEntry, len(entries))
	for _, e := range entries {
		key := normalize.Fold(e.State) + "/" + normalize.Fold(e.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = e
		}
	}
	return idx
}

// Column-name aliases accepted in CSV headers and JSON keys. The SEPOMEX
// export uses the d_* names.
var columnAliases = map[string]string{
	"neighborhood": "neighborhood",
	"settlement":   "neighborhood",
	"colonia":      "neighborhood",
	"d_asenta":     "neighborhood",
	"municipality": "municipality",
	"municipio":    "municipality",
	"d_mnpio":      "municipality",
	"state":        "state",
	"estado":       "state",
	"d_estado":     "state",
	"postal_code":  "postal_code",
	"zip":          "postal_code",
	"cp":           "postal_code",
	"d_codigo":     "postal_code",
	"lat":          "lat",
	"latitude":     "lat",
	"lng":          "lng",
	"lon":          "lng",
	"longitude":    "lng",
}

func rowFromFields(fields map[string]string) Row {
	var row Row
	for key, value := range fields {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch canonical {
		case "neighborhood":
			row.Neighborhood = value
		case "municipality":
			row.Municipality = value
		case "state":
			row.State = value
		case "postal_code":
			row.PostalCode = value
		case "lat":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				row.Lat = &f
			}
		case "lng":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				row.Lng = &f
			}
		}
	}
	return row
}

// ReadRows loads source rows from a CSV or JSON file, chosen by
// extension. A JSON root that is not an array is a fatal error.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return readJSONRows(f)
	}
	return readCSVRows(f)
}

func readCSVRows(r io.Reader) ([]Row, error) {
	fieldRows, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(fieldRows))
	for _, fields := range fieldRows {
		rows = append(rows, rowFromFields(fields))
	}
	return rows, nil
}

func readJSONRows(r io.Reader) ([]Row, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("input root must be a JSON array of objects: %w", err)
	}
	rows := make([]Row, 0, len(raw))
	for _, obj := range raw {
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case string:
				fields[k] = val
			case float64:
				fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		}
		rows = append(rows, rowFromFields(fields))
	}
	return rows, nil
}

// ReadGazetteer loads the optional population gazetteer.
func ReadGazetteer(path string) ([]GazetteerEntry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}
	var entries []GazetteerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("gazetteer root must be a JSON array: %w", err)
	}
	return entries, nil
}
