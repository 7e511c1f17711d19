// Package aliases holds the alias and synonym tables consulted by the
// ingestion pipeline and by the search-index synonym configuration. Tables
// are data-driven: a YAML file can extend or replace the built-in defaults
// without code changes.
package aliases

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps folded entity names to alias keywords. Keys must already be
// normalized (see normalize.Fold); values are stored verbatim on records.
type Table struct {
	// States maps folded state name to curated keywords, e.g. the CDMX
	// and Estado de México variants.
	States map[string][]string `yaml:"states"`

	// Municipalities maps folded municipality name to city-specific
	// aliases (SLP, GDL, MTY and friends).
	Municipalities map[string][]string `yaml:"municipalities"`

	// MunicipalityHints are generic keywords attached to every
	// municipality record.
	MunicipalityHints []string `yaml:"municipality_hints"`

	// MetroCities lists city slugs of the large metro areas whose
	// neighborhoods rank above the rest.
	MetroCities []string `yaml:"metro_cities"`

	// Synonyms is the two-way abbreviation table applied to the remote
	// index settings. The local fallback has no synonym expansion and
	// relies on per-record keywords only.
	Synonyms map[string][]string `yaml:"synonyms"`
}

// Default returns the built-in table covering the common Mexican
// metro-area abbreviations.
func Default() *Table {
	return &Table{
		States: map[string][]string{
			"ciudad de mexico": {"CDMX", "DF", "D.F.", "Distrito Federal", "Mexico City"},
			"mexico":           {"Edomex", "Estado de Mexico", "Edo. de Mexico", "Edo. Mex."},
			"nuevo leon":       {"NL"},
			"san luis potosi":  {"SLP"},
			"baja california":  {"BC"},
			"quintana roo":     {"Q. Roo"},
		},
		Municipalities: map[string][]string{
			"san luis potosi": {"SLP"},
			"guadalajara":     {"GDL"},
			"monterrey":       {"MTY"},
			"culiacan":        {"Culiacán Rosales"},
			"cancun":          {"Benito Juárez"},
		},
		MunicipalityHints: []string{"municipio", "mpio", "mun."},
		MetroCities:       []string{"ciudad-de-mexico", "guadalajara", "monterrey"},
		Synonyms: map[string][]string{
			"cdmx":             {"ciudad de mexico", "df", "distrito federal"},
			"df":               {"ciudad de mexico", "cdmx"},
			"ciudad de mexico": {"cdmx", "df"},
			"edomex":           {"estado de mexico"},
			"gdl":              {"guadalajara"},
			"guadalajara":      {"gdl"},
			"mty":              {"monterrey"},
			"monterrey":        {"mty"},
			"slp":              {"san luis potosi"},
		},
	}
}

// Load reads a table from a YAML file, falling back to the defaults when
// path is empty. Sections absent from the file keep their default values.
func Load(path string) (*Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file: %w", err)
	}
	var overlay Table
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse aliases file: %w", err)
	}
	if overlay.States != nil {
		t.States = overlay.States
	}
	if overlay.Municipalities != nil {
		t.Municipalities = overlay.Municipalities
	}
	if overlay.MunicipalityHints != nil {
		t.MunicipalityHints = overlay.MunicipalityHints
	}
	if overlay.MetroCities != nil {
		t.MetroCities = overlay.MetroCities
	}
	if overlay.Synonyms != nil {
		t.Synonyms = overlay.Synonyms
	}
	return t, nil
}

// IsMetroCity reports whether a city slug belongs to one of the large
// metro areas.
func (t *Table) IsMetroCity(slug string) bool {
	for _, s := range t.MetroCities {
		if s == slug {
			return true
		}
	}
	return false
}
