package search

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"inmuebles-portal/internal/models"
	"inmuebles-portal/internal/normalize"
)

// PropertyCriteria is the request-scoped facet set compiled over the
// catalog snapshot. Nil pointers and empty strings impose no constraint;
// every present facet is an independent AND-combined predicate.
type PropertyCriteria struct {
	Operation string
	Type      string

	// Price bounds come in two aliased field-name pairs for client
	// compatibility: MinPrice/MaxPrice is primary, PriceMin/PriceMax is
	// consulted only when the primary member is absent.
	MinPrice *float64
	MaxPrice *float64
	PriceMin *float64
	PriceMax *float64

	MinBedrooms  *int
	MinBathrooms *int
	MinParking   *int

	MinBuiltArea *float64
	MaxBuiltArea *float64
	MinLandArea  *float64
	MaxLandArea  *float64

	Currency string
	Text     string

	// Geographic scope, exact-match. StateSlug matches state_slug;
	// LocationSlug matches municipality_slug; NeighborhoodSlug matches
	// neighborhood_slug.
	StateSlug        string
	LocationSlug     string
	NeighborhoodSlug string

	// BBox constrains by containment when set (west,south,east,north).
	BBox *orb.Bound

	// SortBy: one of id, price, views, title, built_area; empty means
	// insertion/id order. SortDesc flips the comparator.
	SortBy   string
	SortDesc bool
}

// PropertyPage is one page of filtered results.
type PropertyPage struct {
	Items    []models.Property `json:"results"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// FilterProperties compiles the criteria into a filtered, sorted,
// paginated view of the catalog. Geographic facets run first to shrink the
// candidate set; the predicates commute, so the result is identical either
// way. Page is 1-based and clamped; a page past the data yields an empty
// page, not an error.
func FilterProperties(catalog []models.Property, c PropertyCriteria, page, pageSize int) PropertyPage {
	candidates := filterGeographic(catalog, c)

	minPrice := firstFloat(c.MinPrice, c.PriceMin)
	maxPrice := firstFloat(c.MaxPrice, c.PriceMax)
	foldedText := normalize.Fold(c.Text)

	matched := make([]models.Property, 0, len(candidates))
	for _, p := range candidates {
		if !p.IsActive() {
			continue
		}
		if c.Operation != "" && p.Operation != c.Operation {
			continue
		}
		if c.Type != "" && p.Type != c.Type {
			continue
		}
		if c.Currency != "" && p.Currency != c.Currency {
			continue
		}
		if minPrice != nil && (p.Price == nil || *p.Price < *minPrice) {
			continue
		}
		if maxPrice != nil && (p.Price == nil || *p.Price > *maxPrice) {
			continue
		}
		if !meetsMin(p.Bedrooms, c.MinBedrooms) {
			continue
		}
		if !meetsMin(p.Bathrooms, c.MinBathrooms) {
			continue
		}
		if !meetsMin(p.Parking, c.MinParking) {
			continue
		}
		if !inFloatRange(p.BuiltArea, c.MinBuiltArea, c.MaxBuiltArea) {
			continue
		}
		if !inFloatRange(p.LandArea, c.MinLandArea, c.MaxLandArea) {
			continue
		}
		if c.BBox != nil && !containsPoint(*c.BBox, p) {
			continue
		}
		if foldedText != "" && !textMatch(p, foldedText) {
			continue
		}
		matched = append(matched, p)
	}

	sortProperties(matched, c.SortBy, c.SortDesc)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultLimit
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	items := []models.Property{}
	if start < len(matched) {
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[start:end]
	}

	return PropertyPage{
		Items:    items,
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
	}
}

func filterGeographic(catalog []models.Property, c PropertyCriteria) []models.Property {
	if c.StateSlug == "" && c.LocationSlug == "" && c.NeighborhoodSlug == "" {
		return catalog
	}
	out := make([]models.Property, 0, len(catalog))
	for _, p := range catalog {
		if c.StateSlug != "" && p.StateSlug != c.StateSlug {
			continue
		}
		if c.LocationSlug != "" && p.MunicipalitySlug != c.LocationSlug {
			continue
		}
		if c.NeighborhoodSlug != "" && p.NeighborhoodSlug != c.NeighborhoodSlug {
			continue
		}
		out = append(out, p)
	}
	return out
}

// firstFloat implements the alias precedence: the first non-nil member of
// each pair wins.
func firstFloat(primary, fallback *float64) *float64 {
	if primary != nil {
		return primary
	}
	return fallback
}

func meetsMin(value, min *int) bool {
	if min == nil {
		return true
	}
	return value != nil && *value >= *min
}

func inFloatRange(value, min, max *float64) bool {
	if min != nil && (value == nil || *value < *min) {
		return false
	}
	if max != nil && (value == nil || *value > *max) {
		return false
	}
	return true
}

func containsPoint(bound orb.Bound, p models.Property) bool {
	if p.Lat == nil || p.Lng == nil {
		return false
	}
	return bound.Contains(orb.Point{*p.Lng, *p.Lat})
}

func textMatch(p models.Property, folded string) bool {
	haystack := normalize.Fold(strings.Join([]string{
		p.Title,
		p.Description,
		p.Neighborhood,
		p.Municipality,
		p.State,
	}, " "))
	return strings.Contains(haystack, folded)
}

// sortProperties orders matches with a stable sort so ties keep catalog
// order. The default key is id descending (newest listings first).
func sortProperties(items []models.Property, sortBy string, desc bool) {
	var less func(a, b models.Property) bool
	switch sortBy {
	case "price":
		less = func(a, b models.Property) bool {
			return floatOrZero(a.Price) < floatOrZero(b.Price)
		}
	case "views":
		less = func(a, b models.Property) bool { return a.Views < b.Views }
	case "title":
		less = func(a, b models.Property) bool { return a.Title < b.Title }
	case "built_area":
		less = func(a, b models.Property) bool {
			return floatOrZero(a.BuiltArea) < floatOrZero(b.BuiltArea)
		}
	case "id":
		less = func(a, b models.Property) bool { return a.ID < b.ID }
	default:
		less = func(a, b models.Property) bool { return a.ID < b.ID }
		desc = true
	}

	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
