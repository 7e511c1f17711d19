package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"inmuebles-portal/internal/normalize"
	"inmuebles-portal/internal/search"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// SearchListings answers GET /listings/search. Facet values are parsed
// individually; a malformed numeric facet is a 400, while a malformed bbox
// is ignored entirely (all four components must parse for it to apply).
func (h *Handler) SearchListings(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			page = n
		}
	}
	pageSize := defaultPageSize
	if raw := c.Query("pageSize"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result := search.FilterProperties(h.snapshot.Items(), criteria, page, pageSize)
	c.JSON(http.StatusOK, result)
}

func parseCriteria(c *gin.Context) (search.PropertyCriteria, error) {
	criteria := search.PropertyCriteria{
		Operation:        c.Query("operation"),
		Type:             c.Query("type"),
		Currency:         c.Query("currency"),
		Text:             c.Query("text"),
		StateSlug:        normalize.Slug(c.Query("state")),
		LocationSlug:     normalize.Slug(c.Query("municipality")),
		NeighborhoodSlug: normalize.Slug(c.Query("neighborhood")),
		SortBy:           c.Query("sort"),
		SortDesc:         c.Query("order") == "desc",
	}

	var err error
	if criteria.MinPrice, err = floatParam(c, "minPrice"); err != nil {
		return criteria, err
	}
	if criteria.MaxPrice, err = floatParam(c, "maxPrice"); err != nil {
		return criteria, err
	}
	if criteria.PriceMin, err = floatParam(c, "priceMin"); err != nil {
		return criteria, err
	}
	if criteria.PriceMax, err = floatParam(c, "priceMax"); err != nil {
		return criteria, err
	}
	if criteria.MinBedrooms, err = intParam(c, "bedrooms"); err != nil {
		return criteria, err
	}
	if criteria.MinBathrooms, err = intParam(c, "bathrooms"); err != nil {
		return criteria, err
	}
	if criteria.MinParking, err = intParam(c, "parking"); err != nil {
		return criteria, err
	}
	if criteria.MinBuiltArea, err = floatParam(c, "minBuiltArea"); err != nil {
		return criteria, err
	}
	if criteria.MaxBuiltArea, err = floatParam(c, "maxBuiltArea"); err != nil {
		return criteria, err
	}
	if criteria.MinLandArea, err = floatParam(c, "minLandArea"); err != nil {
		return criteria, err
	}
	if criteria.MaxLandArea, err = floatParam(c, "maxLandArea"); err != nil {
		return criteria, err
	}

	criteria.BBox = parseBBox(c.Query("bbox"))
	return criteria, nil
}

// parseBBox reads "west,south,east,north"; any unparseable component
// discards the whole constraint.
func parseBBox(raw string) *orb.Bound {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		coords[i] = f
	}
	bound := orb.Bound{
		Min: orb.Point{coords[0], coords[1]},
		Max: orb.Point{coords[2], coords[3]},
	}
	return &bound
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &f, nil
}

func intParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &n, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid value for " + e.name + ": " + e.value
}
