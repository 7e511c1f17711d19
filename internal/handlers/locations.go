package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inmuebles-portal/internal/models"
	"inmuebles-portal/internal/search"
)

// SearchLocations answers GET /locations?q=&type=&citySlug=&limit=.
// A failing configured remote index is an error response, never a silent
// fallback; the UI distinguishes "no results" from "search unavailable".
func (h *Handler) SearchLocations(c *gin.Context) {
	query := c.Query("q")

	var entityType models.EntityType
	if raw := c.Query("type"); raw != "" {
		t, ok := models.ParseEntityType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"ok":      false,
				"message": "unknown location type: " + raw,
			})
			return
		}
		entityType = t
	}

	limit := search.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	result, err := h.resolver.Resolve(query, entityType, c.Query("citySlug"), limit)
	if err != nil {
		h.logger.WithError(err).WithField("q", query).Error("location search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"message": "location search is unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"items": result,
	})
}
