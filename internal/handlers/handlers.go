// Package handlers exposes the HTTP surface: location search, listing
// search, lead capture and a few operational endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/catalog"
	"inmuebles-portal/internal/database"
	"inmuebles-portal/internal/locations"
	"inmuebles-portal/internal/ratelimit"
	"inmuebles-portal/internal/search"
)

// Handler bundles the request-scoped dependencies. All of them are
// read-only during request handling; concurrent requests are independent.
type Handler struct {
	logger   *logrus.Logger
	resolver *search.Resolver
	snapshot *catalog.Snapshot
	store    database.Store     // nil when no database is configured
	dataset  *locations.Dataset // nil in remote-only deployments
	limiter  *ratelimit.Limiter
}

func New(logger *logrus.Logger, resolver *search.Resolver, snapshot *catalog.Snapshot, store database.Store, dataset *locations.Dataset, limiter *ratelimit.Limiter) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		logger:   logger,
		resolver: resolver,
		snapshot: snapshot,
		store:    store,
		dataset:  dataset,
		limiter:  limiter,
	}
}

// Register wires the route table.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)

	limited := h.rateLimitMiddleware()
	r.GET("/locations", limited, h.SearchLocations)
	r.GET("/listings/search", limited, h.SearchListings)

	r.POST("/leads", h.CreateLead)
	r.POST("/catalog/reload", h.ReloadCatalog)
	r.GET("/ratelimit/stats", h.RateLimitStats)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"time":           time.Now(),
		"search_backend": h.resolver.BackendName(),
		"catalog_size":   h.snapshot.Len(),
	})
}

// ReloadCatalog refreshes the property snapshot and, when a local dataset
// is loaded, the location dataset.
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if err := h.snapshot.Reload(); err != nil {
		h.logger.WithError(err).Error("failed to reload catalog snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload catalog"})
		return
	}
	if h.dataset != nil {
		if err := h.dataset.Reload(); err != nil {
			h.logger.WithError(err).Error("failed to reload locations dataset")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload locations"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"catalog_size":   h.snapshot.Len(),
		"locations_size": h.datasetLen(),
	})
}

func (h *Handler) datasetLen() int {
	if h.dataset == nil {
		return 0
	}
	return h.dataset.Len()
}

func (h *Handler) RateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats())
}

func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
