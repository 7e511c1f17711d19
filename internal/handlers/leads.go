package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inmuebles-portal/internal/models"
)

type leadRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	PropertyID *int64 `json:"property_id"`
}

// CreateLead captures a contact request. Validation failures reject the
// whole request; a lead is never partially applied.
func (h *Handler) CreateLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" && req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either email or phone is required"})
		return
	}
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead storage is not configured"})
		return
	}

	lead := &models.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		PropertyID: req.PropertyID,
	}
	if err := h.store.SaveLead(lead); err != nil {
		h.logger.WithError(err).Error("failed to save lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save lead"})
		return
	}

	c.JSON(http.StatusCreated, lead)
}
