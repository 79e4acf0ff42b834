package handlers

import (
	"net/http"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/valuation"

	"github.com/gin-gonic/gin"
)

// ValuationHandler serves rule-based property value estimates.
type ValuationHandler struct {
	model *valuation.Model
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler() *ValuationHandler {
	return &ValuationHandler{model: valuation.NewModel()}
}

// EstimateValue computes a valuation for the posted property.
func (h *ValuationHandler) EstimateValue(c *gin.Context) {
	var req valuation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a positive number of m²"})
		return
	}
	if strings.TrimSpace(req.Governorate) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "governorate is required"})
		return
	}

	estimate, err := h.model.Estimate(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, estimate)
}
