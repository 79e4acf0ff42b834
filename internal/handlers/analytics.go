package handlers

import (
	"errors"
	"net/http"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the precomputed gold analytics artifacts.
type AnalyticsHandler struct {
	gold *lake.GoldLayer
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(gold *lake.GoldLayer) *AnalyticsHandler {
	return &AnalyticsHandler{gold: gold}
}

// GetPriceAnalytics returns market price statistics by governorate,
// property type and transaction type.
func (h *AnalyticsHandler) GetPriceAnalytics(c *gin.Context) {
	analytics, err := h.gold.ReadPriceAnalytics()
	h.respond(c, analytics, err)
}

// GetFeatureAnalytics returns amenity frequency statistics.
func (h *AnalyticsHandler) GetFeatureAnalytics(c *gin.Context) {
	analytics, err := h.gold.ReadFeatureAnalytics()
	h.respond(c, analytics, err)
}

// GetSizeAnalytics returns surface area statistics.
func (h *AnalyticsHandler) GetSizeAnalytics(c *gin.Context) {
	analytics, err := h.gold.ReadSizeAnalytics()
	h.respond(c, analytics, err)
}

func (h *AnalyticsHandler) respond(c *gin.Context, analytics any, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analytics not computed yet, run the pipeline first"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analytics)
}
