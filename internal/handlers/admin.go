package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/database"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles pipeline control and system statistics.
type AdminHandler struct {
	runner *pipeline.Runner
	bronze *lake.BronzeLayer
	silver *lake.SilverLayer
	gold   *lake.GoldLayer
	dedup  *dedup.Deduplicator
	store  database.ListingStore
}

// NewAdminHandler creates a new admin handler. The listing store may be
// nil when no database is configured.
func NewAdminHandler(runner *pipeline.Runner, bronze *lake.BronzeLayer, silver *lake.SilverLayer, gold *lake.GoldLayer, d *dedup.Deduplicator, store database.ListingStore) *AdminHandler {
	return &AdminHandler{
		runner: runner,
		bronze: bronze,
		silver: silver,
		gold:   gold,
		dedup:  d,
		store:  store,
	}
}

// GetStats returns lake and database statistics.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	lakeStats := make(map[string]interface{})
	if names, err := h.bronze.ListBatches(""); err == nil {
		lakeStats["bronze_batches"] = len(names)
	}
	if names, err := h.silver.ListBatches(""); err == nil {
		lakeStats["silver_batches"] = len(names)
	}
	if names, err := h.gold.ListBatches(""); err == nil {
		lakeStats["gold_batches"] = len(names)
	}
	lakeStats["known_fingerprints"] = h.dedup.Size()
	stats["lake"] = lakeStats

	if h.store != nil {
		count, err := h.store.CountListings()
		if err != nil {
			log.Printf("Admin: Failed to count listings: %v", err)
		} else {
			stats["database"] = map[string]interface{}{"listings": count}
		}
	}

	if last := h.runner.LastRun(); last != nil {
		stats["last_run"] = last
	}
	stats["pipeline_running"] = h.runner.Running()

	c.JSON(http.StatusOK, stats)
}

// TriggerPipeline starts a pipeline run in the background.
func (h *AdminHandler) TriggerPipeline(c *gin.Context) {
	log.Println("Admin: Manual pipeline trigger requested")

	if h.runner.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "Pipeline run already in progress"})
		return
	}

	go func() {
		if _, err := h.runner.Run(context.Background()); err != nil {
			if errors.Is(err, pipeline.ErrAlreadyRunning) {
				return
			}
			log.Printf("Admin: Manual pipeline run failed: %v", err)
		} else {
			log.Println("Admin: Manual pipeline run completed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "Pipeline run started in the background",
	})
}

// GetPipelineStatus reports whether a run is in flight and the result
// of the last completed run.
func (h *AdminHandler) GetPipelineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":  h.runner.Running(),
		"last_run": h.runner.LastRun(),
	})
}
