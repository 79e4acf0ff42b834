// Package pipeline orchestrates one end-to-end run: scrape → bronze →
// silver → gold → analytics → database import.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/importer"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/scraper"
)

// ErrAlreadyRunning is returned when a run is triggered while another
// one is still in flight.
var ErrAlreadyRunning = errors.New("pipeline: run already in progress")

// SourceResult summarizes one source's trip through the lake.
type SourceResult struct {
	Source            string `json:"source"`
	BronzeBatch       string `json:"bronze_batch,omitempty"`
	SilverBatch       string `json:"silver_batch,omitempty"`
	GoldBatch         string `json:"gold_batch,omitempty"`
	Scraped           int    `json:"scraped"`
	Cleaned           int    `json:"cleaned"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	InvalidRecords    int    `json:"invalid_records"`
	Error             string `json:"error,omitempty"`
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	Sources          []SourceResult `json:"sources"`
	TotalScraped     int            `json:"total_scraped"`
	TotalCleaned     int            `json:"total_cleaned"`
	Imported         int            `json:"imported"`
	AnalyticsWritten bool           `json:"analytics_written"`
}

// Runner drives the full pipeline. One run at a time; concurrent
// triggers are rejected rather than queued.
type Runner struct {
	sources []scraper.Source
	bronze  *lake.BronzeLayer
	silver  *lake.SilverLayer
	gold    *lake.GoldLayer
	imp     *importer.Importer

	mu      sync.Mutex
	running bool
	lastRun *RunResult
}

// NewRunner builds a runner. The importer may be nil when no database
// is configured; enrichment and analytics still run.
func NewRunner(sources []scraper.Source, bronze *lake.BronzeLayer, silver *lake.SilverLayer, gold *lake.GoldLayer, imp *importer.Importer) *Runner {
	return &Runner{
		sources: sources,
		bronze:  bronze,
		silver:  silver,
		gold:    gold,
		imp:     imp,
	}
}

// Running reports whether a run is in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastRun returns the most recent run result, or nil before any run.
func (r *Runner) LastRun() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Run executes one full pipeline pass. Source failures are recorded
// per source and do not stop the other sources; storage failures on a
// batch abort that source only.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	result := &RunResult{StartedAt: time.Now().UTC()}
	log.Printf("Pipeline: Starting run with %d sources", len(r.sources))

	for _, source := range r.sources {
		sr := r.runSource(ctx, source)
		result.Sources = append(result.Sources, sr)
		result.TotalScraped += sr.Scraped
		result.TotalCleaned += sr.Cleaned

		if ctx.Err() != nil {
			break
		}
	}

	// Analytics are recomputed over the whole silver layer so numbers
	// stay consistent across runs, not just for this run's batches.
	if records, err := r.silver.AllRecords(); err != nil {
		log.Printf("Pipeline: Failed to load silver records for analytics: %v", err)
	} else if err := r.gold.WriteAnalytics(r.gold.ComputeAnalytics(records)); err != nil {
		log.Printf("Pipeline: Failed to write analytics: %v", err)
	} else {
		result.AnalyticsWritten = true
	}

	if r.imp != nil {
		for _, sr := range result.Sources {
			if sr.GoldBatch == "" {
				continue
			}
			enriched, err := r.gold.ExportForImport(sr.GoldBatch)
			if err != nil {
				log.Printf("Pipeline: Failed to export %s: %v", sr.GoldBatch, err)
				continue
			}
			importResult := r.imp.Import(enriched)
			result.Imported += importResult.Imported
		}
	}

	result.FinishedAt = time.Now().UTC()
	log.Printf("Pipeline: Run finished in %s (scraped %d, cleaned %d, imported %d)",
		result.FinishedAt.Sub(result.StartedAt).Round(time.Second),
		result.TotalScraped, result.TotalCleaned, result.Imported)

	r.mu.Lock()
	r.lastRun = result
	r.mu.Unlock()
	return result, nil
}

func (r *Runner) runSource(ctx context.Context, source scraper.Source) SourceResult {
	sr := SourceResult{Source: source.Name()}

	records, err := source.Produce(ctx)
	if err != nil {
		sr.Error = err.Error()
		log.Printf("Pipeline: Source %s failed: %v", source.Name(), err)
		return sr
	}
	sr.Scraped = len(records)

	bronzeName, err := r.bronze.Ingest(records, source.Name(), "")
	if err != nil {
		sr.Error = err.Error()
		return sr
	}
	sr.BronzeBatch = bronzeName

	bronzeBatch, err := r.bronze.ReadBatch(bronzeName)
	if err != nil {
		sr.Error = err.Error()
		return sr
	}

	silverName, meta, err := r.silver.Process(bronzeBatch, bronzeBatch.Metadata.BatchID)
	if err != nil {
		sr.Error = err.Error()
		return sr
	}
	sr.SilverBatch = silverName
	sr.Cleaned = meta.OutputCount
	sr.DuplicatesRemoved = meta.DuplicatesRemoved
	sr.InvalidRecords = meta.InvalidRecords

	silverBatch, err := r.silver.ReadBatch(silverName)
	if err != nil {
		sr.Error = err.Error()
		return sr
	}

	goldName, err := r.gold.Enrich(silverBatch, meta.BatchID)
	if err != nil {
		sr.Error = err.Error()
		return sr
	}
	sr.GoldBatch = goldName

	return sr
}
