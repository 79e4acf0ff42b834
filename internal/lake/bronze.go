// Package lake implements the bronze → silver → gold data lake the
// listing pipeline is built around. Each layer owns one blob store and
// one batch format; batches are immutable once written.
package lake

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

// ErrSchemaDrift marks a bronze blob whose top-level records payload is
// missing entirely. The whole file is rejected, no partial extraction.
var ErrSchemaDrift = errors.New("lake: bronze batch has no data payload")

// batchIDFormat is the UTC timestamp layout used for generated batch IDs.
const batchIDFormat = "20060102_150405"

// BronzeLayer handles append-only raw ingestion from scrapers. Records
// are stored verbatim; the layer only stamps batch metadata around them.
type BronzeLayer struct {
	store storage.BlobStore
}

// NewBronzeLayer returns a bronze layer over the given blob store.
func NewBronzeLayer(store storage.BlobStore) *BronzeLayer {
	return &BronzeLayer{store: store}
}

// Ingest wraps a scraper's record batch with source and time metadata
// and persists it as one blob named {source}_{batchID}.json. A repeated
// batch ID for the same source silently overwrites; ID discipline is
// the caller's job.
func (b *BronzeLayer) Ingest(records []models.RawRecord, source, batchID string) (string, error) {
	if batchID == "" {
		batchID = time.Now().UTC().Format(batchIDFormat)
	}

	batch := models.BronzeBatch{
		Metadata: models.BronzeMeta{
			Source:             source,
			BatchID:            batchID,
			IngestionTimestamp: time.Now().UTC().Format(time.RFC3339),
			RecordCount:        len(records),
		},
		Data: records,
	}
	if batch.Data == nil {
		batch.Data = []models.RawRecord{}
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("lake: marshal bronze batch: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", source, batchID)
	if err := b.store.Write(name, data); err != nil {
		return "", fmt.Errorf("lake: write bronze batch %q: %w", name, err)
	}

	log.Printf("Bronze layer: Ingested %d records to %s", len(records), name)
	return name, nil
}

// ListBatches returns bronze batch names in lexicographic order,
// optionally filtered by source prefix.
func (b *BronzeLayer) ListBatches(source string) ([]string, error) {
	return b.store.List(source)
}

// ReadBatch loads one bronze batch. A blob without a data payload is
// rejected as schema drift rather than partially decoded.
func (b *BronzeLayer) ReadBatch(name string) (*models.BronzeBatch, error) {
	data, err := b.store.Read(name)
	if err != nil {
		return nil, err
	}

	var batch models.BronzeBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("lake: decode bronze batch %q: %w", name, err)
	}
	if batch.Data == nil {
		return nil, fmt.Errorf("lake: %q: %w", name, ErrSchemaDrift)
	}
	return &batch, nil
}
