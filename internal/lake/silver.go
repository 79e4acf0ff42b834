package lake

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/normalizer"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

const silverSuffix = "_silver.json"

// SilverLayer turns raw bronze batches into cleaned, validated,
// deduplicated silver batches. Per-record failures are counted, never
// fatal; only storage failures abort a batch.
type SilverLayer struct {
	store     storage.BlobStore
	norm      *normalizer.Normalizer
	validator *normalizer.Validator
	dedup     *dedup.Deduplicator
}

// NewSilverLayer returns a silver layer over the given store. The
// deduplicator is injected so its fingerprint set can be shared across
// runs and faked in tests.
func NewSilverLayer(store storage.BlobStore, d *dedup.Deduplicator) *SilverLayer {
	return &SilverLayer{
		store:     store,
		norm:      normalizer.New(),
		validator: normalizer.NewValidator(),
		dedup:     d,
	}
}

// Process cleans one bronze batch. Per record, in order: fingerprint
// check (duplicates are skipped before any further work), normalize,
// validate, then mark the fingerprint seen — the dedup log append
// happens before the record counts as unique, so a crash mid-batch can
// lose records but never accept the same fingerprint twice.
//
// The resulting counters always satisfy
// input_count == output_count + duplicates_removed + invalid_records,
// and re-processing an already-processed batch yields output_count 0.
func (s *SilverLayer) Process(bronze *models.BronzeBatch, batchID string) (string, *models.SilverMeta, error) {
	if batchID == "" {
		batchID = time.Now().UTC().Format(batchIDFormat)
	}
	source := bronze.Metadata.Source

	cleaned := []models.CleanedListing{}
	duplicates := 0
	invalid := 0

	for _, raw := range bronze.Data {
		fingerprint := dedup.Fingerprint(raw)
		if s.dedup.Seen(fingerprint) {
			duplicates++
			continue
		}

		record := s.norm.Normalize(raw)
		if result := s.validator.Validate(&record); !result.Valid {
			log.Printf("Silver layer: Dropping record (%s: %s): %s",
				result.Reason, result.Field, record.SourceURL)
			invalid++
			continue
		}

		if err := s.dedup.MarkSeen(fingerprint); err != nil {
			return "", nil, fmt.Errorf("lake: batch %s_%s: %w", source, batchID, err)
		}
		record.ContentHash = fingerprint
		cleaned = append(cleaned, record)
	}

	meta := models.SilverMeta{
		Source:              source,
		BatchID:             batchID,
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
		InputCount:          len(bronze.Data),
		OutputCount:         len(cleaned),
		DuplicatesRemoved:   duplicates,
		InvalidRecords:      invalid,
	}

	batch := models.SilverBatch{Metadata: meta, Data: cleaned}
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("lake: marshal silver batch: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", source, batchID, silverSuffix)
	if err := s.store.Write(name, data); err != nil {
		return "", nil, fmt.Errorf("lake: write silver batch %q: %w", name, err)
	}

	log.Printf("Silver layer: Processed %d/%d records to %s (%d duplicates, %d invalid)",
		len(cleaned), len(bronze.Data), name, duplicates, invalid)

	return name, &meta, nil
}

// ListBatches returns silver batch names in lexicographic order,
// optionally filtered by source prefix.
func (s *SilverLayer) ListBatches(source string) ([]string, error) {
	names, err := s.store.List(source)
	if err != nil {
		return nil, err
	}
	batches := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, silverSuffix) {
			batches = append(batches, name)
		}
	}
	return batches, nil
}

// ReadBatch loads one silver batch.
func (s *SilverLayer) ReadBatch(name string) (*models.SilverBatch, error) {
	data, err := s.store.Read(name)
	if err != nil {
		return nil, err
	}
	var batch models.SilverBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("lake: decode silver batch %q: %w", name, err)
	}
	return &batch, nil
}

// AllRecords returns the union of every silver record currently in the
// lake, the input for cross-batch analytics recomputation.
func (s *SilverLayer) AllRecords() ([]models.CleanedListing, error) {
	names, err := s.ListBatches("")
	if err != nil {
		return nil, err
	}

	var records []models.CleanedListing
	for _, name := range names {
		batch, err := s.ReadBatch(name)
		if err != nil {
			return nil, err
		}
		records = append(records, batch.Data...)
	}
	return records, nil
}
