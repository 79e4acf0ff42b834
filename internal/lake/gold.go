package lake

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

const goldSuffix = "_gold.json"

// Price-per-m² plausibility band in TND. The Tunisian market averages
// around 2000-3000 TND/m²; anything outside the band is flagged.
const (
	minPlausiblePricePerM2 = 500
	maxPlausiblePricePerM2 = 10000
)

// GoldLayer derives analytics-ready features from silver records. The
// derivation is deterministic given identical input; re-running it over
// the same silver batch produces the same gold records.
type GoldLayer struct {
	store storage.BlobStore
	now   func() time.Time
}

// NewGoldLayer returns a gold layer over the given store.
func NewGoldLayer(store storage.BlobStore) *GoldLayer {
	return &GoldLayer{store: store, now: time.Now}
}

// Enrich derives per-record features for every record of a silver batch
// and writes one gold batch. Derivations never hard-fail: an absent
// input simply leaves the corresponding derived field unset.
func (g *GoldLayer) Enrich(silver *models.SilverBatch, batchID string) (string, error) {
	if batchID == "" {
		batchID = silver.Metadata.BatchID
	}
	if batchID == "" {
		batchID = g.now().UTC().Format(batchIDFormat)
	}
	source := silver.Metadata.Source

	enriched := make([]models.EnrichedListing, 0, len(silver.Data))
	for _, record := range silver.Data {
		enriched = append(enriched, g.enrichRecord(record))
	}

	batch := models.GoldBatch{
		Metadata: models.GoldMeta{
			Source:              source,
			BatchID:             batchID,
			EnrichmentTimestamp: g.now().UTC().Format(time.RFC3339),
			RecordCount:         len(enriched),
		},
		Data: enriched,
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("lake: marshal gold batch: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", source, batchID, goldSuffix)
	if err := g.store.Write(name, data); err != nil {
		return "", fmt.Errorf("lake: write gold batch %q: %w", name, err)
	}

	log.Printf("Gold layer: Enriched %d records to %s", len(enriched), name)
	return name, nil
}

func (g *GoldLayer) enrichRecord(record models.CleanedListing) models.EnrichedListing {
	e := models.EnrichedListing{CleanedListing: record}

	if record.ListingDate != nil {
		if listed, err := time.Parse(time.RFC3339, *record.ListingDate); err == nil {
			days := int(g.now().UTC().Sub(listed).Hours() / 24)
			e.DaysOnMarket = &days
		}
	}

	if record.Price != nil {
		e.PriceCategory = PriceCategory(*record.Price)
	}
	if record.Size != nil {
		e.SizeCategory = SizeCategory(*record.Size)
	}

	e.FeatureScore = FeatureScore(&record)

	if record.PricePerM2 != nil {
		ppm2 := *record.PricePerM2
		e.IsPriceAnomaly = ppm2 < minPlausiblePricePerM2 || ppm2 > maxPlausiblePricePerM2
	}

	e.ReadyForImport = readyForImport(&record)

	return e
}

// PriceCategory buckets a TND price into the gold price category enum.
func PriceCategory(price float64) string {
	switch {
	case price < 100000:
		return models.PriceCategoryBudget
	case price < 300000:
		return models.PriceCategoryMid
	case price < 600000:
		return models.PriceCategoryLuxury
	default:
		return models.PriceCategoryUltraLuxury
	}
}

// SizeCategory buckets a size in m² into the gold size category enum.
func SizeCategory(size float64) string {
	switch {
	case size < 80:
		return models.SizeCategorySmall
	case size < 150:
		return models.SizeCategoryMedium
	case size < 250:
		return models.SizeCategoryLarge
	default:
		return models.SizeCategoryVeryLarge
	}
}

// FeatureScore is 100 × set amenities / 6, rounded to 2 decimals.
func FeatureScore(record *models.CleanedListing) float64 {
	amenities := record.Amenities()
	count := 0
	for _, set := range amenities {
		if set {
			count++
		}
	}
	return math.Round(float64(count)/float64(len(amenities))*100*100) / 100
}

// readyForImport requires the fields the portal database cannot accept
// a listing without.
func readyForImport(record *models.CleanedListing) bool {
	return record.Title != "" &&
		record.Price != nil &&
		record.PropertyType != "" &&
		record.TransactionType != "" &&
		record.Governorate != nil && *record.Governorate != ""
}

// ListBatches returns gold batch names in lexicographic order,
// optionally filtered by source prefix.
func (g *GoldLayer) ListBatches(source string) ([]string, error) {
	names, err := g.store.List(source)
	if err != nil {
		return nil, err
	}
	batches := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, goldSuffix) {
			batches = append(batches, name)
		}
	}
	return batches, nil
}

// ReadBatch loads one gold batch.
func (g *GoldLayer) ReadBatch(name string) (*models.GoldBatch, error) {
	data, err := g.store.Read(name)
	if err != nil {
		return nil, err
	}
	var batch models.GoldBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("lake: decode gold batch %q: %w", name, err)
	}
	return &batch, nil
}

// ExportForImport filters a gold batch down to the records ready for
// database import.
func (g *GoldLayer) ExportForImport(name string) ([]models.EnrichedListing, error) {
	batch, err := g.ReadBatch(name)
	if err != nil {
		return nil, err
	}
	ready := make([]models.EnrichedListing, 0, len(batch.Data))
	for _, record := range batch.Data {
		if record.ReadyForImport {
			ready = append(ready, record)
		}
	}
	log.Printf("Gold layer: %d/%d records in %s are ready for import",
		len(ready), len(batch.Data), name)
	return ready, nil
}
