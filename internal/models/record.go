package models

import (
	"fmt"
	"math"
	"strconv"
)

// RawRecord is an open-schema record exactly as a scraper captured it.
// No invariants are enforced at this stage; any field, including the
// identifiers, may be missing or malformed.
type RawRecord map[string]interface{}

// StringField renders a field as its string form, "" for null. JSON
// decoding turns every number into float64; integral values print
// without a decimal point so the rendering is stable across sources.
func (r RawRecord) StringField(key string) string {
	switch t := r[key].(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// BronzeMeta describes one raw ingestion batch.
type BronzeMeta struct {
	Source             string `json:"source"`
	BatchID            string `json:"batch_id"`
	IngestionTimestamp string `json:"ingestion_timestamp"`
	RecordCount        int    `json:"record_count"`
}

// BronzeBatch is an immutable raw batch as written by the bronze layer.
type BronzeBatch struct {
	Metadata BronzeMeta  `json:"metadata"`
	Data     []RawRecord `json:"data"`
}

// SilverMeta carries the provenance counters of one silver processing run.
// InputCount is always equal to OutputCount + DuplicatesRemoved + InvalidRecords.
type SilverMeta struct {
	Source              string `json:"source"`
	BatchID             string `json:"batch_id"`
	ProcessingTimestamp string `json:"processing_timestamp"`
	InputCount          int    `json:"input_count"`
	OutputCount         int    `json:"output_count"`
	DuplicatesRemoved   int    `json:"duplicates_removed"`
	InvalidRecords      int    `json:"invalid_records"`
}

// SilverBatch holds the cleaned output of one bronze batch.
type SilverBatch struct {
	Metadata SilverMeta       `json:"metadata"`
	Data     []CleanedListing `json:"data"`
}

// GoldMeta describes one enrichment batch.
type GoldMeta struct {
	Source              string `json:"source"`
	BatchID             string `json:"batch_id"`
	EnrichmentTimestamp string `json:"enrichment_timestamp"`
	RecordCount         int    `json:"record_count"`
}

// GoldBatch holds enriched, analytics-ready listings.
type GoldBatch struct {
	Metadata GoldMeta          `json:"metadata"`
	Data     []EnrichedListing `json:"data"`
}

// CleanedListing is the fixed silver-layer schema every source converges on.
// Optional fields are pointers so that absent and zero stay distinguishable
// in the stored JSON.
type CleanedListing struct {
	ListingID     string `json:"listing_id"`
	SourceURL     string `json:"source_url"`
	SourceWebsite string `json:"source_website"`

	Title       string  `json:"title"`
	Description *string `json:"description"`

	PropertyType    string `json:"property_type"`
	TransactionType string `json:"transaction_type"`

	Governorate    *string  `json:"governorate"`
	Delegation     *string  `json:"delegation"`
	Neighborhood   *string  `json:"neighborhood"`
	Address        *string  `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	HasCoordinates bool     `json:"has_coordinates"`

	Price         *float64 `json:"price"`
	PriceCurrency string   `json:"price_currency"`
	PricePerM2    *float64 `json:"price_per_m2"`
	HasPrice      bool     `json:"has_price"`

	Size      *float64 `json:"size"`
	SizeUnit  *string  `json:"size_unit"`
	Bedrooms  *int     `json:"bedrooms"`
	Bathrooms *int     `json:"bathrooms"`
	Floor     *int     `json:"floor"`

	HasParking  bool `json:"has_parking"`
	HasElevator bool `json:"has_elevator"`
	HasPool     bool `json:"has_pool"`
	HasGarden   bool `json:"has_garden"`
	HasSeaView  bool `json:"has_sea_view"`
	IsFurnished bool `json:"is_furnished"`

	Images []string `json:"images"`

	ContactPhone *string `json:"contact_phone"`
	ContactName  *string `json:"contact_name"`

	ListingDate     *string `json:"listing_date"`
	ScrapeTimestamp *string `json:"scrape_timestamp"`

	DataCompletenessScore float64 `json:"data_completeness_score"`
	ContentHash           string  `json:"content_hash"`
}

// Amenities returns the six amenity flags in their canonical order.
func (c *CleanedListing) Amenities() [6]bool {
	return [6]bool{
		c.HasParking,
		c.HasElevator,
		c.HasPool,
		c.HasGarden,
		c.HasSeaView,
		c.IsFurnished,
	}
}

// Price categories in TND, gold-layer derivation.
const (
	PriceCategoryBudget      = "BUDGET"
	PriceCategoryMid         = "MID"
	PriceCategoryLuxury      = "LUXURY"
	PriceCategoryUltraLuxury = "ULTRA_LUXURY"
)

// Size categories in m², gold-layer derivation.
const (
	SizeCategorySmall     = "SMALL"
	SizeCategoryMedium    = "MEDIUM"
	SizeCategoryLarge     = "LARGE"
	SizeCategoryVeryLarge = "VERY_LARGE"
)

// EnrichedListing is the stable gold-layer contract consumed by the
// valuation and analytics services. Field names, types and enum value
// sets must not change without a version bump.
type EnrichedListing struct {
	CleanedListing

	DaysOnMarket   *int    `json:"days_on_market,omitempty"`
	PriceCategory  string  `json:"price_category,omitempty"`
	SizeCategory   string  `json:"size_category,omitempty"`
	FeatureScore   float64 `json:"feature_score"`
	IsPriceAnomaly bool    `json:"is_price_anomaly"`
	ReadyForImport bool    `json:"ready_for_import"`
}
