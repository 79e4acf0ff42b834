package lake

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

// Analytics artifact blob names. Each run fully replaces the previous
// artifacts; nothing is merged incrementally.
const (
	PriceAnalyticsBlob   = "price_analytics.json"
	FeatureAnalyticsBlob = "feature_analytics.json"
	SizeAnalyticsBlob    = "size_analytics.json"
)

// Messages used as explicit no-data markers so empty datasets produce a
// readable artifact instead of NaN statistics.
const (
	noPricedData = "no properties with valid prices"
	noSizedData  = "no properties with valid size"
)

// PriceStats holds the aggregate price statistics of one slice.
type PriceStats struct {
	AvgPrice    float64 `json:"avg_price"`
	MedianPrice float64 `json:"median_price"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	Count       int     `json:"property_count"`
}

// PriceAnalytics is the price artifact. NoData is set instead of the
// statistics when no record carries a valid price.
type PriceAnalytics struct {
	GeneratedAt       string                `json:"generated_at"`
	NoData            string                `json:"no_data,omitempty"`
	Overall           *PriceStats           `json:"overall,omitempty"`
	ByGovernorate     map[string]PriceStats `json:"by_governorate,omitempty"`
	ByPropertyType    map[string]PriceStats `json:"by_property_type,omitempty"`
	ByTransactionType map[string]PriceStats `json:"by_transaction_type,omitempty"`
}

// FeatureCount holds presence statistics for one amenity.
type FeatureCount struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FeatureAnalytics is the amenity-presence artifact.
type FeatureAnalytics struct {
	GeneratedAt        string                  `json:"generated_at"`
	TotalProperties    int                     `json:"total_properties"`
	FeaturePercentages map[string]FeatureCount `json:"feature_percentages"`
}

// SizeStats holds the aggregate size statistics of one slice.
type SizeStats struct {
	AvgSize    float64 `json:"avg_size"`
	MedianSize float64 `json:"median_size"`
	MinSize    float64 `json:"min_size"`
	MaxSize    float64 `json:"max_size"`
	Count      int     `json:"count"`
}

// SizeAnalytics is the size artifact. NoData is set instead of the
// statistics when no record carries a valid size.
type SizeAnalytics struct {
	GeneratedAt    string               `json:"generated_at"`
	NoData         string               `json:"no_data,omitempty"`
	Overall        *SizeStats           `json:"overall,omitempty"`
	ByPropertyType map[string]SizeStats `json:"by_property_type,omitempty"`
}

// Analytics bundles the three cross-batch artifacts of one full
// recomputation over the silver dataset.
type Analytics struct {
	Price   PriceAnalytics
	Feature FeatureAnalytics
	Size    SizeAnalytics
}

// ComputeAnalytics recomputes all grouped statistics from the union of
// silver records. Empty or all-unpriced input yields explicit no-data
// markers, never NaN.
func (g *GoldLayer) ComputeAnalytics(records []models.CleanedListing) *Analytics {
	now := g.now().UTC().Format(time.RFC3339)
	return &Analytics{
		Price:   computePriceAnalytics(records, now),
		Feature: computeFeatureAnalytics(records, now),
		Size:    computeSizeAnalytics(records, now),
	}
}

// WriteAnalytics persists the three artifacts, fully replacing any
// previous run's output.
func (g *GoldLayer) WriteAnalytics(a *Analytics) error {
	for _, artifact := range []struct {
		name string
		body interface{}
	}{
		{PriceAnalyticsBlob, a.Price},
		{FeatureAnalyticsBlob, a.Feature},
		{SizeAnalyticsBlob, a.Size},
	} {
		data, err := json.MarshalIndent(artifact.body, "", "  ")
		if err != nil {
			return fmt.Errorf("lake: marshal %s: %w", artifact.name, err)
		}
		if err := g.store.Write(artifact.name, data); err != nil {
			return fmt.Errorf("lake: write %s: %w", artifact.name, err)
		}
	}
	log.Printf("Gold layer: Wrote analytics artifacts")
	return nil
}

// ReadPriceAnalytics loads the current price artifact.
func (g *GoldLayer) ReadPriceAnalytics() (*PriceAnalytics, error) {
	return readArtifact[PriceAnalytics](g, PriceAnalyticsBlob)
}

// ReadFeatureAnalytics loads the current feature artifact.
func (g *GoldLayer) ReadFeatureAnalytics() (*FeatureAnalytics, error) {
	return readArtifact[FeatureAnalytics](g, FeatureAnalyticsBlob)
}

// ReadSizeAnalytics loads the current size artifact.
func (g *GoldLayer) ReadSizeAnalytics() (*SizeAnalytics, error) {
	return readArtifact[SizeAnalytics](g, SizeAnalyticsBlob)
}

func readArtifact[T any](g *GoldLayer, name string) (*T, error) {
	data, err := g.store.Read(name)
	if err != nil {
		return nil, err
	}
	var artifact T
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("lake: decode %s: %w", name, err)
	}
	return &artifact, nil
}

func computePriceAnalytics(records []models.CleanedListing, now string) PriceAnalytics {
	a := PriceAnalytics{GeneratedAt: now}

	overall := []float64{}
	byGov := map[string][]float64{}
	byType := map[string][]float64{}
	byTransaction := map[string][]float64{}

	for _, r := range records {
		if !r.HasPrice || r.Price == nil {
			continue
		}
		price := *r.Price
		overall = append(overall, price)
		if r.Governorate != nil {
			byGov[*r.Governorate] = append(byGov[*r.Governorate], price)
		}
		if r.PropertyType != "" {
			byType[r.PropertyType] = append(byType[r.PropertyType], price)
		}
		if r.TransactionType != "" {
			byTransaction[r.TransactionType] = append(byTransaction[r.TransactionType], price)
		}
	}

	if len(overall) == 0 {
		a.NoData = noPricedData
		return a
	}

	stats := priceStats(overall)
	a.Overall = &stats
	a.ByGovernorate = priceStatsByKey(byGov)
	a.ByPropertyType = priceStatsByKey(byType)
	a.ByTransactionType = priceStatsByKey(byTransaction)
	return a
}

func computeFeatureAnalytics(records []models.CleanedListing, now string) FeatureAnalytics {
	a := FeatureAnalytics{
		GeneratedAt:        now,
		TotalProperties:    len(records),
		FeaturePercentages: map[string]FeatureCount{},
	}

	counts := map[string]int{}
	for _, r := range records {
		if r.HasParking {
			counts["has_parking"]++
		}
		if r.HasElevator {
			counts["has_elevator"]++
		}
		if r.HasPool {
			counts["has_pool"]++
		}
		if r.HasGarden {
			counts["has_garden"]++
		}
		if r.HasSeaView {
			counts["has_sea_view"]++
		}
		if r.IsFurnished {
			counts["is_furnished"]++
		}
	}

	for _, feature := range []string{
		"has_parking", "has_elevator", "has_pool",
		"has_garden", "has_sea_view", "is_furnished",
	} {
		percentage := 0.0
		if len(records) > 0 {
			percentage = round2(float64(counts[feature]) / float64(len(records)) * 100)
		}
		a.FeaturePercentages[feature] = FeatureCount{
			Count:      counts[feature],
			Percentage: percentage,
		}
	}
	return a
}

func computeSizeAnalytics(records []models.CleanedListing, now string) SizeAnalytics {
	a := SizeAnalytics{GeneratedAt: now}

	overall := []float64{}
	byType := map[string][]float64{}
	for _, r := range records {
		if r.Size == nil {
			continue
		}
		overall = append(overall, *r.Size)
		if r.PropertyType != "" {
			byType[r.PropertyType] = append(byType[r.PropertyType], *r.Size)
		}
	}

	if len(overall) == 0 {
		a.NoData = noSizedData
		return a
	}

	stats := sizeStats(overall)
	a.Overall = &stats
	a.ByPropertyType = map[string]SizeStats{}
	for key, values := range byType {
		a.ByPropertyType[key] = sizeStats(values)
	}
	return a
}

func priceStats(values []float64) PriceStats {
	return PriceStats{
		AvgPrice:    round2(mean(values)),
		MedianPrice: round2(median(values)),
		MinPrice:    round2(minOf(values)),
		MaxPrice:    round2(maxOf(values)),
		Count:       len(values),
	}
}

func priceStatsByKey(groups map[string][]float64) map[string]PriceStats {
	out := make(map[string]PriceStats, len(groups))
	for key, values := range groups {
		out[key] = priceStats(values)
	}
	return out
}

func sizeStats(values []float64) SizeStats {
	return SizeStats{
		AvgSize:    round2(mean(values)),
		MedianSize: round2(median(values)),
		MinSize:    round2(minOf(values)),
		MaxSize:    round2(maxOf(values)),
		Count:      len(values),
	}
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
