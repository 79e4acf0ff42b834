package lake

import (
	"testing"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

func TestPriceCategoryBoundaries(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{50000, models.PriceCategoryBudget},
		{99999, models.PriceCategoryBudget},
		{100000, models.PriceCategoryMid},
		{299999, models.PriceCategoryMid},
		{300000, models.PriceCategoryLuxury},
		{599999, models.PriceCategoryLuxury},
		{600000, models.PriceCategoryUltraLuxury},
		{2000000, models.PriceCategoryUltraLuxury},
	}
	for _, tt := range tests {
		if got := PriceCategory(tt.price); got != tt.want {
			t.Errorf("PriceCategory(%.0f): got %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestSizeCategoryBoundaries(t *testing.T) {
	tests := []struct {
		size float64
		want string
	}{
		{40, models.SizeCategorySmall},
		{79.9, models.SizeCategorySmall},
		{80, models.SizeCategoryMedium},
		{149, models.SizeCategoryMedium},
		{150, models.SizeCategoryLarge},
		{249, models.SizeCategoryLarge},
		{250, models.SizeCategoryVeryLarge},
	}
	for _, tt := range tests {
		if got := SizeCategory(tt.size); got != tt.want {
			t.Errorf("SizeCategory(%.1f): got %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestFeatureScore(t *testing.T) {
	none := models.CleanedListing{}
	if got := FeatureScore(&none); got != 0 {
		t.Errorf("no amenities: got %.2f, want 0", got)
	}

	two := models.CleanedListing{HasParking: true, HasSeaView: true}
	if got := FeatureScore(&two); got != 33.33 {
		t.Errorf("two amenities: got %.2f, want 33.33", got)
	}

	all := models.CleanedListing{
		HasParking: true, HasElevator: true, HasPool: true,
		HasGarden: true, HasSeaView: true, IsFurnished: true,
	}
	if got := FeatureScore(&all); got != 100 {
		t.Errorf("all amenities: got %.2f, want 100", got)
	}
}

func silverBatchOf(records ...models.CleanedListing) *models.SilverBatch {
	return &models.SilverBatch{
		Metadata: models.SilverMeta{Source: "tayara", BatchID: "20260830_120000"},
		Data:     records,
	}
}

func TestEnrichDerivations(t *testing.T) {
	gold := NewGoldLayer(storage.NewMemoryStore())
	gold.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}

	price := 250000.0
	size := 120.0
	ppm2 := price / size
	gov := "Tunis"
	listed := "2026-08-20T00:00:00Z"

	record := models.CleanedListing{
		Title:           "Appartement S+2",
		PropertyType:    "APARTMENT",
		TransactionType: "SALE",
		Governorate:     &gov,
		Price:           &price,
		Size:            &size,
		PricePerM2:      &ppm2,
		ListingDate:     &listed,
		HasParking:      true,
	}

	name, err := gold.Enrich(silverBatchOf(record), "")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if name != "tayara_20260830_120000_gold.json" {
		t.Errorf("batch name: got %q", name)
	}

	batch, err := gold.ReadBatch(name)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(batch.Data) != 1 {
		t.Fatalf("got %d records, want 1", len(batch.Data))
	}

	e := batch.Data[0]
	if e.PriceCategory != models.PriceCategoryMid {
		t.Errorf("price category: got %q", e.PriceCategory)
	}
	if e.SizeCategory != models.SizeCategoryMedium {
		t.Errorf("size category: got %q", e.SizeCategory)
	}
	if e.DaysOnMarket == nil || *e.DaysOnMarket != 10 {
		t.Errorf("days on market: got %v, want 10", e.DaysOnMarket)
	}
	if e.FeatureScore != 16.67 {
		t.Errorf("feature score: got %.2f, want 16.67", e.FeatureScore)
	}
	if e.IsPriceAnomaly {
		t.Errorf("%.2f TND/m² should not be an anomaly", ppm2)
	}
	if !e.ReadyForImport {
		t.Error("fully populated record should be ready for import")
	}
}

func TestEnrichMissingInputsLeaveDerivationsUnset(t *testing.T) {
	gold := NewGoldLayer(storage.NewMemoryStore())

	name, err := gold.Enrich(silverBatchOf(models.CleanedListing{Title: "Terrain"}), "")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	batch, err := gold.ReadBatch(name)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}

	e := batch.Data[0]
	if e.PriceCategory != "" || e.SizeCategory != "" {
		t.Error("categories should stay empty without price/size")
	}
	if e.DaysOnMarket != nil {
		t.Error("days on market should stay nil without a listing date")
	}
	if e.IsPriceAnomaly {
		t.Error("no price_per_m2 means no anomaly flag")
	}
	if e.ReadyForImport {
		t.Error("record without price/type/governorate is not ready for import")
	}
}

func TestPriceAnomalyBand(t *testing.T) {
	gold := NewGoldLayer(storage.NewMemoryStore())

	tests := []struct {
		ppm2 float64
		want bool
	}{
		{499, true},
		{500, false},
		{2500, false},
		{10000, false},
		{10001, true},
	}
	for _, tt := range tests {
		ppm2 := tt.ppm2
		record := models.CleanedListing{Title: "X", PricePerM2: &ppm2}
		e := gold.enrichRecord(record)
		if e.IsPriceAnomaly != tt.want {
			t.Errorf("ppm2 %.0f: anomaly got %v, want %v", tt.ppm2, e.IsPriceAnomaly, tt.want)
		}
	}
}

func TestExportForImport(t *testing.T) {
	gold := NewGoldLayer(storage.NewMemoryStore())

	gov := "Sousse"
	price := 180000.0
	ready := models.CleanedListing{
		Title:           "Appartement",
		PropertyType:    "APARTMENT",
		TransactionType: "SALE",
		Governorate:     &gov,
		Price:           &price,
	}
	notReady := models.CleanedListing{Title: "Sans prix"}

	name, err := gold.Enrich(silverBatchOf(ready, notReady), "")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	exported, err := gold.ExportForImport(name)
	if err != nil {
		t.Fatalf("ExportForImport: %v", err)
	}
	if len(exported) != 1 {
		t.Fatalf("got %d exported records, want 1", len(exported))
	}
	if exported[0].Title != "Appartement" {
		t.Errorf("exported record: got %q", exported[0].Title)
	}
}
