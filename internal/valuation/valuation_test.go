package valuation

import (
	"strings"
	"testing"
)

func TestBasePricePerM2(t *testing.T) {
	m := NewModel()

	if got := m.BasePricePerM2("Tunis", "La Marsa"); got != 4200 {
		t.Errorf("La Marsa: got %.0f, want 4200", got)
	}
	// Unknown delegation falls back to the governorate average.
	if got := m.BasePricePerM2("Mahdia", "Inconnue"); got != 1400 {
		t.Errorf("Mahdia fallback: got %.0f, want 1400", got)
	}
	// Unknown governorate falls back to the national default.
	if got := m.BasePricePerM2("Atlantide", ""); got != defaultBasePricePerM2 {
		t.Errorf("default fallback: got %.0f, want %d", got, defaultBasePricePerM2)
	}
}

func TestEstimateRequiresPositiveSize(t *testing.T) {
	m := NewModel()

	for _, size := range []float64{0, -10} {
		if _, err := m.Estimate(&Request{Governorate: "Tunis", Size: size}); err == nil {
			t.Errorf("size %.0f should be rejected", size)
		}
	}
}

func TestEstimateDeterministicBreakdown(t *testing.T) {
	m := NewModel()

	req := &Request{
		Governorate:  "Mahdia",
		Delegation:   "Mahdia",
		PropertyType: "APARTMENT",
		Size:         100,
	}
	e, err := m.Estimate(req)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	// 1400 * 100 * 0.9 (standard area) * 1.0 (apartment) * 1.0 * 1.0 * 0.95
	want := int(1400.0 * 100 * 0.9 * 0.95)
	if e.EstimatedValue != want {
		t.Errorf("estimated value: got %d, want %d", e.EstimatedValue, want)
	}
	if e.MinValue != int(float64(want)*0.93) || e.MaxValue != int(float64(want)*1.07) {
		t.Errorf("range: got [%d, %d]", e.MinValue, e.MaxValue)
	}
	if e.Breakdown.BasePricePerM2 != 1400 {
		t.Errorf("base price: got %.0f", e.Breakdown.BasePricePerM2)
	}
	if e.Breakdown.AgeMultiplier != 0.95 {
		t.Errorf("age multiplier: got %.2f", e.Breakdown.AgeMultiplier)
	}
}

func TestEstimateAmenitiesRaiseValue(t *testing.T) {
	m := NewModel()

	base := &Request{Governorate: "Sousse", Delegation: "Sahloul", PropertyType: "APARTMENT", Size: 120}
	plain, err := m.Estimate(base)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	loaded := *base
	loaded.HasPool = true
	loaded.HasSeaView = true
	rich, err := m.Estimate(&loaded)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if rich.EstimatedValue <= plain.EstimatedValue {
		t.Errorf("amenities should raise the estimate: %d vs %d", rich.EstimatedValue, plain.EstimatedValue)
	}
	if rich.AmenitiesScore <= plain.AmenitiesScore {
		t.Error("amenities score should rise with amenities")
	}
}

func TestConfidenceScore(t *testing.T) {
	m := NewModel()

	bedrooms, bathrooms := 3, 2
	req := &Request{Governorate: "Tunis", Delegation: "Menzah", PropertyType: "APARTMENT", Size: 100}

	e, _ := m.Estimate(req)
	if e.ConfidenceScore != 0.7 {
		t.Errorf("bare confidence: got %.2f, want 0.70", e.ConfidenceScore)
	}

	req.Bedrooms = &bedrooms
	req.Bathrooms = &bathrooms
	e, _ = m.Estimate(req)
	if e.ConfidenceScore != 0.74 {
		t.Errorf("full confidence: got %.2f, want 0.74", e.ConfidenceScore)
	}
}

func TestPriceFairness(t *testing.T) {
	estimated := 100000

	tests := []struct {
		price float64
		want  string
	}{
		{85000, "excellent"},
		{92000, "good"},
		{100000, "fair"},
		{110000, "high"},
		{130000, "very_high"},
	}
	for _, tt := range tests {
		price := tt.price
		if got := PriceFairness(&price, estimated); got != tt.want {
			t.Errorf("PriceFairness(%.0f): got %q, want %q", tt.price, got, tt.want)
		}
	}

	if got := PriceFairness(nil, estimated); got != "unknown" {
		t.Errorf("nil price: got %q, want unknown", got)
	}
	price := 100000.0
	if got := PriceFairness(&price, 0); got != "unknown" {
		t.Errorf("zero estimate: got %q, want unknown", got)
	}
}

func TestInsightsAreFrench(t *testing.T) {
	m := NewModel()

	e, err := m.Estimate(&Request{
		Governorate:  "Tunis",
		Delegation:   "Gammarth",
		PropertyType: "VILLA",
		Size:         300,
		HasPool:      true,
		HasSeaView:   true,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	for _, fragment := range []string{
		"Analyse de la propriété",
		"Valeur estimée",
		"Vue sur mer",
		"résidence de prestige",
	} {
		if !strings.Contains(e.Insights, fragment) {
			t.Errorf("insights missing %q:\n%s", fragment, e.Insights)
		}
	}
}
