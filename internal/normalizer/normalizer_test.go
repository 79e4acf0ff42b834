package normalizer

import (
	"testing"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22 123 456", "+21622123456"},
		{"22123456", "+21622123456"},
		{"216 22 123 456", "+21622123456"},
		{"+216 22 123 456", "+21622123456"},
		{"21622123456", "+21622123456"},
		{"0022123456", "0022123456"},
		{"123", "123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeGovernorate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tunis", "Tunis"},
		{"TUNIS", "Tunis"},
		{"  sousse  ", "Sousse"},
		{"gabes", "Gabès"},
		{"ben arous", "Ben Arous"},
		{"le kef", "Le Kef"},
		{"kef", "Le Kef"},
		{"atlantis", "Atlantis"},
	}
	for _, tt := range tests {
		got := NormalizeGovernorate(tt.in)
		if got == nil {
			t.Errorf("NormalizeGovernorate(%q): got nil, want %q", tt.in, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("NormalizeGovernorate(%q): got %q, want %q", tt.in, *got, tt.want)
		}
	}

	if got := NormalizeGovernorate("   "); got != nil {
		t.Errorf("NormalizeGovernorate(blank): got %q, want nil", *got)
	}
}

func TestNormalizePropertyType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"appartement", "APARTMENT"},
		{"Studio", "APARTMENT"},
		{"s+1", "APARTMENT"},
		{"maison", "HOUSE"},
		{"duplex", "HOUSE"},
		{"villa", "VILLA"},
		{"terrain", "LAND"},
		{"fonds de commerce", "COMMERCIAL"},
		{"bureau", "OFFICE"},
		{"penthouse", "PENTHOUSE"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePropertyType(tt.in); got != tt.want {
			t.Errorf("NormalizePropertyType(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vente", "SALE"},
		{"à vendre", "SALE"},
		{"location", "RENT"},
		{"Louer", "RENT"},
		{"echange", "ECHANGE"},
	}
	for _, tt := range tests {
		if got := NormalizeTransactionType(tt.in); got != tt.want {
			t.Errorf("NormalizeTransactionType(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeWhitespaceAndCurrencyDefault(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{
		"title":          "  Belle   villa \n à  Gammarth ",
		"source_url":     " https://example.tn/annonce/1 ",
		"source_website": "tayara",
	})

	if c.Title != "Belle villa à Gammarth" {
		t.Errorf("Title: got %q", c.Title)
	}
	if c.SourceURL != "https://example.tn/annonce/1" {
		t.Errorf("SourceURL: got %q", c.SourceURL)
	}
	if c.PriceCurrency != "TND" {
		t.Errorf("PriceCurrency: got %q, want TND", c.PriceCurrency)
	}
}

func TestNormalizeRecomputesPricePerM2(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{
		"title":        "Appartement",
		"price":        300000.0,
		"size":         120.0,
		"price_per_m2": 99999.0, // scraper-reported value must lose
	})

	if c.PricePerM2 == nil {
		t.Fatal("PricePerM2 should be set")
	}
	if *c.PricePerM2 != 2500 {
		t.Errorf("PricePerM2: got %.2f, want 2500", *c.PricePerM2)
	}
	if c.SizeUnit == nil || *c.SizeUnit != "m2" {
		t.Error("SizeUnit should default to m2 when size is present")
	}
}

func TestNormalizeDropsNonPositivePrice(t *testing.T) {
	n := New()
	for _, price := range []interface{}{0.0, -5.0, "abc"} {
		c := n.Normalize(models.RawRecord{"price": price})
		if c.Price != nil {
			t.Errorf("price %v: got %v, want nil", price, *c.Price)
		}
	}
}

func TestNormalizeHalfCoordinatePair(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{"latitude": 36.8})
	if c.Latitude != nil || c.Longitude != nil {
		t.Error("half a coordinate pair should be nulled")
	}
}

func TestNormalizeBooleans(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{
		"has_parking":  true,
		"has_elevator": "oui",
		"has_pool":     "1",
		"has_garden":   "non",
		"has_sea_view": nil,
		"is_furnished": "YES",
	})

	if !c.HasParking || !c.HasElevator || !c.HasPool || !c.IsFurnished {
		t.Error("truthy amenity values should map to true")
	}
	if c.HasGarden || c.HasSeaView {
		t.Error("falsy amenity values should map to false")
	}
}

func TestNormalizeNumericStringFields(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{
		"bedrooms": "3",
		"size":     "120.5",
		"floor":    2.0,
	})

	if c.Bedrooms == nil || *c.Bedrooms != 3 {
		t.Error("bedrooms should coerce from string")
	}
	if c.Size == nil || *c.Size != 120.5 {
		t.Error("size should coerce from string")
	}
	if c.Floor == nil || *c.Floor != 2 {
		t.Error("floor should coerce from float64")
	}
}

func TestNormalizeDates(t *testing.T) {
	n := New()
	c := n.Normalize(models.RawRecord{
		"listing_date":     "2026-08-01",
		"scrape_timestamp": "pas une date",
	})

	if c.ListingDate == nil || *c.ListingDate != "2026-08-01T00:00:00Z" {
		t.Errorf("ListingDate: got %v", c.ListingDate)
	}
	if c.ScrapeTimestamp != nil {
		t.Errorf("unparseable date should be nil, got %q", *c.ScrapeTimestamp)
	}
}

func TestCompletenessScore(t *testing.T) {
	n := New()

	empty := n.Normalize(models.RawRecord{})
	// price_currency always defaults, so even an empty record scores one
	// field out of 32.
	if empty.DataCompletenessScore != 3.13 {
		t.Errorf("empty record score: got %.2f, want 3.13", empty.DataCompletenessScore)
	}

	richer := n.Normalize(models.RawRecord{
		"title":      "Villa",
		"source_url": "https://example.tn/1",
	})
	if richer.DataCompletenessScore <= empty.DataCompletenessScore {
		t.Error("more fields should mean a higher score")
	}
}
