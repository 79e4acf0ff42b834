package normalizer

import (
	"testing"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

func validListing() models.CleanedListing {
	return models.CleanedListing{
		Title:         "Appartement S+2 au Lac",
		SourceURL:     "https://example.tn/annonce/42",
		SourceWebsite: "tayara",
	}
}

func TestValidateMissingRequiredFields(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		mutate func(*models.CleanedListing)
		field  string
	}{
		{"missing title", func(c *models.CleanedListing) { c.Title = "" }, "title"},
		{"missing source_url", func(c *models.CleanedListing) { c.SourceURL = "" }, "source_url"},
		{"missing source_website", func(c *models.CleanedListing) { c.SourceWebsite = "" }, "source_website"},
	}
	for _, tt := range tests {
		c := validListing()
		tt.mutate(&c)
		result := v.Validate(&c)
		if result.Valid {
			t.Errorf("%s: record should be invalid", tt.name)
			continue
		}
		if result.Reason != ReasonMissingRequiredField {
			t.Errorf("%s: reason got %q, want %q", tt.name, result.Reason, ReasonMissingRequiredField)
		}
		if result.Field != tt.field {
			t.Errorf("%s: field got %q, want %q", tt.name, result.Field, tt.field)
		}
	}
}

func TestValidateURL(t *testing.T) {
	v := NewValidator()

	for _, bad := range []string{"not-a-url", "ftp://example.tn/1", "https://", "://missing"} {
		c := validListing()
		c.SourceURL = bad
		result := v.Validate(&c)
		if result.Valid {
			t.Errorf("URL %q should be invalid", bad)
			continue
		}
		if result.Reason != ReasonInvalidURL {
			t.Errorf("URL %q: reason got %q, want %q", bad, result.Reason, ReasonInvalidURL)
		}
	}

	c := validListing()
	if result := v.Validate(&c); !result.Valid {
		t.Errorf("valid record rejected: %+v", result)
	}
}

func TestValidateCoordinatesInsideTunisia(t *testing.T) {
	v := NewValidator()
	lat, lng := 36.8065, 10.1815 // Tunis

	c := validListing()
	c.Latitude = &lat
	c.Longitude = &lng

	if result := v.Validate(&c); !result.Valid {
		t.Fatalf("record rejected: %+v", result)
	}
	if !c.HasCoordinates {
		t.Error("has_coordinates should be true for Tunis coordinates")
	}
	if c.Latitude == nil || c.Longitude == nil {
		t.Error("in-bounds coordinates should be preserved")
	}
}

func TestValidateCoordinatesOutsideTunisia(t *testing.T) {
	v := NewValidator()
	lat, lng := 48.8566, 2.3522 // Paris

	c := validListing()
	c.Latitude = &lat
	c.Longitude = &lng

	result := v.Validate(&c)
	if !result.Valid {
		t.Fatalf("out-of-bounds coordinates should not reject the record: %+v", result)
	}
	if c.Latitude != nil || c.Longitude != nil {
		t.Error("out-of-bounds coordinates should be nulled")
	}
	if c.HasCoordinates {
		t.Error("has_coordinates should be false")
	}
}

func TestValidatePriceFlag(t *testing.T) {
	v := NewValidator()

	c := validListing()
	v.Validate(&c)
	if c.HasPrice {
		t.Error("has_price should be false without a price")
	}

	price := 250000.0
	c = validListing()
	c.Price = &price
	v.Validate(&c)
	if !c.HasPrice {
		t.Error("has_price should be true with a price")
	}
}
