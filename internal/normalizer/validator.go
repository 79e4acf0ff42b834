package normalizer

import (
	"net/url"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

// Tunisia bounding box. Coordinates outside it are treated as scraper
// noise and nulled out.
const (
	minLatitude  = 30.2
	maxLatitude  = 37.5
	minLongitude = 7.5
	maxLongitude = 11.6
)

// Validation failure reasons, reported in batch counters and logs.
const (
	ReasonMissingRequiredField = "missing_required_field"
	ReasonInvalidURL           = "invalid_url"
)

// Result is the outcome of validating one cleaned listing. Only hard
// failures make Valid false; quality issues merely clear the flags on
// the record itself.
type Result struct {
	Valid  bool
	Reason string
	Field  string
}

// Validator checks cleaned records for mandatory identifying fields and
// plausible coordinates and price. It annotates quality flags in place
// but performs no I/O.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs after normalization so that the cleaned values are what
// gets checked. Missing optional fields never fail a record.
func (v *Validator) Validate(c *models.CleanedListing) Result {
	for field, value := range map[string]string{
		"title":          c.Title,
		"source_url":     c.SourceURL,
		"source_website": c.SourceWebsite,
	} {
		if value == "" {
			return Result{Reason: ReasonMissingRequiredField, Field: field}
		}
	}

	if !validURL(c.SourceURL) {
		return Result{Reason: ReasonInvalidURL, Field: "source_url"}
	}

	v.checkCoordinates(c)
	v.checkPrice(c)

	return Result{Valid: true}
}

// checkCoordinates nulls out coordinate pairs that fall outside Tunisia
// and keeps has_coordinates in sync. A record without coordinates is
// fine, it just carries the flag cleared.
func (v *Validator) checkCoordinates(c *models.CleanedListing) {
	if c.Latitude == nil || c.Longitude == nil {
		c.Latitude = nil
		c.Longitude = nil
		c.HasCoordinates = false
		return
	}

	lat, lng := *c.Latitude, *c.Longitude
	if lat < minLatitude || lat > maxLatitude || lng < minLongitude || lng > maxLongitude {
		c.Latitude = nil
		c.Longitude = nil
		c.HasCoordinates = false
		return
	}
	c.HasCoordinates = true
}

// checkPrice mirrors price presence into has_price. The normalizer has
// already downgraded non-positive or unparseable prices to null.
func (v *Validator) checkPrice(c *models.CleanedListing) {
	c.HasPrice = c.Price != nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
