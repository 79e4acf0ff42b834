package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// governorateNames maps lowercase spellings to the canonical 24-entry
// Tunisian gazetteer. Diacritic-free variants are included because most
// listing sites drop accents.
var governorateNames = map[string]string{
	"tunis":       "Tunis",
	"ariana":      "Ariana",
	"ben arous":   "Ben Arous",
	"benarous":    "Ben Arous",
	"manouba":     "Manouba",
	"la manouba":  "Manouba",
	"nabeul":      "Nabeul",
	"zaghouan":    "Zaghouan",
	"bizerte":     "Bizerte",
	"beja":        "Béja",
	"béja":        "Béja",
	"jendouba":    "Jendouba",
	"kef":         "Le Kef",
	"le kef":      "Le Kef",
	"siliana":     "Siliana",
	"sousse":      "Sousse",
	"monastir":    "Monastir",
	"mahdia":      "Mahdia",
	"sfax":        "Sfax",
	"kairouan":    "Kairouan",
	"kasserine":   "Kasserine",
	"sidi bouzid": "Sidi Bouzid",
	"gabes":       "Gabès",
	"gabès":       "Gabès",
	"medenine":    "Médenine",
	"médenine":    "Médenine",
	"tataouine":   "Tataouine",
	"gafsa":       "Gafsa",
	"tozeur":      "Tozeur",
	"kebili":      "Kébili",
	"kébili":      "Kébili",
}

// propertyTypes maps free-text labels (French, English, colloquial) to
// the canonical property type enum.
var propertyTypes = map[string]string{
	"appartement":       "APARTMENT",
	"apartment":         "APARTMENT",
	"appart":            "APARTMENT",
	"studio":            "APARTMENT",
	"s+1":               "APARTMENT",
	"maison":            "HOUSE",
	"house":             "HOUSE",
	"duplex":            "HOUSE",
	"villa":             "VILLA",
	"terrain":           "LAND",
	"land":              "LAND",
	"lot":               "LAND",
	"commercial":        "COMMERCIAL",
	"local":             "COMMERCIAL",
	"local commercial":  "COMMERCIAL",
	"fonds de commerce": "COMMERCIAL",
	"bureau":            "OFFICE",
	"office":            "OFFICE",
}

// transactionTypes maps free-text labels to SALE or RENT.
var transactionTypes = map[string]string{
	"vente":    "SALE",
	"sale":     "SALE",
	"vendre":   "SALE",
	"à vendre": "SALE",
	"a vendre": "SALE",
	"location": "RENT",
	"rent":     "RENT",
	"louer":    "RENT",
	"à louer":  "RENT",
	"a louer":  "RENT",
}

// truthy tokens recognised for textual booleans, case-insensitive.
var truthyTokens = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"oui":  true,
}

// scoredFieldCount is the number of top-level cleaned-schema fields that
// participate in the completeness score (quality flags, the score itself
// and the content hash are bookkeeping, not captured data).
const scoredFieldCount = 32

// Normalizer maps open-schema raw records onto the fixed silver schema.
// It is a pure transformation: it never rejects a record, and every
// failed coercion downgrades the field to null rather than erroring.
type Normalizer struct{}

// New returns a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize converts one raw record into a cleaned listing. Mandatory
// field enforcement is the validator's job; this stage only cleans.
func (n *Normalizer) Normalize(raw models.RawRecord) models.CleanedListing {
	c := models.CleanedListing{
		ListingID:     raw.StringField("listing_id"),
		SourceURL:     strings.TrimSpace(raw.StringField("source_url")),
		SourceWebsite: strings.TrimSpace(raw.StringField("source_website")),
	}

	c.Title = cleanTextValue(raw["title"])
	c.Description = cleanTextPtr(raw["description"])

	c.PropertyType = NormalizePropertyType(raw.StringField("property_type"))
	c.TransactionType = NormalizeTransactionType(raw.StringField("transaction_type"))

	c.Governorate = NormalizeGovernorate(raw.StringField("governorate"))
	c.Delegation = cleanTextPtr(raw["delegation"])
	c.Neighborhood = cleanTextPtr(raw["neighborhood"])
	c.Address = cleanTextPtr(raw["address"])

	c.Latitude = floatPtr(raw["latitude"])
	c.Longitude = floatPtr(raw["longitude"])
	if c.Latitude == nil || c.Longitude == nil {
		// Half a coordinate pair is as useless as none.
		c.Latitude = nil
		c.Longitude = nil
	}

	c.Price = positiveFloatPtr(raw["price"])
	c.PriceCurrency = raw.StringField("price_currency")
	if c.PriceCurrency == "" {
		c.PriceCurrency = "TND"
	}

	c.Size = positiveFloatPtr(raw["size"])
	if c.Size != nil {
		unit := "m2"
		if s := raw.StringField("size_unit"); s != "" {
			unit = s
		}
		c.SizeUnit = &unit
	}

	// price_per_m2 is always recomputed when both inputs are present,
	// overriding whatever the scraper reported.
	if c.Price != nil && c.Size != nil {
		ppm2 := round2(*c.Price / *c.Size)
		c.PricePerM2 = &ppm2
	} else {
		c.PricePerM2 = positiveFloatPtr(raw["price_per_m2"])
	}

	c.Bedrooms = intPtr(raw["bedrooms"])
	c.Bathrooms = intPtr(raw["bathrooms"])
	c.Floor = intPtr(raw["floor"])

	c.HasParking = boolValue(raw["has_parking"])
	c.HasElevator = boolValue(raw["has_elevator"])
	c.HasPool = boolValue(raw["has_pool"])
	c.HasGarden = boolValue(raw["has_garden"])
	c.HasSeaView = boolValue(raw["has_sea_view"])
	c.IsFurnished = boolValue(raw["is_furnished"])

	c.Images = imageList(raw["images"])

	c.ContactPhone = phonePtr(raw["contact_phone"])
	c.ContactName = cleanTextPtr(raw["contact_name"])

	c.ListingDate = datePtr(raw["listing_date"])
	c.ScrapeTimestamp = datePtr(raw["scrape_timestamp"])

	c.DataCompletenessScore = completenessScore(&c)

	return c
}

// NormalizePhone canonicalizes Tunisian phone numbers to +216XXXXXXXX.
// Unrecognized formats pass through unchanged.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	digits := nonDigitRegexp.ReplaceAllString(phone, "")
	switch {
	case strings.HasPrefix(digits, "216"):
		return "+" + digits
	case len(digits) == 8:
		return "+216" + digits
	default:
		return phone
	}
}

// NormalizeGovernorate canonicalizes a governorate name against the
// gazetteer. Unmatched non-empty input is title-cased, never rejected.
func NormalizeGovernorate(gov string) *string {
	cleaned := cleanText(gov)
	if cleaned == "" {
		return nil
	}
	if canonical, ok := governorateNames[strings.ToLower(cleaned)]; ok {
		return &canonical
	}
	fallback := titleCase(cleaned)
	return &fallback
}

// NormalizePropertyType maps a free-text label to the property type enum,
// falling back to the uppercased raw label. The mapping never fails.
func NormalizePropertyType(label string) string {
	cleaned := cleanText(label)
	if cleaned == "" {
		return ""
	}
	if mapped, ok := propertyTypes[strings.ToLower(cleaned)]; ok {
		return mapped
	}
	return strings.ToUpper(cleaned)
}

// NormalizeTransactionType maps a free-text label to SALE or RENT,
// falling back to the uppercased raw label.
func NormalizeTransactionType(label string) string {
	cleaned := cleanText(label)
	if cleaned == "" {
		return ""
	}
	if mapped, ok := transactionTypes[strings.ToLower(cleaned)]; ok {
		return mapped
	}
	return strings.ToUpper(cleaned)
}

// cleanText collapses internal whitespace runs to single spaces and trims.
func cleanText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

func cleanTextValue(v interface{}) string {
	return cleanText(stringValue(v))
}

func cleanTextPtr(v interface{}) *string {
	s := cleanText(stringValue(v))
	if s == "" {
		return nil
	}
	return &s
}

func phonePtr(v interface{}) *string {
	s := NormalizePhone(stringValue(v))
	if s == "" {
		return nil
	}
	return &s
}

// stringValue renders a raw scalar as a string. Numeric JSON values show
// up as float64 after decoding; integral ones print without a decimal
// point so fingerprints stay stable across sources.
func stringValue(v interface{}) string {
	switch t := v.(type) {
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

func floatValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func floatPtr(v interface{}) *float64 {
	f, ok := floatValue(v)
	if !ok {
		return nil
	}
	return &f
}

func positiveFloatPtr(v interface{}) *float64 {
	f, ok := floatValue(v)
	if !ok || f <= 0 {
		return nil
	}
	return &f
}

func intPtr(v interface{}) *int {
	f, ok := floatValue(v)
	if !ok || f != math.Trunc(f) {
		return nil
	}
	i := int(f)
	return &i
}

// boolValue maps native booleans through and recognises textual truthy
// tokens. Everything else, including null, is false.
func boolValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthyTokens[strings.ToLower(strings.TrimSpace(t))]
	default:
		return false
	}
}

func imageList(v interface{}) []string {
	images := []string{}
	switch t := v.(type) {
	case []string:
		images = append(images, t...)
	case []interface{}:
		for _, item := range t {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				images = append(images, s)
			}
		}
	}
	return images
}

// datePtr parses a date into ISO 8601, trying the formats the scrapers
// actually emit. Unparseable input becomes null, never an error.
func datePtr(v interface{}) *string {
	s := strings.TrimSpace(stringValue(v))
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			iso := t.Format(time.RFC3339)
			return &iso
		}
	}
	return nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// completenessScore rewards breadth of capture: the share of the fixed
// cleaned schema's fields that carry data, as a 0-100 percentage.
// Amenity flags only count when set since false doubles as "absent".
func completenessScore(c *models.CleanedListing) float64 {
	filled := 0

	for _, s := range []string{
		c.ListingID, c.SourceURL, c.SourceWebsite, c.Title,
		c.PropertyType, c.TransactionType, c.PriceCurrency,
	} {
		if s != "" {
			filled++
		}
	}
	for _, p := range []*string{
		c.Description, c.Governorate, c.Delegation, c.Neighborhood,
		c.Address, c.SizeUnit, c.ContactPhone, c.ContactName,
		c.ListingDate, c.ScrapeTimestamp,
	} {
		if p != nil {
			filled++
		}
	}
	for _, p := range []*float64{c.Latitude, c.Longitude, c.Price, c.PricePerM2, c.Size} {
		if p != nil {
			filled++
		}
	}
	for _, p := range []*int{c.Bedrooms, c.Bathrooms, c.Floor} {
		if p != nil {
			filled++
		}
	}
	for _, b := range c.Amenities() {
		if b {
			filled++
		}
	}
	if len(c.Images) > 0 {
		filled++
	}

	return round2(float64(filled) / scoredFieldCount * 100)
}
