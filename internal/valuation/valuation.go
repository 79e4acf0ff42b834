// Package valuation implements the rule-based property valuation used
// by the public API: regional base prices per m² with location, type,
// floor and amenity adjustments.
package valuation

import (
	"fmt"
	"math"
	"strings"
)

// regionalPrices holds base prices in TND per m², keyed by governorate
// then delegation. Unknown delegations fall back to the governorate
// average; unknown governorates to a country-wide default.
var regionalPrices = map[string]map[string]float64{
	"Tunis": {
		"La Marsa":      4200,
		"Carthage":      4500,
		"Gammarth":      5000,
		"Sidi Bou Said": 4000,
		"Menzah":        3800,
		"Ennasr":        3500,
		"Manar":         3300,
		"Lac 1":         3600,
		"Lac 2":         3400,
		"Centre Ville":  3000,
		"Bardo":         2800,
	},
	"Ariana": {
		"Ariana Ville":    2400,
		"Ariana Essoghra": 2200,
		"Raoued":          2000,
		"Soukra":          2600,
	},
	"Ben Arous": {
		"Hammam-Lif": 2300,
		"Rades":      2100,
		"Megrine":    2200,
	},
	"Sousse": {
		"Khezama":          3000,
		"Port El Kantaoui": 3500,
		"Sousse Ville":     1900,
		"Corniche":         3200,
		"Sahloul":          2400,
	},
	"Nabeul": {
		"Hammamet":         2200,
		"Hammamet Nord":    2400,
		"Yasmine Hammamet": 2800,
		"Nabeul Ville":     1700,
		"Kelibia":          1600,
	},
	"Sfax": {
		"Sfax Ville":   1800,
		"Sfax Jadida":  2000,
		"Thyna":        1500,
		"Sakiet Ezzit": 1600,
	},
	"Bizerte": {
		"Bizerte Ville":    1600,
		"Corniche":         2100,
		"Menzel Bourguiba": 1400,
	},
	"Monastir": {
		"Monastir": 1700,
		"Skanes":   1900,
	},
	"Mahdia":   {"Mahdia": 1400},
	"Kairouan": {"Kairouan": 1100},
	"Gabès":    {"Gabes": 1200},
	"Tozeur":   {"Tozeur": 1300},
}

const defaultBasePricePerM2 = 1500

var premiumAreas = map[string]bool{
	"La Marsa":         true,
	"Carthage":         true,
	"Gammarth":         true,
	"Sidi Bou Said":    true,
	"Port El Kantaoui": true,
	"Yasmine Hammamet": true,
}

var midTierAreas = map[string]bool{
	"Menzah":       true,
	"Ennasr":       true,
	"Sousse Ville": true,
	"Hammamet":     true,
}

var typeMultipliers = map[string]float64{
	"APARTMENT":  1.0,
	"HOUSE":      1.15,
	"VILLA":      1.4,
	"LAND":       0.6,
	"COMMERCIAL": 1.3,
	"OFFICE":     1.2,
}

// Request describes the property to value.
type Request struct {
	Governorate     string   `json:"governorate"`
	Delegation      string   `json:"delegation"`
	PropertyType    string   `json:"property_type"`
	TransactionType string   `json:"transaction_type"`
	Size            float64  `json:"size"`
	Floor           *int     `json:"floor,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	Bathrooms       *int     `json:"bathrooms,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	HasParking      bool     `json:"has_parking"`
	HasElevator     bool     `json:"has_elevator"`
	HasPool         bool     `json:"has_pool"`
	HasGarden       bool     `json:"has_garden"`
	HasSeaView      bool     `json:"has_sea_view"`
}

// Breakdown exposes the individual factors of an estimate.
type Breakdown struct {
	BasePricePerM2     float64 `json:"base_price_per_m2"`
	BaseValue          float64 `json:"base_value"`
	LocationMultiplier float64 `json:"location_multiplier"`
	TypeMultiplier     float64 `json:"type_multiplier"`
	AmenitiesBonus     float64 `json:"amenities_bonus"`
	FloorMultiplier    float64 `json:"floor_multiplier"`
	AgeMultiplier      float64 `json:"age_multiplier"`
}

// Estimate is the valuation result.
type Estimate struct {
	EstimatedValue  int       `json:"estimated_value"`
	MinValue        int       `json:"min_value"`
	MaxValue        int       `json:"max_value"`
	ConfidenceScore float64   `json:"confidence_score"`
	LocationScore   int       `json:"location_score"`
	SizeScore       int       `json:"size_score"`
	ConditionScore  int       `json:"condition_score"`
	AmenitiesScore  int       `json:"amenities_score"`
	PriceFairness   string    `json:"price_fairness"`
	Insights        string    `json:"insights"`
	Breakdown       Breakdown `json:"breakdown"`
}

// Model is the rule-based valuation model.
type Model struct{}

// NewModel returns the valuation model.
func NewModel() *Model {
	return &Model{}
}

// BasePricePerM2 resolves the regional base price for a location.
func (m *Model) BasePricePerM2(governorate, delegation string) float64 {
	regions, ok := regionalPrices[governorate]
	if !ok {
		return defaultBasePricePerM2
	}
	if price, ok := regions[delegation]; ok {
		return price
	}
	total := 0.0
	for _, price := range regions {
		total += price
	}
	return total / float64(len(regions))
}

func locationMultiplier(delegation string) float64 {
	switch {
	case premiumAreas[delegation]:
		return 1.2
	case midTierAreas[delegation]:
		return 1.0
	default:
		return 0.9
	}
}

func floorMultiplier(floor *int, propertyType string) float64 {
	if propertyType != "APARTMENT" || floor == nil {
		return 1.0
	}
	switch f := *floor; {
	case f <= 0:
		return 0.95
	case f <= 3:
		return 1.0
	case f <= 6:
		return 1.02
	default:
		return 1.05
	}
}

func amenitiesBonus(req *Request) float64 {
	bonus := 0.0
	if req.HasParking {
		bonus += 0.05
	}
	if req.HasElevator {
		bonus += 0.03
	}
	if req.HasPool {
		bonus += 0.10
	}
	if req.HasSeaView {
		bonus += 0.15
	}
	if req.HasGarden {
		bonus += 0.08
	}
	return bonus
}

func confidence(req *Request) float64 {
	score := 0.7
	if req.Bedrooms != nil {
		score += 0.02
	}
	if req.Bathrooms != nil {
		score += 0.02
	}
	return math.Min(score, 0.95)
}

// PriceFairness rates a listing price against the estimate.
func PriceFairness(listingPrice *float64, estimated int) string {
	if listingPrice == nil || estimated == 0 {
		return "unknown"
	}
	ratio := *listingPrice / float64(estimated)
	switch {
	case ratio < 0.90:
		return "excellent"
	case ratio < 0.95:
		return "good"
	case ratio <= 1.05:
		return "fair"
	case ratio <= 1.15:
		return "high"
	default:
		return "very_high"
	}
}

// Estimate values a property. Size must be positive.
func (m *Model) Estimate(req *Request) (*Estimate, error) {
	if req.Size <= 0 {
		return nil, fmt.Errorf("valuation: size must be positive, got %.2f", req.Size)
	}

	basePerM2 := m.BasePricePerM2(req.Governorate, req.Delegation)
	baseValue := basePerM2 * req.Size

	location := locationMultiplier(req.Delegation)
	typeMult, ok := typeMultipliers[req.PropertyType]
	if !ok {
		typeMult = 1.0
	}
	bonus := amenitiesBonus(req)
	floorMult := floorMultiplier(req.Floor, req.PropertyType)
	// Flat depreciation assumption; per-building age data is not scraped.
	ageMult := 0.95

	estimated := int(baseValue * location * typeMult * (1 + bonus) * floorMult * ageMult)

	amenityCount := 0
	for _, set := range []bool{req.HasParking, req.HasElevator, req.HasGarden, req.HasPool, req.HasSeaView} {
		if set {
			amenityCount++
		}
	}

	e := &Estimate{
		EstimatedValue:  estimated,
		MinValue:        int(float64(estimated) * 0.93),
		MaxValue:        int(float64(estimated) * 1.07),
		ConfidenceScore: confidence(req),
		LocationScore:   int(location * 85),
		SizeScore:       minInt(100, 60+int(req.Size/10)),
		ConditionScore:  80,
		AmenitiesScore:  60 + amenityCount*8,
		PriceFairness:   PriceFairness(req.Price, estimated),
		Breakdown: Breakdown{
			BasePricePerM2:     basePerM2,
			BaseValue:          baseValue,
			LocationMultiplier: location,
			TypeMultiplier:     typeMult,
			AmenitiesBonus:     bonus,
			FloorMultiplier:    floorMult,
			AgeMultiplier:      ageMult,
		},
	}
	e.Insights = m.insights(req, e)
	return e, nil
}

// insights renders the French-language summary shown alongside an
// estimate.
func (m *Model) insights(req *Request, e *Estimate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyse de la propriété:\n\n")
	fmt.Fprintf(&b, "Type: %s\n", req.PropertyType)
	fmt.Fprintf(&b, "Localisation: %s, %s\n", req.Delegation, req.Governorate)
	fmt.Fprintf(&b, "Valeur estimée: %d TND\n\n", e.EstimatedValue)

	var strong []string
	if req.HasSeaView {
		strong = append(strong, "Vue sur mer (prime de 15-20%)")
	}
	if req.HasPool {
		strong = append(strong, "Piscine privée")
	}
	if req.HasGarden {
		strong = append(strong, "Jardin/espace extérieur")
	}
	if req.HasParking {
		strong = append(strong, "Parking privé")
	}
	if req.HasElevator {
		strong = append(strong, "Ascenseur")
	}
	if len(strong) > 0 {
		b.WriteString("Points forts:\n")
		for _, point := range strong {
			fmt.Fprintf(&b, "• %s\n", point)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Prix moyen du marché: %.0f TND/m²\n", e.Breakdown.BasePricePerM2)
	b.WriteString("\nRecommandation: Cette propriété représente ")

	switch {
	case (req.PropertyType == "VILLA" || req.PropertyType == "HOUSE") && req.HasPool:
		b.WriteString("un excellent investissement pour une résidence de prestige.")
	case premiumAreas[req.Delegation]:
		b.WriteString("une opportunité dans un quartier très recherché.")
	default:
		b.WriteString("une bonne opportunité d'investissement.")
	}

	return b.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
