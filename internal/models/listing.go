package models

import "time"

// Listing is a database-ready property listing imported from the gold
// layer. Only records flagged ready_for_import ever reach this table.
type Listing struct {
	ID            string `gorm:"type:varchar(32);primaryKey" json:"id"`
	SourceURL     string `gorm:"type:varchar(500);not null;uniqueIndex" json:"source_url"`
	SourceWebsite string `gorm:"type:varchar(50);not null;index" json:"source_website"`
	Title         string `gorm:"type:text;not null" json:"title"`
	Description   string `gorm:"type:text" json:"description,omitempty"`

	PropertyType    string `gorm:"type:varchar(20);not null;index" json:"property_type"`
	TransactionType string `gorm:"type:varchar(10);not null;index" json:"transaction_type"`

	Governorate  string   `gorm:"type:varchar(30);index" json:"governorate,omitempty"`
	Delegation   string   `gorm:"type:varchar(100)" json:"delegation,omitempty"`
	Neighborhood string   `gorm:"type:varchar(100)" json:"neighborhood,omitempty"`
	Latitude     *float64 `gorm:"type:decimal(9,6)" json:"latitude,omitempty"`
	Longitude    *float64 `gorm:"type:decimal(9,6)" json:"longitude,omitempty"`

	Price         *float64 `gorm:"type:decimal(14,2);index" json:"price,omitempty"`
	PriceCurrency string   `gorm:"type:varchar(5);default:'TND'" json:"price_currency"`
	PricePerM2    *float64 `gorm:"type:decimal(12,2)" json:"price_per_m2,omitempty"`

	Size      *float64 `gorm:"type:decimal(10,2)" json:"size,omitempty"`
	Bedrooms  *int     `gorm:"type:int" json:"bedrooms,omitempty"`
	Bathrooms *int     `gorm:"type:int" json:"bathrooms,omitempty"`
	Floor     *int     `gorm:"type:int" json:"floor,omitempty"`

	HasParking  bool `gorm:"not null;default:false" json:"has_parking"`
	HasElevator bool `gorm:"not null;default:false" json:"has_elevator"`
	HasPool     bool `gorm:"not null;default:false" json:"has_pool"`
	HasGarden   bool `gorm:"not null;default:false" json:"has_garden"`
	HasSeaView  bool `gorm:"not null;default:false" json:"has_sea_view"`
	IsFurnished bool `gorm:"not null;default:false" json:"is_furnished"`

	ContactPhone string `gorm:"type:varchar(20)" json:"contact_phone,omitempty"`
	ContactName  string `gorm:"type:varchar(100)" json:"contact_name,omitempty"`

	PriceCategory string  `gorm:"type:varchar(15)" json:"price_category,omitempty"`
	SizeCategory  string  `gorm:"type:varchar(15)" json:"size_category,omitempty"`
	FeatureScore  float64 `gorm:"type:decimal(5,2)" json:"feature_score"`

	ListingDate *time.Time `gorm:"type:datetime" json:"listing_date,omitempty"`
	ImportedAt  time.Time  `gorm:"type:datetime;not null" json:"imported_at"`
	CreatedAt   time.Time  `gorm:"type:datetime;not null;autoCreateTime;index:idx_created_at,sort:desc" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name regardless of gorm pluralization rules.
func (Listing) TableName() string {
	return "listings"
}
