package database

import "github.com/mohamedaziz-ouertatani/estatemind/internal/models"

// ListingStore is the persistence capability the importer and the API
// need. MySQL (GORM) and PostgreSQL (database/sql) both satisfy it.
type ListingStore interface {
	InitSchema() error
	SaveListing(l *models.Listing) error
	GetAllListings() ([]models.Listing, error)
	GetListingByID(id string) (*models.Listing, error)
	CountListings() (int64, error)
	Close() error
}
