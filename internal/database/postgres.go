package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"

	_ "github.com/lib/pq"
)

type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the listings table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR(32) PRIMARY KEY,
		source_url VARCHAR(500) NOT NULL UNIQUE,
		source_website VARCHAR(50) NOT NULL,
		title TEXT NOT NULL,
		description TEXT,

		property_type VARCHAR(20) NOT NULL,
		transaction_type VARCHAR(10) NOT NULL,

		governorate VARCHAR(30),
		delegation VARCHAR(100),
		neighborhood VARCHAR(100),
		latitude DECIMAL(9, 6),
		longitude DECIMAL(9, 6),

		price DECIMAL(14, 2),
		price_currency VARCHAR(5) NOT NULL DEFAULT 'TND',
		price_per_m2 DECIMAL(12, 2),

		size DECIMAL(10, 2),
		bedrooms INTEGER,
		bathrooms INTEGER,
		floor INTEGER,

		has_parking BOOLEAN NOT NULL DEFAULT FALSE,
		has_elevator BOOLEAN NOT NULL DEFAULT FALSE,
		has_pool BOOLEAN NOT NULL DEFAULT FALSE,
		has_garden BOOLEAN NOT NULL DEFAULT FALSE,
		has_sea_view BOOLEAN NOT NULL DEFAULT FALSE,
		is_furnished BOOLEAN NOT NULL DEFAULT FALSE,

		contact_phone VARCHAR(20),
		contact_name VARCHAR(100),

		price_category VARCHAR(15),
		size_category VARCHAR(15),
		feature_score DECIMAL(5, 2),

		listing_date TIMESTAMP,
		imported_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_listings_governorate ON listings(governorate);
	CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
	CREATE INDEX IF NOT EXISTS idx_listings_transaction_type ON listings(transaction_type);
	CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
	`
	_, err := db.conn.Exec(query)
	return err
}

// SaveListing saves or updates a listing (upsert by source_url)
func (db *DB) SaveListing(l *models.Listing) error {
	if l.ID == "" {
		l.ID = generateMD5(normalizeURL(l.SourceURL))
	}
	if l.ImportedAt.IsZero() {
		l.ImportedAt = time.Now()
	}

	query := `
	INSERT INTO listings (
		id, source_url, source_website, title, description,
		property_type, transaction_type,
		governorate, delegation, neighborhood, latitude, longitude,
		price, price_currency, price_per_m2,
		size, bedrooms, bathrooms, floor,
		has_parking, has_elevator, has_pool, has_garden, has_sea_view, is_furnished,
		contact_phone, contact_name,
		price_category, size_category, feature_score,
		listing_date, imported_at, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, NOW(), NOW())
	ON CONFLICT (source_url) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		property_type = EXCLUDED.property_type,
		transaction_type = EXCLUDED.transaction_type,
		governorate = EXCLUDED.governorate,
		delegation = EXCLUDED.delegation,
		neighborhood = EXCLUDED.neighborhood,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		price = EXCLUDED.price,
		price_currency = EXCLUDED.price_currency,
		price_per_m2 = EXCLUDED.price_per_m2,
		size = EXCLUDED.size,
		bedrooms = EXCLUDED.bedrooms,
		bathrooms = EXCLUDED.bathrooms,
		floor = EXCLUDED.floor,
		has_parking = EXCLUDED.has_parking,
		has_elevator = EXCLUDED.has_elevator,
		has_pool = EXCLUDED.has_pool,
		has_garden = EXCLUDED.has_garden,
		has_sea_view = EXCLUDED.has_sea_view,
		is_furnished = EXCLUDED.is_furnished,
		contact_phone = EXCLUDED.contact_phone,
		contact_name = EXCLUDED.contact_name,
		price_category = EXCLUDED.price_category,
		size_category = EXCLUDED.size_category,
		feature_score = EXCLUDED.feature_score,
		listing_date = EXCLUDED.listing_date,
		imported_at = EXCLUDED.imported_at,
		updated_at = NOW()
	`
	_, err := db.conn.Exec(query,
		l.ID, l.SourceURL, l.SourceWebsite, l.Title, nullString(l.Description),
		l.PropertyType, l.TransactionType,
		nullString(l.Governorate), nullString(l.Delegation), nullString(l.Neighborhood),
		l.Latitude, l.Longitude,
		l.Price, l.PriceCurrency, l.PricePerM2,
		l.Size, l.Bedrooms, l.Bathrooms, l.Floor,
		l.HasParking, l.HasElevator, l.HasPool, l.HasGarden, l.HasSeaView, l.IsFurnished,
		nullString(l.ContactPhone), nullString(l.ContactName),
		nullString(l.PriceCategory), nullString(l.SizeCategory), l.FeatureScore,
		l.ListingDate, l.ImportedAt,
	)
	return err
}

// GetAllListings retrieves all listings, newest first
func (db *DB) GetAllListings() ([]models.Listing, error) {
	rows, err := db.conn.Query(selectColumns + " ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// GetListingByID retrieves a listing by ID
func (db *DB) GetListingByID(id string) (*models.Listing, error) {
	row := db.conn.QueryRow(selectColumns+" WHERE id = $1", id)
	return scanListing(row)
}

// CountListings returns the number of imported listings
func (db *DB) CountListings() (int64, error) {
	var count int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM listings").Scan(&count)
	return count, err
}

const selectColumns = `
	SELECT id, source_url, source_website, title, COALESCE(description, ''),
		property_type, transaction_type,
		COALESCE(governorate, ''), COALESCE(delegation, ''), COALESCE(neighborhood, ''),
		latitude, longitude,
		price, price_currency, price_per_m2,
		size, bedrooms, bathrooms, floor,
		has_parking, has_elevator, has_pool, has_garden, has_sea_view, is_furnished,
		COALESCE(contact_phone, ''), COALESCE(contact_name, ''),
		COALESCE(price_category, ''), COALESCE(size_category, ''), COALESCE(feature_score, 0),
		listing_date, imported_at, created_at, updated_at
	FROM listings`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.SourceURL, &l.SourceWebsite, &l.Title, &l.Description,
		&l.PropertyType, &l.TransactionType,
		&l.Governorate, &l.Delegation, &l.Neighborhood,
		&l.Latitude, &l.Longitude,
		&l.Price, &l.PriceCurrency, &l.PricePerM2,
		&l.Size, &l.Bedrooms, &l.Bathrooms, &l.Floor,
		&l.HasParking, &l.HasElevator, &l.HasPool, &l.HasGarden, &l.HasSeaView, &l.IsFurnished,
		&l.ContactPhone, &l.ContactName,
		&l.PriceCategory, &l.SizeCategory, &l.FeatureScore,
		&l.ListingDate, &l.ImportedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
