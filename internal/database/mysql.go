package database

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB wraps an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(&models.Listing{})
}

// SaveListing saves or updates a listing (upsert by source_url)
func (gdb *GormDB) SaveListing(l *models.Listing) error {
	if l.ID == "" {
		l.ID = generateMD5(normalizeURL(l.SourceURL))
	}
	if l.ImportedAt.IsZero() {
		l.ImportedAt = time.Now()
	}

	var existing models.Listing
	result := gdb.db.Where("source_url = ?", l.SourceURL).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(l).Error
	} else if result.Error != nil {
		return result.Error
	}

	// Update in place, keeping the original identity and creation time
	l.ID = existing.ID
	l.CreatedAt = existing.CreatedAt
	return gdb.db.Save(l).Error
}

// GetAllListings retrieves all listings, newest first
func (gdb *GormDB) GetAllListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// GetListingByID retrieves a listing by ID
func (gdb *GormDB) GetListingByID(id string) (*models.Listing, error) {
	var listing models.Listing
	if err := gdb.db.Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// CountListings returns the number of imported listings
func (gdb *GormDB) CountListings() (int64, error) {
	var count int64
	err := gdb.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}

// normalizeURL strips query string and fragment so the same listing URL
// always yields the same ID
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

func generateMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
