// Package importer moves database-ready gold records into the portal
// database and the search index.
package importer

import (
	"log"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/database"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/search"
)

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer upserts enriched listings keyed by source_url. The search
// client is optional; without it listings are only persisted.
type Importer struct {
	store  database.ListingStore
	search *search.SearchClient
}

// New returns an importer over the given listing store.
func New(store database.ListingStore, searchClient *search.SearchClient) *Importer {
	return &Importer{store: store, search: searchClient}
}

// Import persists every ready_for_import record of a gold batch.
// Records not flagged ready are skipped and counted; individual save
// failures are counted without aborting the run.
func (i *Importer) Import(records []models.EnrichedListing) *Result {
	result := &Result{}
	var indexed []models.Listing

	for _, record := range records {
		if !record.ReadyForImport {
			result.Skipped++
			continue
		}

		listing := toListing(&record)
		if err := i.store.SaveListing(listing); err != nil {
			log.Printf("Importer: Failed to save %s: %v", listing.SourceURL, err)
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Imported++
		indexed = append(indexed, *listing)
	}

	if i.search != nil && len(indexed) > 0 {
		if err := i.search.IndexListings(indexed); err != nil {
			log.Printf("Importer: Failed to index %d listings: %v", len(indexed), err)
		}
	}

	log.Printf("Importer: Imported %d listings (%d skipped, %d failed)",
		result.Imported, result.Skipped, result.Failed)
	return result
}

// toListing flattens an enriched gold record into the database model.
func toListing(e *models.EnrichedListing) *models.Listing {
	l := &models.Listing{
		SourceURL:       e.SourceURL,
		SourceWebsite:   e.SourceWebsite,
		Title:           e.Title,
		PropertyType:    e.PropertyType,
		TransactionType: e.TransactionType,
		PriceCurrency:   e.PriceCurrency,
		Latitude:        e.Latitude,
		Longitude:       e.Longitude,
		Price:           e.Price,
		PricePerM2:      e.PricePerM2,
		Size:            e.Size,
		Bedrooms:        e.Bedrooms,
		Bathrooms:       e.Bathrooms,
		Floor:           e.Floor,
		HasParking:      e.HasParking,
		HasElevator:     e.HasElevator,
		HasPool:         e.HasPool,
		HasGarden:       e.HasGarden,
		HasSeaView:      e.HasSeaView,
		IsFurnished:     e.IsFurnished,
		PriceCategory:   e.PriceCategory,
		SizeCategory:    e.SizeCategory,
		FeatureScore:    e.FeatureScore,
		ImportedAt:      time.Now(),
	}

	if e.Description != nil {
		l.Description = *e.Description
	}
	if e.Governorate != nil {
		l.Governorate = *e.Governorate
	}
	if e.Delegation != nil {
		l.Delegation = *e.Delegation
	}
	if e.Neighborhood != nil {
		l.Neighborhood = *e.Neighborhood
	}
	if e.ContactPhone != nil {
		l.ContactPhone = *e.ContactPhone
	}
	if e.ContactName != nil {
		l.ContactName = *e.ContactName
	}
	if e.ListingDate != nil {
		if t, err := time.Parse(time.RFC3339, *e.ListingDate); err == nil {
			l.ListingDate = &t
		}
	}

	return l
}
