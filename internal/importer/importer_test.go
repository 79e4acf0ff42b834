package importer

import (
	"errors"
	"testing"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

type fakeStore struct {
	saved   []*models.Listing
	failURL string
}

func (s *fakeStore) InitSchema() error { return nil }

func (s *fakeStore) SaveListing(l *models.Listing) error {
	if l.SourceURL == s.failURL {
		return errors.New("connection reset")
	}
	s.saved = append(s.saved, l)
	return nil
}

func (s *fakeStore) GetAllListings() ([]models.Listing, error) { return nil, nil }

func (s *fakeStore) GetListingByID(id string) (*models.Listing, error) { return nil, nil }

func (s *fakeStore) CountListings() (int64, error) { return int64(len(s.saved)), nil }

func (s *fakeStore) Close() error { return nil }

func ready(url, title string) models.EnrichedListing {
	price := 200000.0
	gov := "Tunis"
	return models.EnrichedListing{
		CleanedListing: models.CleanedListing{
			SourceURL:       url,
			SourceWebsite:   "tayara",
			Title:           title,
			PropertyType:    "APARTMENT",
			TransactionType: "SALE",
			Governorate:     &gov,
			Price:           &price,
		},
		ReadyForImport: true,
	}
}

func TestImportSkipsNotReady(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	notReady := ready("https://example.tn/a", "A")
	notReady.ReadyForImport = false

	result := imp.Import([]models.EnrichedListing{
		ready("https://example.tn/b", "B"),
		notReady,
	})

	if result.Imported != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result: %+v", result)
	}
	if len(store.saved) != 1 || store.saved[0].Title != "B" {
		t.Errorf("saved: %+v", store.saved)
	}
}

func TestImportCountsFailuresWithoutAborting(t *testing.T) {
	store := &fakeStore{failURL: "https://example.tn/bad"}
	imp := New(store, nil)

	result := imp.Import([]models.EnrichedListing{
		ready("https://example.tn/bad", "Bad"),
		ready("https://example.tn/good", "Good"),
	})

	if result.Failed != 1 || result.Imported != 1 {
		t.Errorf("result: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors: %v", result.Errors)
	}
	if len(store.saved) != 1 || store.saved[0].Title != "Good" {
		t.Errorf("saved: %+v", store.saved)
	}
}

func TestToListingFlattensPointers(t *testing.T) {
	record := ready("https://example.tn/a", "A")
	desc := "Belle vue"
	phone := "+21620123456"
	date := "2026-08-20T00:00:00Z"
	record.Description = &desc
	record.ContactPhone = &phone
	record.ListingDate = &date
	record.HasPool = true
	record.PriceCategory = "MID_RANGE"
	record.FeatureScore = 16.67

	l := toListing(&record)

	if l.Description != "Belle vue" || l.ContactPhone != "+21620123456" {
		t.Errorf("flattened strings: %+v", l)
	}
	if l.Governorate != "Tunis" {
		t.Errorf("governorate: got %q", l.Governorate)
	}
	if l.ListingDate == nil || l.ListingDate.Format("2006-01-02") != "2026-08-20" {
		t.Errorf("listing date: %v", l.ListingDate)
	}
	if !l.HasPool || l.PriceCategory != "MID_RANGE" || l.FeatureScore != 16.67 {
		t.Errorf("enrichment fields: %+v", l)
	}
	if l.Price == nil || *l.Price != 200000 {
		t.Errorf("price: %v", l.Price)
	}
	if l.ImportedAt.IsZero() {
		t.Error("imported_at should be stamped")
	}
}

func TestImportEmptyBatch(t *testing.T) {
	imp := New(&fakeStore{}, nil)

	result := imp.Import(nil)
	if result.Imported != 0 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("empty batch result: %+v", result)
	}
}
