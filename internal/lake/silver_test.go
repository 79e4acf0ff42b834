package lake

import (
	"testing"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

func newTestSilver(t *testing.T) *SilverLayer {
	t.Helper()
	d, err := dedup.New(dedup.NewMemoryStore())
	if err != nil {
		t.Fatalf("dedup.New: %v", err)
	}
	return NewSilverLayer(storage.NewMemoryStore(), d)
}

func rawListing(title string, price float64) models.RawRecord {
	return models.RawRecord{
		"title":          title,
		"price":          price,
		"source_url":     "https://example.tn/annonce/" + title,
		"source_website": "tayara",
	}
}

func bronzeBatch(records ...models.RawRecord) *models.BronzeBatch {
	return &models.BronzeBatch{
		Metadata: models.BronzeMeta{
			Source:      "tayara",
			BatchID:     "20260830_120000",
			RecordCount: len(records),
		},
		Data: records,
	}
}

func TestSilverProcessCounterInvariant(t *testing.T) {
	silver := newTestSilver(t)

	batch := bronzeBatch(
		rawListing("A", 100000),
		rawListing("A", 100000),                                  // duplicate of the first
		models.RawRecord{"price": 5000.0},                        // invalid: no title
		models.RawRecord{"title": "B", "source_url": "nope"},     // invalid: bad URL
		rawListing("C", 300000),
	)

	name, meta, err := silver.Process(batch, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if meta.InputCount != 5 {
		t.Errorf("input_count: got %d, want 5", meta.InputCount)
	}
	if meta.OutputCount != 2 {
		t.Errorf("output_count: got %d, want 2", meta.OutputCount)
	}
	if meta.DuplicatesRemoved != 1 {
		t.Errorf("duplicates_removed: got %d, want 1", meta.DuplicatesRemoved)
	}
	if meta.InvalidRecords != 2 {
		t.Errorf("invalid_records: got %d, want 2", meta.InvalidRecords)
	}
	if meta.InputCount != meta.OutputCount+meta.DuplicatesRemoved+meta.InvalidRecords {
		t.Error("counter invariant violated")
	}

	stored, err := silver.ReadBatch(name)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(stored.Data) != 2 {
		t.Errorf("stored records: got %d, want 2", len(stored.Data))
	}
	for _, record := range stored.Data {
		if record.ContentHash == "" {
			t.Errorf("record %q missing content hash", record.Title)
		}
	}
}

func TestSilverProcessIdempotent(t *testing.T) {
	silver := newTestSilver(t)

	batch := bronzeBatch(rawListing("A", 100000), rawListing("B", 200000))

	_, first, err := silver.Process(batch, "run1")
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if first.OutputCount != 2 {
		t.Fatalf("first run output: got %d, want 2", first.OutputCount)
	}

	_, second, err := silver.Process(batch, "run2")
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if second.OutputCount != 0 {
		t.Errorf("second run output: got %d, want 0", second.OutputCount)
	}
	if second.DuplicatesRemoved != 2 {
		t.Errorf("second run duplicates: got %d, want 2", second.DuplicatesRemoved)
	}
	if second.InputCount != second.OutputCount+second.DuplicatesRemoved+second.InvalidRecords {
		t.Error("counter invariant violated on second run")
	}
}

func TestSilverDuplicateSkippedBeforeValidation(t *testing.T) {
	silver := newTestSilver(t)

	// An invalid record that fingerprints the same as an already-seen
	// valid one must count as a duplicate, not invalid.
	valid := rawListing("A", 100000)
	invalidTwin := models.RawRecord{
		"title": "A",
		"price": 100000.0,
		// same fingerprint fields, but no source_url
	}

	if _, _, err := silver.Process(bronzeBatch(valid), "run1"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	_, meta, err := silver.Process(bronzeBatch(invalidTwin), "run2")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if meta.DuplicatesRemoved != 1 || meta.InvalidRecords != 0 {
		t.Errorf("got duplicates=%d invalid=%d, want 1/0", meta.DuplicatesRemoved, meta.InvalidRecords)
	}
}

func TestSilverInvalidRecordLeavesNoFingerprint(t *testing.T) {
	silver := newTestSilver(t)

	// First pass: record is invalid (no source_url), gets dropped.
	invalid := models.RawRecord{"title": "A", "price": 100000.0}
	if _, meta, err := silver.Process(bronzeBatch(invalid), "run1"); err != nil {
		t.Fatalf("Process: %v", err)
	} else if meta.InvalidRecords != 1 {
		t.Fatalf("invalid: got %d, want 1", meta.InvalidRecords)
	}

	// Second pass: the same listing arrives fixed. It must not be
	// shadowed by a fingerprint from its invalid incarnation.
	fixed := rawListing("A", 100000)
	_, meta, err := silver.Process(bronzeBatch(fixed), "run2")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if meta.OutputCount != 1 {
		t.Errorf("fixed record output: got %d, want 1", meta.OutputCount)
	}
}

func TestSilverAllRecords(t *testing.T) {
	silver := newTestSilver(t)

	silver.Process(bronzeBatch(rawListing("A", 100000)), "run1")
	silver.Process(bronzeBatch(rawListing("B", 200000)), "run2")

	records, err := silver.AllRecords()
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}
