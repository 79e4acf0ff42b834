package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/scraper"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

type fakeSource struct {
	name    string
	records []models.RawRecord
	err     error
	block   chan struct{} // when set, Produce waits until closed
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Produce(ctx context.Context) ([]models.RawRecord, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.records, s.err
}

func newTestRunner(t *testing.T, sources ...*fakeSource) *Runner {
	t.Helper()
	d, err := dedup.New(dedup.NewMemoryStore())
	if err != nil {
		t.Fatalf("dedup.New: %v", err)
	}

	bronze := lake.NewBronzeLayer(storage.NewMemoryStore())
	silver := lake.NewSilverLayer(storage.NewMemoryStore(), d)
	gold := lake.NewGoldLayer(storage.NewMemoryStore())

	var srcs []scraper.Source
	for _, s := range sources {
		srcs = append(srcs, s)
	}
	return NewRunner(srcs, bronze, silver, gold, nil)
}

func rawListing(title string, price float64) models.RawRecord {
	return models.RawRecord{
		"title":          title,
		"price":          price,
		"source_url":     "https://example.tn/annonce/" + strings.ToLower(title),
		"source_website": "tayara",
	}
}

func TestRunFullChain(t *testing.T) {
	source := &fakeSource{
		name: "tayara",
		records: []models.RawRecord{
			rawListing("A", 100000),
			rawListing("A", 100000), // duplicate
			{"title": "no url"},     // invalid
			rawListing("B", 250000),
		},
	}
	runner := newTestRunner(t, source)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Sources) != 1 {
		t.Fatalf("sources: got %d, want 1", len(result.Sources))
	}
	sr := result.Sources[0]
	if sr.Error != "" {
		t.Fatalf("source error: %s", sr.Error)
	}
	if sr.Scraped != 4 || sr.Cleaned != 2 || sr.DuplicatesRemoved != 1 || sr.InvalidRecords != 1 {
		t.Errorf("counters: %+v", sr)
	}
	if !strings.HasPrefix(sr.BronzeBatch, "tayara_") {
		t.Errorf("bronze batch name: %q", sr.BronzeBatch)
	}
	if !strings.HasSuffix(sr.SilverBatch, "_silver.json") {
		t.Errorf("silver batch name: %q", sr.SilverBatch)
	}
	if !strings.HasSuffix(sr.GoldBatch, "_gold.json") {
		t.Errorf("gold batch name: %q", sr.GoldBatch)
	}
	if !result.AnalyticsWritten {
		t.Error("analytics should be written")
	}
	if result.TotalScraped != 4 || result.TotalCleaned != 2 {
		t.Errorf("totals: %+v", result)
	}

	if last := runner.LastRun(); last == nil || last.TotalCleaned != 2 {
		t.Errorf("LastRun: %+v", last)
	}
}

func TestRunSourceFailureDoesNotStopOthers(t *testing.T) {
	broken := &fakeSource{name: "mubawab", err: errors.New("blocked by waf")}
	healthy := &fakeSource{name: "tayara", records: []models.RawRecord{rawListing("A", 100000)}}
	runner := newTestRunner(t, broken, healthy)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Sources[0].Error == "" {
		t.Error("broken source should carry its error")
	}
	if result.Sources[1].Error != "" || result.Sources[1].Cleaned != 1 {
		t.Errorf("healthy source: %+v", result.Sources[1])
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	gate := make(chan struct{})
	slow := &fakeSource{name: "tayara", block: gate}
	runner := newTestRunner(t, slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(context.Background())
	}()

	// wait for the first run to take the slot
	deadline := time.After(2 * time.Second)
	for !runner.Running() {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := runner.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("got %v, want ErrAlreadyRunning", err)
	}

	close(gate)
	<-done
	if runner.Running() {
		t.Error("runner should be idle after the run finishes")
	}
}

func TestRunIdempotentAcrossRuns(t *testing.T) {
	source := &fakeSource{name: "tayara", records: []models.RawRecord{rawListing("A", 100000)}}
	runner := newTestRunner(t, source)

	first, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.TotalCleaned != 1 {
		t.Fatalf("first run cleaned: got %d, want 1", first.TotalCleaned)
	}

	second, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.TotalCleaned != 0 {
		t.Errorf("second run cleaned: got %d, want 0", second.TotalCleaned)
	}
	if second.Sources[0].DuplicatesRemoved != 1 {
		t.Errorf("second run duplicates: got %d, want 1", second.Sources[0].DuplicatesRemoved)
	}
}
