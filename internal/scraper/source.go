// Package scraper collects raw listing records from Tunisian real
// estate portals. Each portal implements Source; records are handed to
// the bronze layer untouched so the lake keeps the original payloads.
package scraper

import (
	"context"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

// Source produces raw records from one listing portal.
type Source interface {
	// Name identifies the portal (tayara, tunisie_annonce, mubawab).
	// It becomes the source tag on bronze batches.
	Name() string

	// Produce fetches listing pages and returns raw records. Partial
	// results with a nil error are normal: pages that fail to parse
	// are logged and skipped.
	Produce(ctx context.Context) ([]models.RawRecord, error)
}

// stampRecord fills the fields every source sets the same way.
func stampRecord(record models.RawRecord, source, url string) {
	record["source_website"] = source
	record["source_url"] = url
	record["scrape_timestamp"] = time.Now().UTC().Format(time.RFC3339)
}
