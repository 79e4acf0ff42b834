// Package dedup implements content-hash based deduplication for scraped
// listings. The fingerprint set survives process restarts through an
// append-only log that is the sole source of truth for the in-memory set.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"
)

// fingerprintFields are the key descriptive fields the fingerprint is
// computed over, in fixed order. Two records agreeing on all five are
// the same listing regardless of any other difference. This is a
// deliberate recall/precision trade-off: cheap and stable across runs,
// but blind to re-listings that changed only non-key fields.
var fingerprintFields = [5]string{"title", "price", "size", "address", "neighborhood"}

// Fingerprint computes the stable content hash of a raw record: an MD5
// digest over the pipe-joined string forms of the five key fields, ""
// standing in for missing values.
func Fingerprint(raw models.RawRecord) string {
	parts := make([]string, 0, len(fingerprintFields))
	for _, field := range fingerprintFields {
		parts = append(parts, raw.StringField(field))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Store persists accepted fingerprints. Append must be durable before it
// returns: the deduplicator treats a returned Append as the point where
// the record became unique, so a crash can lose a record but never let
// the same fingerprint be accepted twice.
type Store interface {
	Load() ([]string, error)
	Append(hash string) error
}

// Deduplicator tracks previously-seen fingerprints across runs. It is
// the one piece of shared mutable state in the pipeline; concurrent
// runs over overlapping sources need external serialization.
type Deduplicator struct {
	store Store
	seen  map[string]struct{}
}

// New loads the full fingerprint set from the store before any record
// can be checked.
func New(store Store) (*Deduplicator, error) {
	hashes, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("dedup: load fingerprints: %w", err)
	}

	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		seen[h] = struct{}{}
	}
	return &Deduplicator{store: store, seen: seen}, nil
}

// Seen reports whether the fingerprint was already accepted.
func (d *Deduplicator) Seen(hash string) bool {
	_, ok := d.seen[hash]
	return ok
}

// MarkSeen records a novel fingerprint. The log append happens before
// the in-memory set is updated, so the record only counts as durably
// unique once the store confirmed the write.
func (d *Deduplicator) MarkSeen(hash string) error {
	if err := d.store.Append(hash); err != nil {
		return fmt.Errorf("dedup: append fingerprint: %w", err)
	}
	d.seen[hash] = struct{}{}
	return nil
}

// Size returns the number of known fingerprints.
func (d *Deduplicator) Size() int {
	return len(d.seen)
}
