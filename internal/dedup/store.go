package dedup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogStore is the production fingerprint store: one hash per line in an
// append-only file that is never rewritten. Append syncs to disk before
// returning.
type LogStore struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// NewLogStore opens (or creates) the log at path for appending.
func NewLogStore(path string) (*LogStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("dedup: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dedup: open log %q: %w", path, err)
	}
	return &LogStore{path: path, file: f}, nil
}

// Load reads the whole log. Blank lines (a torn final write after a
// crash) are skipped.
func (s *LogStore) Load() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("dedup: read log %q: %w", s.path, err)
	}
	defer f.Close()

	var hashes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			hashes = append(hashes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dedup: scan log %q: %w", s.path, err)
	}
	return hashes, nil
}

// Append writes one fingerprint line and fsyncs. Durability here is what
// makes the at-most-once uniqueness guarantee hold across crashes.
func (s *LogStore) Append(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.file, hash); err != nil {
		return err
	}
	return s.file.Sync()
}

// Close releases the underlying file handle.
func (s *LogStore) Close() error {
	return s.file.Close()
}

// MemoryStore is a volatile fingerprint store for tests and dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	hashes []string

	// AppendErr, when set, is returned by Append so tests can assert
	// the durability ordering of the deduplicator.
	AppendErr error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.hashes))
	copy(out, s.hashes)
	return out, nil
}

func (s *MemoryStore) Append(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.hashes = append(s.hashes, hash)
	return nil
}
