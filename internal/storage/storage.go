package storage

import "errors"

// ErrNotFound is returned when a named blob does not exist in the store.
var ErrNotFound = errors.New("storage: blob not found")

// BlobStore is the named-blob capability the data lake is built on.
// Local filesystem and object storage are interchangeable behind it.
//
// Write must be atomic from a reader's perspective: List/Read never
// observe a partially written blob.
type BlobStore interface {
	Write(name string, data []byte) error
	Read(name string) ([]byte, error)
	List(prefix string) ([]string, error)
}
