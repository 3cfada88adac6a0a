// Package storage keeps typed values in a byte-oriented key-value store.
// Keys are the canonical encoding of a key type, optionally hashed, so any
// value that encodes like the key type addresses the same entry.
package storage

import "errors"

var (
	// ErrNotFound is returned when a key is absent.
	ErrNotFound = errors.New("storage: not found")

	// ErrClosed is returned by every operation on a closed store.
	ErrClosed = errors.New("storage: closed")
)

// KV is the minimal store a Map needs. Implementations must be safe for
// concurrent use and must not retain the slices they are given.
type KV interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Close() error
}
