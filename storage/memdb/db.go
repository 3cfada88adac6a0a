// Package memdb is an ephemeral storage.KV for tests and tools.
package memdb

import (
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/oy3o/scale/storage"
)

// Name is the name of this store in configuration.
const Name = "memdb"

var _ storage.KV = (*Database)(nil)

// Database keeps every entry in a concurrent map.
type Database struct {
	closed atomic.Bool
	db     *xsync.Map[string, []byte]
}

// New returns an empty Database.
func New() *Database {
	return &Database{db: xsync.NewMap[string, []byte]()}
}

func (db *Database) Has(key []byte) (bool, error) {
	if db.closed.Load() {
		return false, storage.ErrClosed
	}
	_, ok := db.db.Load(string(key))
	return ok, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	if db.closed.Load() {
		return nil, storage.ErrClosed
	}
	if entry, ok := db.db.Load(string(key)); ok {
		return slices.Clone(entry), nil
	}
	return nil, storage.ErrNotFound
}

func (db *Database) Put(key, value []byte) error {
	if db.closed.Load() {
		return storage.ErrClosed
	}
	db.db.Store(string(key), slices.Clone(value))
	return nil
}

func (db *Database) Delete(key []byte) error {
	if db.closed.Load() {
		return storage.ErrClosed
	}
	db.db.Delete(string(key))
	return nil
}

// Len returns the number of entries.
func (db *Database) Len() int { return db.db.Size() }

func (db *Database) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return storage.ErrClosed
	}
	db.db.Clear()
	return nil
}
