// Package leveldb is a storage.KV backed by goleveldb.
package leveldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/oy3o/scale/storage"
)

// Name is the name of this store in configuration.
const Name = "leveldb"

var _ storage.KV = (*Database)(nil)

// Database wraps a goleveldb handle.
type Database struct {
	db *leveldb.DB
}

// New opens or creates the database in dir.
func New(dir string) (*Database, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("leveldb: open %s: %w", dir, err)
	}
	return &Database{db: db}, nil
}

// NewMemory opens a database that lives in memory only.
func NewMemory() (*Database, error) {
	db, err := leveldb.Open(lvstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	has, err := db.db.Has(key, nil)
	return has, updateError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	return value, updateError(err)
}

func (db *Database) Put(key, value []byte) error {
	return updateError(db.db.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return updateError(db.db.Delete(key, nil))
}

func (db *Database) Close() error {
	return updateError(db.db.Close())
}

// updateError converts goleveldb errors to the storage sentinels.
func updateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrClosed):
		return storage.ErrClosed
	case errors.Is(err, leveldb.ErrNotFound):
		return storage.ErrNotFound
	}
	return err
}
