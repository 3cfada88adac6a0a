package memdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/scale/storage"
)

func TestDatabase(t *testing.T) {
	db := New()

	key := []byte("k")
	value := []byte("v")
	require.NoError(t, db.Put(key, value))
	value[0] = 'x'

	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	got[0] = 'y'
	again, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), again)

	has, err := db.Has(key)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, 1, db.Len())

	require.NoError(t, db.Delete(key))
	_, err = db.Get(key)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Close(), storage.ErrClosed)
	assert.ErrorIs(t, db.Put(key, value), storage.ErrClosed)
	_, err = db.Has(key)
	assert.ErrorIs(t, err, storage.ErrClosed)
}
