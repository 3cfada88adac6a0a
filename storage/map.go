package storage

import (
	"errors"
	"fmt"

	"github.com/oy3o/scale"
)

// Map stores values of type V under keys of type K. The stored key is
// prefix || hasher(encoded key), so any scale.EncodeLike[K] addresses the
// same entry as the K it encodes like.
type Map[K, V any] struct {
	db     KV
	prefix []byte
	hasher Hasher
	value  scale.Codec[V]
}

// NewMap returns a Map over db. prefix separates it from other maps in the
// same store.
func NewMap[K, V any](db KV, prefix []byte, hasher Hasher, value scale.Codec[V]) *Map[K, V] {
	return &Map[K, V]{
		db:     db,
		prefix: append([]byte(nil), prefix...),
		hasher: hasher,
		value:  value,
	}
}

// StorageKey returns the raw key that k is stored under.
func (m *Map[K, V]) StorageKey(k scale.EncodeLike[K]) ([]byte, error) {
	encoded, err := scale.EncodeValue(k)
	if err != nil {
		return nil, fmt.Errorf("storage: encode key: %w", err)
	}
	return append(append([]byte(nil), m.prefix...), m.hasher.Hash(encoded)...), nil
}

// Get returns the value stored under k, or ErrNotFound.
func (m *Map[K, V]) Get(k scale.EncodeLike[K]) (V, error) {
	var zero V
	key, err := m.StorageKey(k)
	if err != nil {
		return zero, err
	}
	raw, err := m.db.Get(key)
	if err != nil {
		return zero, err
	}
	r := scale.NewSliceReader(raw)
	if n, ok := m.value.MaxEncodedLen().Len(); ok {
		r = r.WithLimit(int64(n))
	}
	v, err := scale.DecodeWith(r, m.value)
	if err != nil {
		return zero, fmt.Errorf("storage: decode value: %w", err)
	}
	return v, nil
}

// TryGet is Get with absence reported as a None value.
func (m *Map[K, V]) TryGet(k scale.EncodeLike[K]) (scale.Option[V], error) {
	v, err := m.Get(k)
	switch {
	case errors.Is(err, ErrNotFound):
		return scale.None[V](), nil
	case err != nil:
		return scale.None[V](), err
	}
	return scale.Some(v), nil
}

// Insert stores v under k, replacing any previous value.
func (m *Map[K, V]) Insert(k scale.EncodeLike[K], v V) error {
	key, err := m.StorageKey(k)
	if err != nil {
		return err
	}
	data, err := scale.Encode(m.value, v)
	if err != nil {
		return fmt.Errorf("storage: encode value: %w", err)
	}
	return m.db.Put(key, data)
}

// Remove deletes the entry of k. Removing an absent key is not an error.
func (m *Map[K, V]) Remove(k scale.EncodeLike[K]) error {
	key, err := m.StorageKey(k)
	if err != nil {
		return err
	}
	return m.db.Delete(key)
}

// Contains reports whether k has an entry.
func (m *Map[K, V]) Contains(k scale.EncodeLike[K]) (bool, error) {
	key, err := m.StorageKey(k)
	if err != nil {
		return false, err
	}
	return m.db.Has(key)
}

// Mutate applies f to the current value of k and stores the result. f
// receives None when the key is absent; returning None removes the entry.
// Concurrent writers of the same key must synchronize themselves.
func (m *Map[K, V]) Mutate(k scale.EncodeLike[K], f func(scale.Option[V]) scale.Option[V]) error {
	cur, err := m.TryGet(k)
	if err != nil {
		return err
	}
	next := f(cur)
	if v, ok := next.Get(); ok {
		return m.Insert(k, v)
	}
	return m.Remove(k)
}
