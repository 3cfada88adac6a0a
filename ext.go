//go:build scale_ext

package scale

import (
	"bytes"
	"math"
	"slices"
)

type floatCodec[T float32 | float64] struct{}

// IEEE 754 little-endian floats. NaN payloads are written as given, so two
// NaNs may encode differently.
var (
	F32 Codec[float32] = floatCodec[float32]{}
	F64 Codec[float64] = floatCodec[float64]{}
)

func (floatCodec[T]) size() int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 4
	}
	return 8
}

func (c floatCodec[T]) Encode(w *Writer, v T) {
	if c.size() == 4 {
		w.WriteUint32(math.Float32bits(float32(v)))
		return
	}
	w.WriteUint64(math.Float64bits(float64(v)))
}

func (c floatCodec[T]) Decode(r *Reader) (T, error) {
	if c.size() == 4 {
		var u uint32
		r.ReadUint32(&u)
		return T(math.Float32frombits(u)), r.Err()
	}
	var u uint64
	r.ReadUint64(&u)
	return T(math.Float64frombits(u)), r.Err()
}

func (c floatCodec[T]) MaxEncodedLen() Bound { return Fixed(c.size()) }
func (c floatCodec[T]) MinEncodedLen() int   { return c.size() }

type mapCodec[K comparable, V any] struct {
	key Codec[K]
	val Codec[V]
}

// MapOf returns the Codec of a map: a compact count and the pairs in
// ascending order of encoded key. Decoding accepts any order; a repeated
// key keeps the last value.
func MapOf[K comparable, V any](k Codec[K], v Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key: k, val: v}
}

func (c mapCodec[K, V]) Encode(w *Writer, m map[K]V) {
	type pair struct {
		key []byte
		val V
	}
	pairs := make([]pair, 0, len(m))
	for k, v := range m {
		key, err := Encode(c.key, k)
		if err != nil {
			w.Fail(err)
			return
		}
		pairs = append(pairs, pair{key, v})
	}
	slices.SortFunc(pairs, func(a, b pair) int { return bytes.Compare(a.key, b.key) })

	w.WriteLen(len(pairs))
	for _, p := range pairs {
		if w.err != nil {
			return
		}
		w.WriteBytes(p.key)
		c.val.Encode(w, p.val)
	}
}

func (c mapCodec[K, V]) Decode(r *Reader) (map[K]V, error) {
	n, err := r.ReadLen(c.key.MinEncodedLen() + c.val.MinEncodedLen())
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, min(n, MaxPreallocation))
	for i := range n {
		k, err := c.key.Decode(r)
		if err != nil {
			return nil, Annotate(err, elementStep(i))
		}
		v, err := c.val.Decode(r)
		if err != nil {
			return nil, Annotate(err, elementStep(i))
		}
		out[k] = v
	}
	return out, nil
}

func (mapCodec[K, V]) MaxEncodedLen() Bound { return Unbounded }
func (mapCodec[K, V]) MinEncodedLen() int   { return 1 }
