package scale

import (
	"sync"
	"sync/atomic"
)

const (
	minUnknown   = -1
	minResolving = -2
)

// recursiveCodec defers to a codec built on first use, so that a layout may
// refer to itself.
type recursiveCodec[T any] struct {
	build func() Codec[T]
	once  sync.Once
	inner Codec[T]
	min   atomic.Int64
}

// Recursive returns a Codec that calls build on first use. It lets a type's
// layout mention the type itself:
//
//	var tree scale.Codec[Tree]
//	tree = scale.Recursive(func() scale.Codec[Tree] {
//		return scale.StructOf("Tree",
//			scale.FieldOf("Children", func(t *Tree) *[]Tree { return &t.Children }, scale.SliceOf(tree)))
//	})
//
// Recursive types are always Unbounded.
func Recursive[T any](build func() Codec[T]) Codec[T] {
	c := &recursiveCodec[T]{build: build}
	c.min.Store(minUnknown)
	return c
}

func (c *recursiveCodec[T]) codec() Codec[T] {
	c.once.Do(func() { c.inner = c.build() })
	return c.inner
}

func (c *recursiveCodec[T]) Encode(w *Writer, v T) { c.codec().Encode(w, v) }
func (c *recursiveCodec[T]) MaxEncodedLen() Bound  { return Unbounded }

// Decode counts one level of nesting against the reader's depth limit.
func (c *recursiveCodec[T]) Decode(r *Reader) (T, error) {
	if err := r.enter(); err != nil {
		var zero T
		return zero, err
	}
	defer r.leave()
	return c.codec().Decode(r)
}

// MinEncodedLen is computed once. A cycle back into the same codec while
// computing counts as zero bytes.
func (c *recursiveCodec[T]) MinEncodedLen() int {
	if n := c.min.Load(); n >= 0 {
		return int(n)
	}
	if !c.min.CompareAndSwap(minUnknown, minResolving) {
		return 0
	}
	n := c.codec().MinEncodedLen()
	c.min.Store(int64(n))
	return n
}
