package scale

import "reflect"

// sliceCodec is a compact element count followed by the elements.
type sliceCodec[T any] struct {
	elem Codec[T]
}

// SliceOf returns the Codec of a variable-length sequence of c.
//
// Decoding checks the declared count against the remaining input before it
// allocates: count elements of at least c.MinEncodedLen() bytes each must
// fit. When the remaining length is unknown the slice grows in chunks of
// about MaxPreallocation bytes as elements actually decode.
func SliceOf[T any](c Codec[T]) Codec[[]T] { return sliceCodec[T]{elem: c} }

func (c sliceCodec[T]) Encode(w *Writer, items []T) {
	w.WriteLen(len(items))
	for _, item := range items {
		if w.err != nil {
			return
		}
		c.elem.Encode(w, item)
	}
}

func (c sliceCodec[T]) Decode(r *Reader) ([]T, error) {
	n, err := r.ReadLen(c.elem.MinEncodedLen())
	if err != nil {
		return nil, err
	}
	return decodeElems(r, c.elem, n, r.Remaining() == UnknownRemaining || c.elem.MinEncodedLen() == 0)
}

func (c sliceCodec[T]) MaxEncodedLen() Bound { return Unbounded }
func (c sliceCodec[T]) MinEncodedLen() int   { return 1 }

// decodeElems reads n elements. With chunked set, capacity is reserved a
// chunk at a time instead of for the whole declared count. Callers chunk
// whenever the count was not checked against the remaining input.
func decodeElems[T any](r *Reader, c Codec[T], n int, chunked bool) ([]T, error) {
	capacity := n
	if chunked {
		capacity = min(n, preallocElems[T]())
	}
	items := make([]T, 0, capacity)
	for i := range n {
		item, err := c.Decode(r)
		if err != nil {
			return nil, Annotate(err, elementStep(i))
		}
		items = append(items, item)
	}
	return items, nil
}

// preallocElems is how many values of T fit in MaxPreallocation bytes.
func preallocElems[T any]() int {
	size := int(reflect.TypeFor[T]().Size())
	if size == 0 {
		return MaxPreallocation
	}
	return max(1, MaxPreallocation/size)
}

// arrayCodec is exactly n elements with no prefix.
type arrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// ArrayOf returns the Codec of a fixed-length array of n elements. Encoding
// a slice of any other length latches ErrArrayLength in the Writer.
func ArrayOf[T any](c Codec[T], n int) Codec[[]T] {
	if n < 0 {
		panic("scale: negative array length")
	}
	return arrayCodec[T]{elem: c, n: n}
}

func (c arrayCodec[T]) Encode(w *Writer, items []T) {
	if len(items) != c.n {
		w.Fail(detailf(ErrArrayLength, "got %d elements, want %d", len(items), c.n))
		return
	}
	for _, item := range items {
		if w.err != nil {
			return
		}
		c.elem.Encode(w, item)
	}
}

func (c arrayCodec[T]) Decode(r *Reader) ([]T, error) {
	if err := r.CheckLen(uint64(c.n), c.elem.MinEncodedLen()); err != nil {
		return nil, err
	}
	return decodeElems(r, c.elem, c.n, r.Remaining() == UnknownRemaining || c.elem.MinEncodedLen() == 0)
}

func (c arrayCodec[T]) MaxEncodedLen() Bound { return c.elem.MaxEncodedLen().Mul(c.n) }
func (c arrayCodec[T]) MinEncodedLen() int   { return c.n * c.elem.MinEncodedLen() }
