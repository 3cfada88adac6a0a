package scale

// Tuple2 is an ordered pair. Tuples encode their members in order with no
// framing.
type Tuple2[A, B any] struct {
	A A
	B B
}

type Tuple3[A, B, C any] struct {
	A A
	B B
	C C
}

type Tuple4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

type tuple2Codec[A, B any] struct {
	a Codec[A]
	b Codec[B]
}

func Tuple2Of[A, B any](a Codec[A], b Codec[B]) Codec[Tuple2[A, B]] {
	return tuple2Codec[A, B]{a, b}
}

func (c tuple2Codec[A, B]) Encode(w *Writer, v Tuple2[A, B]) {
	c.a.Encode(w, v.A)
	c.b.Encode(w, v.B)
}

func (c tuple2Codec[A, B]) Decode(r *Reader) (v Tuple2[A, B], err error) {
	if v.A, err = c.a.Decode(r); err != nil {
		return v, Annotate(err, elementStep(0))
	}
	if v.B, err = c.b.Decode(r); err != nil {
		return v, Annotate(err, elementStep(1))
	}
	return v, nil
}

func (c tuple2Codec[A, B]) MaxEncodedLen() Bound {
	return SumBounds(c.a.MaxEncodedLen(), c.b.MaxEncodedLen())
}

func (c tuple2Codec[A, B]) MinEncodedLen() int {
	return c.a.MinEncodedLen() + c.b.MinEncodedLen()
}

type tuple3Codec[A, B, C any] struct {
	a Codec[A]
	b Codec[B]
	c Codec[C]
}

func Tuple3Of[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Codec[Tuple3[A, B, C]] {
	return tuple3Codec[A, B, C]{a, b, c}
}

func (c tuple3Codec[A, B, C]) Encode(w *Writer, v Tuple3[A, B, C]) {
	c.a.Encode(w, v.A)
	c.b.Encode(w, v.B)
	c.c.Encode(w, v.C)
}

func (c tuple3Codec[A, B, C]) Decode(r *Reader) (v Tuple3[A, B, C], err error) {
	if v.A, err = c.a.Decode(r); err != nil {
		return v, Annotate(err, elementStep(0))
	}
	if v.B, err = c.b.Decode(r); err != nil {
		return v, Annotate(err, elementStep(1))
	}
	if v.C, err = c.c.Decode(r); err != nil {
		return v, Annotate(err, elementStep(2))
	}
	return v, nil
}

func (c tuple3Codec[A, B, C]) MaxEncodedLen() Bound {
	return SumBounds(c.a.MaxEncodedLen(), c.b.MaxEncodedLen(), c.c.MaxEncodedLen())
}

func (c tuple3Codec[A, B, C]) MinEncodedLen() int {
	return c.a.MinEncodedLen() + c.b.MinEncodedLen() + c.c.MinEncodedLen()
}

type tuple4Codec[A, B, C, D any] struct {
	a Codec[A]
	b Codec[B]
	c Codec[C]
	d Codec[D]
}

func Tuple4Of[A, B, C, D any](a Codec[A], b Codec[B], c Codec[C], d Codec[D]) Codec[Tuple4[A, B, C, D]] {
	return tuple4Codec[A, B, C, D]{a, b, c, d}
}

func (c tuple4Codec[A, B, C, D]) Encode(w *Writer, v Tuple4[A, B, C, D]) {
	c.a.Encode(w, v.A)
	c.b.Encode(w, v.B)
	c.c.Encode(w, v.C)
	c.d.Encode(w, v.D)
}

func (c tuple4Codec[A, B, C, D]) Decode(r *Reader) (v Tuple4[A, B, C, D], err error) {
	if v.A, err = c.a.Decode(r); err != nil {
		return v, Annotate(err, elementStep(0))
	}
	if v.B, err = c.b.Decode(r); err != nil {
		return v, Annotate(err, elementStep(1))
	}
	if v.C, err = c.c.Decode(r); err != nil {
		return v, Annotate(err, elementStep(2))
	}
	if v.D, err = c.d.Decode(r); err != nil {
		return v, Annotate(err, elementStep(3))
	}
	return v, nil
}

func (c tuple4Codec[A, B, C, D]) MaxEncodedLen() Bound {
	return SumBounds(c.a.MaxEncodedLen(), c.b.MaxEncodedLen(), c.c.MaxEncodedLen(), c.d.MaxEncodedLen())
}

func (c tuple4Codec[A, B, C, D]) MinEncodedLen() int {
	return c.a.MinEncodedLen() + c.b.MinEncodedLen() + c.c.MinEncodedLen() + c.d.MinEncodedLen()
}
