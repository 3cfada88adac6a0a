package scale

// Result holds either a success value or an error value. On the wire it is
// a tag byte, 0x00 for ok or 0x01 for err, followed by the payload.
type Result[T, E any] struct {
	Ok    T
	Err   E
	IsErr bool
}

// Ok returns a successful Result.
func Ok[T, E any](v T) Result[T, E] { return Result[T, E]{Ok: v} }

// Err returns a failed Result.
func Err[T, E any](e E) Result[T, E] { return Result[T, E]{Err: e, IsErr: true} }

type resultCodec[T, E any] struct {
	ok  Codec[T]
	err Codec[E]
}

// ResultOf returns the Codec of a Result with the given payload codecs.
func ResultOf[T, E any](ok Codec[T], err Codec[E]) Codec[Result[T, E]] {
	return resultCodec[T, E]{ok: ok, err: err}
}

func (c resultCodec[T, E]) Encode(w *Writer, v Result[T, E]) {
	if v.IsErr {
		_ = w.WriteByte(1)
		c.err.Encode(w, v.Err)
		return
	}
	_ = w.WriteByte(0)
	c.ok.Encode(w, v.Ok)
}

func (c resultCodec[T, E]) Decode(r *Reader) (Result[T, E], error) {
	b, err := r.ReadByte()
	if err != nil {
		return Result[T, E]{}, err
	}
	switch b {
	case 0:
		v, err := c.ok.Decode(r)
		if err != nil {
			return Result[T, E]{}, Annotate(err, variantStep("Ok", "Result"))
		}
		return Ok[T, E](v), nil
	case 1:
		e, err := c.err.Decode(r)
		if err != nil {
			return Result[T, E]{}, Annotate(err, variantStep("Err", "Result"))
		}
		return Err[T](e), nil
	}
	return Result[T, E]{}, r.Fail(detailf(ErrInvalidResultTag, "0x%02x", b))
}

func (c resultCodec[T, E]) MaxEncodedLen() Bound {
	return EnumBound(c.ok.MaxEncodedLen(), c.err.MaxEncodedLen())
}

func (c resultCodec[T, E]) MinEncodedLen() int {
	return 1 + min(c.ok.MinEncodedLen(), c.err.MinEncodedLen())
}
