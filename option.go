package scale

// Option is a value that may be absent. On the wire it is a tag byte, 0x00
// for none or 0x01 followed by the value.
type Option[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Option.
func Some[T any](v T) Option[T] { return Option[T]{Value: v, Valid: true} }

// None returns an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.Value, o.Valid }

// readOptionTag reads a 0/1 tag byte.
func readOptionTag(r *Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, r.Fail(detailf(ErrInvalidOptionTag, "0x%02x", b))
}

type optionCodec[T any] struct{ inner Codec[T] }

// OptionOf returns the Codec of an optional c.
func OptionOf[T any](c Codec[T]) Codec[Option[T]] { return optionCodec[T]{c} }

func (c optionCodec[T]) Encode(w *Writer, v Option[T]) {
	if !v.Valid {
		_ = w.WriteByte(0)
		return
	}
	_ = w.WriteByte(1)
	c.inner.Encode(w, v.Value)
}

func (c optionCodec[T]) Decode(r *Reader) (Option[T], error) {
	ok, err := readOptionTag(r)
	if err != nil || !ok {
		return Option[T]{}, err
	}
	v, err := c.inner.Decode(r)
	if err != nil {
		return Option[T]{}, err
	}
	return Some(v), nil
}

func (c optionCodec[T]) MaxEncodedLen() Bound { return Fixed(1).Add(c.inner.MaxEncodedLen()) }
func (c optionCodec[T]) MinEncodedLen() int   { return 1 }

type pointerCodec[T any] struct{ inner Codec[T] }

// PointerOf encodes a nil pointer as none and any other pointer as some of
// the pointee. It shares the wire format of OptionOf.
func PointerOf[T any](c Codec[T]) Codec[*T] { return pointerCodec[T]{c} }

func (c pointerCodec[T]) Encode(w *Writer, v *T) {
	if v == nil {
		_ = w.WriteByte(0)
		return
	}
	_ = w.WriteByte(1)
	c.inner.Encode(w, *v)
}

func (c pointerCodec[T]) Decode(r *Reader) (*T, error) {
	ok, err := readOptionTag(r)
	if err != nil || !ok {
		return nil, err
	}
	v, err := c.inner.Decode(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c pointerCodec[T]) MaxEncodedLen() Bound { return Fixed(1).Add(c.inner.MaxEncodedLen()) }
func (c pointerCodec[T]) MinEncodedLen() int   { return 1 }

type optionBoolCodec struct{}

// OptionBool packs an optional boolean into one byte: 0 for none, 1 for
// true and 2 for false.
var OptionBool Codec[Option[bool]] = optionBoolCodec{}

func (optionBoolCodec) Encode(w *Writer, v Option[bool]) {
	switch {
	case !v.Valid:
		_ = w.WriteByte(0)
	case v.Value:
		_ = w.WriteByte(1)
	default:
		_ = w.WriteByte(2)
	}
}

func (optionBoolCodec) Decode(r *Reader) (Option[bool], error) {
	b, err := r.ReadByte()
	if err != nil {
		return Option[bool]{}, err
	}
	switch b {
	case 0:
		return None[bool](), nil
	case 1:
		return Some(true), nil
	case 2:
		return Some(false), nil
	}
	return Option[bool]{}, r.Fail(detailf(ErrInvalidOptionTag, "0x%02x", b))
}

func (optionBoolCodec) MaxEncodedLen() Bound { return Fixed(1) }
func (optionBoolCodec) MinEncodedLen() int   { return 1 }
