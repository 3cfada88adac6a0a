package scale

type boolCodec struct{}

func (boolCodec) Encode(w *Writer, v bool) { w.WriteBool(v) }

func (boolCodec) Decode(r *Reader) (v bool, err error) {
	r.ReadBool(&v)
	return v, r.Err()
}

func (boolCodec) MaxEncodedLen() Bound { return Fixed(1) }
func (boolCodec) MinEncodedLen() int   { return 1 }

// fixedInt is the little-endian encoding of a fixed-width integer type.
type fixedInt[T any] struct {
	size  int
	write func(*Writer, T)
	read  func(*Reader, *T)
}

func (c fixedInt[T]) Encode(w *Writer, v T) { c.write(w, v) }

func (c fixedInt[T]) Decode(r *Reader) (T, error) {
	var v T
	c.read(r, &v)
	return v, r.Err()
}

func (c fixedInt[T]) MaxEncodedLen() Bound { return Fixed(c.size) }
func (c fixedInt[T]) MinEncodedLen() int   { return c.size }

var (
	Bool Codec[bool]   = boolCodec{}
	U8   Codec[uint8]  = fixedInt[uint8]{1, (*Writer).WriteUint8, (*Reader).ReadUint8}
	U16  Codec[uint16] = fixedInt[uint16]{2, (*Writer).WriteUint16, (*Reader).ReadUint16}
	U32  Codec[uint32] = fixedInt[uint32]{4, (*Writer).WriteUint32, (*Reader).ReadUint32}
	U64  Codec[uint64] = fixedInt[uint64]{8, (*Writer).WriteUint64, (*Reader).ReadUint64}
	I8   Codec[int8]   = fixedInt[int8]{1, (*Writer).WriteInt8, (*Reader).ReadInt8}
	I16  Codec[int16]  = fixedInt[int16]{2, (*Writer).WriteInt16, (*Reader).ReadInt16}
	I32  Codec[int32]  = fixedInt[int32]{4, (*Writer).WriteInt32, (*Reader).ReadInt32}
	I64  Codec[int64]  = fixedInt[int64]{8, (*Writer).WriteInt64, (*Reader).ReadInt64}

	U128 = Self[Uint128]()
	I128 = Self[Int128]()
)

// fixedBytes copies exactly n raw bytes, without a length prefix.
type fixedBytes struct{ n int }

// FixedBytes returns the Codec of a byte string whose length n is part of
// the type. Encoding a slice of another length latches ErrArrayLength.
func FixedBytes(n int) Codec[[]byte] { return fixedBytes{n} }

func (c fixedBytes) Encode(w *Writer, v []byte) {
	if len(v) != c.n {
		w.Fail(detailf(ErrArrayLength, "got %d bytes, want %d", len(v), c.n))
		return
	}
	w.WriteBytes(v)
}

func (c fixedBytes) Decode(r *Reader) ([]byte, error) {
	buf := make([]byte, c.n)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c fixedBytes) MaxEncodedLen() Bound { return Fixed(c.n) }
func (c fixedBytes) MinEncodedLen() int   { return c.n }

// blobCodec is a length-prefixed byte string. No validation of the content
// (such as UTF-8) is performed.
type blobCodec[T ~string | ~[]byte] struct{}

func (blobCodec[T]) Encode(w *Writer, v T) {
	w.WriteLen(len(v))
	switch b := any(v).(type) {
	case string:
		_, _ = w.WriteString(b)
	default:
		w.WriteBytes([]byte(v))
	}
}

func (blobCodec[T]) Decode(r *Reader) (T, error) {
	n, err := r.ReadLen(1)
	if err != nil {
		var zero T
		return zero, err
	}
	buf, err := r.ReadBytes(n)
	return T(buf), err
}

func (blobCodec[T]) MaxEncodedLen() Bound { return Unbounded }
func (blobCodec[T]) MinEncodedLen() int   { return 1 }

var (
	// Bytes is a length-prefixed byte blob.
	Bytes Codec[[]byte] = blobCodec[[]byte]{}
	// String is a length-prefixed string. The bytes are not checked for UTF-8.
	String Codec[string] = blobCodec[string]{}
)

// emptyCodec writes nothing and decodes the zero value.
type emptyCodec[T any] struct{}

// Empty returns the zero-byte Codec of a unit type, such as a variant that
// carries no data.
func Empty[T any]() Codec[T] { return emptyCodec[T]{} }

func (emptyCodec[T]) Encode(*Writer, T) {}

func (emptyCodec[T]) Decode(r *Reader) (T, error) {
	var zero T
	return zero, r.Err()
}

func (emptyCodec[T]) MaxEncodedLen() Bound { return Fixed(0) }
func (emptyCodec[T]) MinEncodedLen() int   { return 0 }
