// Package scale implements a deterministic, compact binary encoding for
// structured data. Independent encoders produce byte-identical output for
// identical values, and decoders validate every tag and length against the
// remaining input before trusting it, so data from untrusted peers can be
// decoded without panics or unbounded allocation.
//
// There are three ways to describe a type's encoding:
//
//   - typed combinators: Codec[T] values such as U32, SliceOf(String),
//     StructOf(...) and EnumOf(...);
//   - self-coding types implementing Encodable and Decodable;
//   - reflection: Marshal and Unmarshal compile a machine per Go type.
//
// All three produce the same bytes for the same logical value.
package scale

// Encodable is implemented by types that write their own encoding.
// Encoding cannot fail; destination errors are latched by the Writer.
type Encodable interface {
	EncodeTo(w *Writer)
}

// Decodable is implemented by types that read their own encoding.
type Decodable interface {
	DecodeFrom(r *Reader) error
}

// Bounded is implemented by types with a static maximum encoded length.
type Bounded interface {
	MaxEncodedLen() Bound
}

// Codec describes how values of type T are laid out on the wire.
type Codec[T any] interface {
	// Encode appends the encoding of v to w.
	Encode(w *Writer, v T)
	// Decode reads one value, failing on the first malformed byte.
	Decode(r *Reader) (T, error)
	// MaxEncodedLen is the value-independent upper bound of the encoding.
	MaxEncodedLen() Bound
	// MinEncodedLen is the smallest possible encoding, used to reject
	// length prefixes that cannot be satisfied by the remaining input.
	MinEncodedLen() int
}

type minSizer interface {
	MinEncodedLen() int
}

// selfCodec adapts a self-coding type to Codec.
type selfCodec[T any, PT interface {
	*T
	Encodable
	Decodable
}] struct{}

// Self returns the Codec of a type implementing Encodable and Decodable.
// Its bound comes from Bounded when T implements it and is Unbounded
// otherwise.
func Self[T any, PT interface {
	*T
	Encodable
	Decodable
}]() Codec[T] {
	return selfCodec[T, PT]{}
}

func (selfCodec[T, PT]) Encode(w *Writer, v T) { PT(&v).EncodeTo(w) }

func (selfCodec[T, PT]) Decode(r *Reader) (T, error) {
	var v T
	err := r.Decode(PT(&v))
	return v, err
}

func (selfCodec[T, PT]) MaxEncodedLen() Bound {
	var v T
	if b, ok := any(PT(&v)).(Bounded); ok {
		return b.MaxEncodedLen()
	}
	return Unbounded
}

func (selfCodec[T, PT]) MinEncodedLen() int {
	var v T
	if m, ok := any(PT(&v)).(minSizer); ok {
		return m.MinEncodedLen()
	}
	return 0
}
