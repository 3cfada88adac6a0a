package scale

// EncodeLike marks a type whose encoding is byte-identical to the encoding
// of T for the same logical value. APIs keyed by encoded T, such as storage
// maps, accept any EncodeLike[T] so callers need not convert first.
//
// The interface is sealed: a type joins it by embedding Like[T]. A Go type
// can be equivalent to at most one T.
type EncodeLike[T any] interface {
	Encodable
	encodeLike(T)
}

// Like is embedded to declare that the enclosing type encodes like T.
// It has no size and no encoding of its own.
type Like[T any] struct{}

func (Like[T]) encodeLike(T) {}

// EncodeAs writes v where a T is expected.
func EncodeAs[T any](w *Writer, v EncodeLike[T]) { w.Encode(v) }

// Ref is a borrowed view of a T that encodes exactly like the T it points to.
type Ref[T Encodable] struct {
	Like[T]
	V *T
}

// RefOf returns a Ref to v.
func RefOf[T Encodable](v *T) Ref[T] { return Ref[T]{V: v} }

// EncodeTo encodes the target. A nil V latches ErrNilRef.
func (r Ref[T]) EncodeTo(w *Writer) {
	if r.V == nil {
		w.Fail(ErrNilRef)
		return
	}
	(*r.V).EncodeTo(w)
}

// Coded pairs a value with its Codec so that any T can be passed where an
// EncodeLike[T] is expected.
type Coded[T any] struct {
	Like[T]
	c Codec[T]
	v T
}

// With returns v as an EncodeLike[T] encoded by c.
func With[T any](c Codec[T], v T) Coded[T] { return Coded[T]{c: c, v: v} }

func (c Coded[T]) EncodeTo(w *Writer) { c.c.Encode(w, c.v) }

// ByteSlice is an owned byte blob: a compact length and the raw bytes.
type ByteSlice []byte

// Str is a string that encodes like the ByteSlice holding its bytes.
type Str string

var (
	_ EncodeLike[ByteSlice] = ByteSlice(nil)
	_ EncodeLike[ByteSlice] = Str("")
	_ EncodeLike[Uint128]   = Uint128{}
	_ EncodeLike[Int128]    = Int128{}
	_ EncodeLike[BitVec]    = BitVec{}
	_ EncodeLike[Uint128]   = Ref[Uint128]{}
	_ Decodable             = (*ByteSlice)(nil)
	_ Decodable             = (*Str)(nil)
)

func (b ByteSlice) EncodeTo(w *Writer) { Bytes.Encode(w, b) }
func (ByteSlice) encodeLike(ByteSlice) {}

func (b *ByteSlice) DecodeFrom(r *Reader) error {
	v, err := Bytes.Decode(r)
	*b = v
	return err
}

func (ByteSlice) MaxEncodedLen() Bound { return Unbounded }
func (ByteSlice) MinEncodedLen() int   { return 1 }

func (s Str) EncodeTo(w *Writer) { String.Encode(w, string(s)) }
func (Str) encodeLike(ByteSlice) {}

func (s *Str) DecodeFrom(r *Reader) error {
	v, err := String.Decode(r)
	*s = Str(v)
	return err
}

func (Str) MaxEncodedLen() Bound { return Unbounded }
func (Str) MinEncodedLen() int   { return 1 }

func (Uint128) encodeLike(Uint128) {}
func (Int128) encodeLike(Int128)   {}
func (BitVec) encodeLike(BitVec)   {}

// Compact values encode like the compact form of their integer, never like
// the fixed-width integer itself.
func (Compact[T]) encodeLike(Compact[T]) {}
