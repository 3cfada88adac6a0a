package scale

import (
	"errors"
	"reflect"
)

// TagName is the struct tag consulted by the reflection codec.
//
//	type Header struct {
//		Number uint64 `scale:"compact"`
//		Cache  []byte `scale:"-"`
//	}
//
// Exported fields are encoded in declaration order; unexported fields and
// fields tagged "-" are skipped.
const TagName = "scale"

const tagCompact = "compact"

var errNilPointer = errors.New("scale: Unmarshal needs a non-nil pointer")

// Marshal returns the encoding of v, derived from its Go type. A pointer
// argument is dereferenced once; nested pointers encode as options.
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, unsupported(reflect.TypeOf(v), "nil value")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, unsupported(rv.Type(), "nil pointer")
		}
		rv = rv.Elem()
	}
	m, err := machineFor(rv.Type())
	if err != nil {
		return nil, err
	}
	buf := getBuffer()
	defer putBuffer(buf)
	w := &Writer{w: &bytesBufferWriterAdapter{buf}}
	m.encode(w, rv)
	if w.err != nil {
		return nil, w.err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// Unmarshal decodes data into the value v points to. All of data must be
// consumed.
func Unmarshal(data []byte, v any) error {
	return UnmarshalFrom(NewSliceReader(data), v)
}

// UnmarshalFrom decodes from a configured reader, such as one with a limit
// or lenient compact parsing, and requires it to be exhausted afterwards.
func UnmarshalFrom(r *Reader, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errNilPointer
	}
	m, err := machineFor(rv.Type().Elem())
	if err != nil {
		return err
	}
	if err := m.decode(r, rv.Elem()); err != nil {
		r.Fail(err)
		return err
	}
	return CheckTrailing(r)
}

// MaxEncodedLenOf returns the static bound of t's encoding.
func MaxEncodedLenOf(t reflect.Type) (Bound, error) {
	m, err := machineFor(t)
	if err != nil {
		return Unbounded, err
	}
	return m.bound(), nil
}

// reflectCodec is the Codec of T derived by reflection.
type reflectCodec[T any] struct{ m machine }

// ReflectOf returns the Codec that Marshal uses for T, so reflected types
// can be combined with the typed combinators. It fails for unsupported
// types.
func ReflectOf[T any]() (Codec[T], error) {
	m, err := machineFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return reflectCodec[T]{m}, nil
}

// MustReflect is ReflectOf for package-level variables; it panics on error.
func MustReflect[T any]() Codec[T] {
	c, err := ReflectOf[T]()
	if err != nil {
		panic(err)
	}
	return c
}

func (c reflectCodec[T]) Encode(w *Writer, v T) {
	c.m.encode(w, reflect.ValueOf(&v).Elem())
}

func (c reflectCodec[T]) Decode(r *Reader) (T, error) {
	var v T
	err := c.m.decode(r, reflect.ValueOf(&v).Elem())
	return v, err
}

func (c reflectCodec[T]) MaxEncodedLen() Bound { return c.m.bound() }
func (c reflectCodec[T]) MinEncodedLen() int   { return c.m.minLen() }

// encodeReflect writes *p through the machine of its type.
func encodeReflect[T any](w *Writer, p *T) {
	m, err := machineFor(reflect.TypeFor[T]())
	if err != nil {
		w.Fail(err)
		return
	}
	m.encode(w, reflect.ValueOf(p).Elem())
}

func decodeReflect[T any](r *Reader, p *T) error {
	m, err := machineFor(reflect.TypeFor[T]())
	if err != nil {
		return r.Fail(err)
	}
	return m.decode(r, reflect.ValueOf(p).Elem())
}

func boundReflect[T any]() Bound {
	m, err := machineFor(reflect.TypeFor[T]())
	if err != nil {
		return Unbounded
	}
	return m.bound()
}

func (Option[T]) isOption() {}

func (o Option[T]) EncodeTo(w *Writer)          { encodeReflect(w, &o) }
func (o *Option[T]) DecodeFrom(r *Reader) error { return decodeReflect(r, o) }
func (Option[T]) MaxEncodedLen() Bound          { return boundReflect[Option[T]]() }

func (Result[T, E]) isResult() {}

func (v Result[T, E]) EncodeTo(w *Writer)          { encodeReflect(w, &v) }
func (v *Result[T, E]) DecodeFrom(r *Reader) error { return decodeReflect(r, v) }
func (Result[T, E]) MaxEncodedLen() Bound          { return boundReflect[Result[T, E]]() }
