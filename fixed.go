package scale

import (
	"fmt"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids walking the payload type on every Size call.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// FixedSize wraps a payload whose encoding has the same length for every value,
// such as a struct of integers, booleans and arrays, and gives it the
// standard binary marshaling interfaces.
//
// Constraint: Payload MUST NOT contain sequences, strings, options or any
// other member whose length depends on the value. Size panics otherwise.
type FixedSize[Payload any] struct {
	Payload Payload
}

var (
	_ Encodable = (*FixedSize[struct{}])(nil)
	_ Decodable = (*FixedSize[struct{}])(nil)
)

// Size returns the encoded size of the payload in bytes.
func (c *FixedSize[Payload]) Size() int {
	t := reflect.TypeFor[Payload]()
	if size, ok := sizeCache.Load(t); ok {
		return size
	}
	m, err := machineFor(t)
	if err != nil {
		panic(err)
	}
	size, ok := m.bound().Len()
	if !ok || size != m.minLen() {
		panic(fmt.Sprintf("scale: %s does not have a fixed encoded size", t))
	}
	sizeCache.Store(t, size)
	return size
}

func (c FixedSize[Payload]) EncodeTo(w *Writer) { encodeReflect(w, &c.Payload) }

func (c *FixedSize[Payload]) DecodeFrom(r *Reader) error { return decodeReflect(r, &c.Payload) }

func (c *FixedSize[Payload]) MaxEncodedLen() Bound { return Fixed(c.Size()) }
func (c *FixedSize[Payload]) MinEncodedLen() int   { return c.Size() }

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *FixedSize[Payload]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, c.Size())
	n, err := c.MarshalTo(buf)
	return buf[:n], err
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. data must hold
// exactly one payload.
func (c *FixedSize[Payload]) UnmarshalBinary(data []byte) error {
	return DecodeValue(c, data)
}

// MarshalTo encodes into p without allocating.
func (c *FixedSize[Payload]) MarshalTo(p []byte) (int, error) {
	if len(p) < c.Size() {
		return 0, io.ErrShortWrite
	}
	bw := NewBytesWriter(p)
	w := &Writer{w: bw}
	c.EncodeTo(w)
	return bw.Len(), w.err
}

// ReadFrom implements io.ReaderFrom. It reads exactly Size bytes.
func (c *FixedSize[Payload]) ReadFrom(r io.Reader) (int64, error) {
	rd, err := NewReader(&io.LimitedReader{R: r, N: int64(c.Size())})
	if err != nil {
		return 0, err
	}
	err = rd.Decode(c)
	return rd.Count(), err
}

// WriteTo implements io.WriterTo.
func (c *FixedSize[Payload]) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}
