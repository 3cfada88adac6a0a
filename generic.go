package scale

import (
	"bytes"
	"io"
)

// Encode returns the encoding of v. The only possible error is one latched
// by the codec itself, such as ErrArrayLength.
func Encode[T any](c Codec[T], v T) ([]byte, error) {
	if n, ok := c.MaxEncodedLen().Len(); ok && n <= MaxPreallocation {
		return EncodeToFixed(c, v)
	}
	buf := getBuffer()
	defer putBuffer(buf)
	w := &Writer{w: &bytesBufferWriterAdapter{buf}}
	c.Encode(w, v)
	if w.err != nil {
		return nil, w.err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// EncodeToFixed encodes v into a buffer presized from the codec's bound,
// so a bounded type is encoded with exactly one allocation. Unbounded
// codecs fall back to Encode.
func EncodeToFixed[T any](c Codec[T], v T) ([]byte, error) {
	n, ok := c.MaxEncodedLen().Len()
	if !ok {
		return Encode(c, v)
	}
	bw := NewBytesWriter(make([]byte, n))
	w := &Writer{w: bw}
	c.Encode(w, v)
	if w.err != nil {
		return nil, w.err
	}
	return bw.Bytes(), nil
}

// EncodeValue returns the encoding of a self-coding value, such as an
// EncodeLike key.
func EncodeValue(v Encodable) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	w := &Writer{w: &bytesBufferWriterAdapter{buf}}
	w.Encode(v)
	if w.err != nil {
		return nil, w.err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// AppendEncode appends the encoding of v to dst.
func AppendEncode[T any](dst []byte, c Codec[T], v T) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w := &Writer{w: &bytesBufferWriterAdapter{buf}}
	c.Encode(w, v)
	if w.err != nil {
		return dst, w.err
	}
	return buf.Bytes(), nil
}

// EncodedLen returns the number of bytes Encode would produce for v.
func EncodedLen[T any](c Codec[T], v T) int {
	w := &Writer{w: &countingSink{}}
	c.Encode(w, v)
	return int(w.count)
}

// Decode decodes exactly one value from data. Bytes left over after the
// value are an error.
func Decode[T any](c Codec[T], data []byte) (T, error) {
	return DecodeWith(NewSliceReader(data), c)
}

// DecodeWith decodes one value from a configured reader and requires the
// reader to be exhausted afterwards.
func DecodeWith[T any](r *Reader, c Codec[T]) (T, error) {
	v, err := c.Decode(r)
	if err == nil {
		err = CheckTrailing(r)
	}
	if err != nil {
		r.Fail(err)
		var zero T
		return zero, err
	}
	return v, nil
}

// DecodeValue decodes data into a self-decoding value.
func DecodeValue(v Decodable, data []byte) error {
	r := NewSliceReader(data)
	if err := r.Decode(v); err != nil {
		return err
	}
	return CheckTrailing(r)
}

// EncodeTo streams the encoding of v into dst.
func EncodeTo[T any](dst io.Writer, c Codec[T], v T) (int64, error) {
	w, err := NewWriter(dst)
	if err != nil {
		return 0, err
	}
	c.Encode(w, v)
	return w.Result()
}

// DecodeFrom reads one value from a stream without checking for trailing
// bytes. Pass a *Reader to read several values back to back; any other
// source is buffered and may be read past the value.
func DecodeFrom[T any](src io.Reader, c Codec[T]) (T, error) {
	r, err := NewReader(src)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Decode(r)
}

// countingSink drops bytes and only counts them; the Writer keeps the count.
type countingSink struct{}

func (countingSink) Write(p []byte) (int, error)       { return len(p), nil }
func (countingSink) WriteByte(byte) error              { return nil }
func (countingSink) WriteString(s string) (int, error) { return len(s), nil }
func (countingSink) Flush() error                      { return nil }
func (countingSink) Grow(int)                          {}
