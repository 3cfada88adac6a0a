package scale

import (
	"bufio"
	"bytes"
	"io"
)

// sink is the byte destination a Writer appends to.
type sink interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
	Flush() error
	// Grow is a capacity hint; sinks that cannot grow ignore it.
	Grow(n int)
}

// Writer is the byte sink every encoder writes into. It wraps an io.Writer,
// buffering it when it is not already an in-memory destination, and tracks
// the first error that occurs. After an error, all subsequent write
// operations become no-ops.
//
// Encoding itself never fails: the only errors a Writer reports are the
// destination's own failures and misuse latched by a codec via Fail.
type Writer struct {
	w     sink
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
	// scratch holds one fixed-width integer on its way to w.
	scratch [16]byte
}

// NewWriterSize creates a new Writer with a specified buffer size.
// It returns an error to prevent double-buffering, a common source of bugs.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Reuse the underlying buffer if it's already a compatible Writer.
	case *Writer:
		return &Writer{w: bw.w, depth: bw.depth + 1}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		if bw.Size() >= size {
			return &Writer{w: &bufioWriterAdapter{bw}, depth: 1}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		return &Writer{w: bw}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{bw}}, nil
	}

	// default use bufio
	return &Writer{w: &bufioWriterAdapter{bufio.NewWriterSize(w, size)}}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// NewBufferWriter returns a Writer appending to a fresh in-memory buffer
// with room for sizeHint bytes.
func NewBufferWriter(sizeHint int) (*Writer, *bytes.Buffer) {
	buf := bytes.NewBuffer(make([]byte, 0, max(sizeHint, 0)))
	return &Writer{w: &bytesBufferWriterAdapter{buf}}, buf
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		n, err = 0, ErrInvalidWrite
	}
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.WriteByte(v); err != nil {
		w.setError(err)
		return err
	}
	w.count++
	return nil
}

// Reserve hints that n more bytes are about to be written. It never affects
// the produced bytes.
func (w *Writer) Reserve(n int) {
	if w.err == nil && n > 0 {
		w.w.Grow(n)
	}
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// Fail latches err as the writer's error if none is set yet.
func (w *Writer) Fail(err error) { w.setError(err) }

// setError keeps the first non-nil error; later ones are dropped.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// A nested writer shares its parent's buffer; only the outermost flushes.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// Encode writes a self-encoding value.
func (w *Writer) Encode(v Encodable) {
	if v == nil || w.err != nil {
		return
	}
	v.EncodeTo(w)
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(buf []byte) {
	if len(buf) == 0 || w.err != nil {
		return
	}
	_, _ = w.Write(buf)
}

func (w *Writer) WriteBool(v bool) {
	var b byte
	if v {
		b = 1
	}
	_ = w.WriteByte(b)
}

func (w *Writer) WriteUint8(v uint8)   { _ = w.WriteByte(v) }
func (w *Writer) WriteUint16(v uint16) { w.WriteBytes(Order.AppendUint16(w.scratch[:0], v)) }
func (w *Writer) WriteUint32(v uint32) { w.WriteBytes(Order.AppendUint32(w.scratch[:0], v)) }
func (w *Writer) WriteUint64(v uint64) { w.WriteBytes(Order.AppendUint64(w.scratch[:0], v)) }

func (w *Writer) WriteUint128(v Uint128) {
	v.PutBytes(w.scratch[:])
	w.WriteBytes(w.scratch[:])
}

func (w *Writer) WriteInt8(v int8)   { _ = w.WriteByte(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteLen writes a sequence length as a compact integer. Lengths above
// math.MaxUint32 cannot be represented and latch ErrArrayLength.
func (w *Writer) WriteLen(n int) {
	if n < 0 || uint64(n) > maxSequenceLen {
		w.Fail(detailf(ErrArrayLength, "length %d exceeds %d", n, uint64(maxSequenceLen)))
		return
	}
	w.WriteCompact(uint64(n))
}
