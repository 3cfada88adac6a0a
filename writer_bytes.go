package scale

import "io"

// BytesWriter writes into a fixed byte slice and never grows it. A write
// that does not fit stores what it can and reports io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination, resliced to its capacity
	N int    // bytes written so far
}

func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

func put[S []byte | string](w *BytesWriter, src S) (int, error) {
	n := copy(w.B[w.N:], src)
	w.N += n
	if n < len(src) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (w *BytesWriter) Write(p []byte) (int, error) { return put(w, p) }

func (w *BytesWriter) WriteString(s string) (int, error) { return put(w, s) }

func (w *BytesWriter) WriteByte(c byte) error {
	if w.N == len(w.B) {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Flush and Grow are no-ops: the destination is the final buffer.
func (w *BytesWriter) Flush() error { return nil }
func (w *BytesWriter) Grow(int)     {}

func (w *BytesWriter) Reset()         { w.N = 0 }
func (w *BytesWriter) Len() int       { return w.N }
func (w *BytesWriter) Size() int      { return len(w.B) }
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns the written prefix without copying.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
