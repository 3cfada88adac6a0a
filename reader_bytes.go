package scale

import "io"

// BytesReader reads from a caller-owned slice. The slice is never copied
// or modified; only the position moves.
type BytesReader struct {
	B []byte
	N int // read position
}

func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

func (r *BytesReader) Read(p []byte) (int, error) {
	if r.Remaining() == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

func (r *BytesReader) ReadByte() (byte, error) {
	if r.Remaining() == 0 {
		return 0, io.EOF
	}
	r.N++
	return r.B[r.N-1], nil
}

// Discard advances past n bytes, or to the end with io.EOF when fewer
// remain. It matches bufio.Reader.Discard so Skip never copies.
func (r *BytesReader) Discard(n int) (int, error) {
	rem := r.Remaining()
	if n > rem {
		r.N += rem
		return rem, io.EOF
	}
	r.N += n
	return n, nil
}

func (r *BytesReader) Reset()    { r.N = 0 }
func (r *BytesReader) Len() int  { return r.N }
func (r *BytesReader) Size() int { return len(r.B) }

func (r *BytesReader) Remaining() int {
	return max(len(r.B)-r.N, 0)
}
