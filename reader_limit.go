package scale

import (
	"bufio"
	"io"
)

// limitedSource buffers an io.LimitedReader while keeping track of how many
// of its N bytes have actually been consumed, so the length stays known.
type limitedSource struct {
	r    *bufio.Reader
	left int64
}

func newLimitedSource(lr *io.LimitedReader, size int) *limitedSource {
	return &limitedSource{r: bufio.NewReaderSize(lr, size), left: lr.N}
}

// LimitReader returns a Reader over the first n bytes of r. Unlike a plain
// stream, the Reader knows how much input remains and can reject oversized
// length prefixes before allocating.
func LimitReader(r io.Reader, n int64) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	return NewReader(&io.LimitedReader{R: r, N: n})
}

func (s *limitedSource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.left -= int64(n)
	return n, err
}

func (s *limitedSource) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err == nil {
		s.left--
	}
	return b, err
}

func (s *limitedSource) Remaining() int {
	if s.left <= 0 {
		return 0
	}
	if s.left > int64(maxInt) {
		return maxInt
	}
	return int(s.left)
}
