package scale

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

// Order is the byte order of every fixed-width integer on the wire.
var Order = binary.LittleEndian

const (
	maxInt = int(^uint(0) >> 1)

	// maxSequenceLen is the largest element count a length prefix may carry.
	maxSequenceLen = math.MaxUint32
)

const BUFFER_SIZE = 4096

var discard [BUFFER_SIZE]byte

// discarder is implemented by *bufio.Reader and *BytesReader.
type discarder interface {
	Discard(n int) (int, error)
}

// Discard reads and drops n bytes from r.
func Discard(r io.Reader, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if d, ok := r.(discarder); ok && n <= int64(maxInt) {
		skipped, err := d.Discard(int(n))
		return int64(skipped), err
	}
	if n <= BUFFER_SIZE {
		skip, err := io.ReadFull(r, discard[:n])
		return int64(skip), err
	}
	return io.CopyN(io.Discard, r, n)
}

// CeilDiv returns n/d rounded up.
func CeilDiv[T constraints.Integer](n, d T) T { return (n + d - 1) / d }

// CheckTrailing verifies that the reader has been fully consumed. A
// canonical decode of a whole buffer must account for every byte; anything
// left over indicates a mismatched type or a malicious payload.
func CheckTrailing(r *Reader) error {
	if r.err != nil {
		return r.err
	}
	// The source is checked, not the limit: a limit shorter than the input
	// must not hide bytes past it.
	rem := r.r.Remaining()
	if rem == UnknownRemaining {
		if _, err := r.r.ReadByte(); err == io.EOF {
			return nil
		}
		return r.Fail(ErrTrailingData)
	}
	if rem > 0 {
		return r.Fail(detailf(ErrTrailingData, "%d bytes left", rem))
	}
	return nil
}
