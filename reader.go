package scale

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// UnknownRemaining is reported by Remaining when the source is a stream
// of unknown length.
const UnknownRemaining = -1

// MaxPreallocation caps the bytes allocated up front for a declared length
// when the source cannot say how much input remains. Larger values are read
// in chunks of this size, so memory grows only with bytes actually received.
const MaxPreallocation = 4 * 1024

// DefaultDepthLimit is how deeply values may nest unless the reader is
// configured with WithDepthLimit. Each Recursive codec, recursive reflected
// type and Reader.Decode call counts one level while it decodes.
const DefaultDepthLimit = 1024

// source is the byte origin a Reader consumes.
type source interface {
	io.Reader
	io.ByteReader
	// Remaining returns the number of bytes left, or UnknownRemaining.
	Remaining() int
}

// Reader is the byte source every decoder reads from. It tracks the number
// of bytes consumed and the first error. Subsequent reads become no-ops that
// return the latched error, so a failed decode is never partially resumed.
type Reader struct {
	r          source
	count      int64 // total bytes read
	err        error // first error encountered.
	limit      int64 // ceiling on count, or -1
	lenient    bool  // accept non-minimal compact integers
	strictBits bool  // reject set bit-vector padding
	depth      int   // current recursive nesting
	depthLimit int   // 0 means DefaultDepthLimit
}

// NewReaderSize creates a new Reader with a specified buffer size for
// streams that are not already in memory.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	// A Reader is used as is: its position, limit and options carry over.
	case *Reader:
		return reader, nil

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		if reader.Size() >= size {
			return &Reader{r: &bufioReaderAdapter{Reader: reader}, limit: -1}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesReader:
		return &Reader{r: reader, limit: -1}, nil
	case *bytes.Reader:
		return &Reader{r: &bytesReaderAdapter{reader}, limit: -1}, nil
	case *bytes.Buffer:
		return &Reader{r: &bytesBufferReaderAdapter{reader}, limit: -1}, nil

	// a limited stream has a known length even though it must be buffered.
	case *io.LimitedReader:
		if size != 0 && size < 16 {
			return nil, ErrSizeTooSmall
		}
		return &Reader{r: newLimitedSource(reader, size), limit: -1}, nil
	}

	if size != 0 && size < 16 {
		return nil, ErrSizeTooSmall
	}

	// default use bufio
	return &Reader{r: &bufioReaderAdapter{Reader: bufio.NewReaderSize(r, size)}, limit: -1}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 0)
}

// NewSliceReader returns a Reader over an in-memory buffer.
func NewSliceReader(data []byte) *Reader {
	return &Reader{r: NewBytesReader(data), limit: -1}
}

// WithLimit caps the total number of bytes the reader will consume and
// returns the reader for chaining. Declared lengths that would cross the
// ceiling fail before any allocation.
func (r *Reader) WithLimit(n int64) *Reader {
	if n < 0 {
		n = 0
	}
	r.limit = r.count + n
	return r
}

// WithLenientCompact makes the reader accept compact integers encoded in a
// wider mode than necessary, and returns the reader for chaining.
func (r *Reader) WithLenientCompact() *Reader {
	r.lenient = true
	return r
}

// WithStrictBitVec makes the reader reject bit-vectors whose padding bits
// are set, and returns the reader for chaining. By default they are cleared.
func (r *Reader) WithStrictBitVec() *Reader {
	r.strictBits = true
	return r
}

// WithDepthLimit caps how deeply recursive values may nest and returns the
// reader for chaining. A limit below 1 restores DefaultDepthLimit.
func (r *Reader) WithDepthLimit(n int) *Reader {
	r.depthLimit = max(n, 0)
	return r
}

// enter records one more level of recursive nesting; each successful call
// is paired with leave.
func (r *Reader) enter() error {
	if r.err != nil {
		return r.err
	}
	limit := r.depthLimit
	if limit == 0 {
		limit = DefaultDepthLimit
	}
	if r.depth >= limit {
		return r.Fail(detailf(ErrDepthLimit, "more than %d levels", limit))
	}
	r.depth++
	return nil
}

func (r *Reader) leave() { r.depth-- }

// Lenient reports whether non-minimal compact integers are accepted.
func (r *Reader) Lenient() bool { return r.lenient }

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// Remaining returns how many bytes may still be read: the smaller of what
// the source holds and what the configured limit allows. It returns
// UnknownRemaining for an unlimited stream.
func (r *Reader) Remaining() int {
	n := r.r.Remaining()
	if r.limit >= 0 {
		left := int(r.limit - r.count)
		if n == UnknownRemaining || left < n {
			return left
		}
	}
	return n
}

// Fail latches err and returns the latched error. Decoders return its
// result so the first failure wins.
func (r *Reader) Fail(err error) error {
	if r.err == nil && err != nil {
		r.err = err
	}
	return r.err
}

// insufficient builds the error for a read of n bytes when only rem remain.
func (r *Reader) insufficient(n, rem int) error {
	if r.limit >= 0 && int(r.limit-r.count) == rem {
		src := r.r.Remaining()
		if src == UnknownRemaining || src > rem {
			return detailf(ErrLimitExceeded, "need %d bytes, limit leaves %d", n, rem)
		}
	}
	return detailf(ErrInsufficientInput, "need %d bytes, %d remain", n, rem)
}

// Read implements the io.Reader interface. It honours the configured limit.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.limit >= 0 {
		left := r.limit - r.count
		if left <= 0 {
			return 0, io.EOF
		}
		if int64(len(p)) > left {
			p = p[:left]
		}
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	if err != nil && err != io.EOF {
		r.Fail(err)
	}
	return n, err
}

// ReadByte implements the io.ByteReader interface.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if rem := r.Remaining(); rem == 0 {
		return 0, r.Fail(r.insufficient(1, 0))
	}
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.Fail(translateEOF(err))
	}
	r.count++
	return b, nil
}

// ReadFull fills p exactly. It fails with ErrInsufficientInput when fewer
// than len(p) bytes remain; with a known length this is detected before
// anything is read.
func (r *Reader) ReadFull(p []byte) error {
	if r.err != nil {
		return r.err
	}
	if len(p) == 0 {
		return nil
	}
	if rem := r.Remaining(); rem != UnknownRemaining && len(p) > rem {
		return r.Fail(r.insufficient(len(p), rem))
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	if err != nil {
		return r.Fail(translateEOF(err))
	}
	return nil
}

// ReadBytes reads n bytes into a new slice. The allocation is bounded by
// the remaining input; for streams of unknown length it grows in
// MaxPreallocation chunks as data arrives.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if n <= 0 {
		return []byte{}, nil
	}
	rem := r.Remaining()
	if rem != UnknownRemaining {
		if n > rem {
			return nil, r.Fail(r.insufficient(n, rem))
		}
		buf := make([]byte, n)
		return buf, r.ReadFull(buf)
	}

	buf := make([]byte, 0, min(n, MaxPreallocation))
	for len(buf) < n {
		chunk := min(n-len(buf), MaxPreallocation)
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		if err := r.ReadFull(buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	if r.err != nil || n <= 0 {
		return r.err
	}
	if rem := r.Remaining(); rem != UnknownRemaining && n > rem {
		return r.Fail(r.insufficient(n, rem))
	}
	skipped, err := Discard(r.r, int64(n))
	r.count += skipped
	if err == nil && skipped < int64(n) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return r.Fail(translateEOF(err))
	}
	return nil
}

// Decode reads a self-decoding value. The returned error keeps the
// positional context added by v, while the reader latches the first failure.
func (r *Reader) Decode(v Decodable) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	err := v.DecodeFrom(r)
	r.Fail(err)
	return err
}

// translateEOF maps the io end-of-stream errors onto ErrInsufficientInput.
func translateEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return detailf(ErrInsufficientInput, "source ended early")
	}
	return err
}

// --- Primitive Read Operations ---

func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 0:
		*dest = false
	case 1:
		*dest = true
	default:
		r.Fail(detailf(ErrInvalidBool, "0x%02x", b))
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	var buf [2]byte
	if r.ReadFull(buf[:]) == nil {
		*dest = Order.Uint16(buf[:])
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	var buf [4]byte
	if r.ReadFull(buf[:]) == nil {
		*dest = Order.Uint32(buf[:])
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	var buf [8]byte
	if r.ReadFull(buf[:]) == nil {
		*dest = Order.Uint64(buf[:])
	}
}

func (r *Reader) ReadUint128(dest *Uint128) {
	var buf [16]byte
	if r.ReadFull(buf[:]) == nil {
		*dest = Uint128FromBytes(buf[:])
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	var v uint16
	r.ReadUint16(&v)
	if r.err == nil {
		*dest = int16(v)
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	var v uint32
	r.ReadUint32(&v)
	if r.err == nil {
		*dest = int32(v)
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	var v uint64
	r.ReadUint64(&v)
	if r.err == nil {
		*dest = int64(v)
	}
}

// ReadLen reads a compact sequence length and checks that count elements of
// at least minElem bytes each fit in the remaining input. The check happens
// before the caller allocates anything sized by the count.
func (r *Reader) ReadLen(minElem int) (int, error) {
	var n uint32
	if err := r.ReadCompact32(&n); err != nil {
		return 0, err
	}
	if err := r.CheckLen(uint64(n), minElem); err != nil {
		return 0, err
	}
	return int(n), nil
}

// CheckLen verifies that count elements of at least minElem bytes each can
// still be supplied by the source.
func (r *Reader) CheckLen(count uint64, minElem int) error {
	if r.err != nil {
		return r.err
	}
	rem := r.Remaining()
	if rem == UnknownRemaining || minElem <= 0 || count == 0 {
		return nil
	}
	if count > uint64(rem)/uint64(minElem) {
		return r.Fail(detailf(ErrLengthExceedsInput, "%d elements of at least %d bytes, %d bytes remain", count, minElem, rem))
	}
	return nil
}
