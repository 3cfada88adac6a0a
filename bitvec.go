package scale

import "strings"

// BitVec is a packed sequence of bits. It encodes as a compact bit count
// followed by ceil(n/8) bytes, least significant bit first. Unused bits of
// the last byte are always zero.
type BitVec struct {
	data []byte
	n    int
}

var (
	_ Encodable = BitVec{}
	_ Decodable = (*BitVec)(nil)

	// Bits is the Codec of BitVec.
	Bits = Self[BitVec]()
)

// NewBitVec returns n cleared bits.
func NewBitVec(n int) BitVec {
	return BitVec{data: make([]byte, CeilDiv(n, 8)), n: n}
}

// BitVecOf packs a slice of booleans.
func BitVecOf(bits ...bool) BitVec {
	b := NewBitVec(len(bits))
	for i, v := range bits {
		b.Set(i, v)
	}
	return b
}

func (b BitVec) Len() int { return b.n }

// Get returns bit i. It panics if i is out of range.
func (b BitVec) Get(i int) bool {
	b.check(i)
	return b.data[i/8]&(1<<(i%8)) != 0
}

// Set assigns bit i. It panics if i is out of range.
func (b BitVec) Set(i int, v bool) {
	b.check(i)
	if v {
		b.data[i/8] |= 1 << (i % 8)
	} else {
		b.data[i/8] &^= 1 << (i % 8)
	}
}

// Append adds one bit at the end.
func (b *BitVec) Append(v bool) {
	if b.n%8 == 0 {
		b.data = append(b.data, 0)
	}
	b.n++
	b.Set(b.n-1, v)
}

// Bytes returns the packed storage. The caller must not modify it.
func (b BitVec) Bytes() []byte { return b.data }

// Bools unpacks the bits.
func (b BitVec) Bools() []bool {
	out := make([]bool, b.n)
	for i := range out {
		out[i] = b.Get(i)
	}
	return out
}

func (b BitVec) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := range b.n {
		if b.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (b BitVec) check(i int) {
	if i < 0 || i >= b.n {
		panic("scale: bit index out of range")
	}
}

func (b BitVec) EncodeTo(w *Writer) {
	if uint64(b.n) > maxSequenceLen {
		w.Fail(detailf(ErrArrayLength, "%d bits exceed %d", b.n, uint64(maxSequenceLen)))
		return
	}
	w.WriteCompact(uint64(b.n))
	w.WriteBytes(b.data[:CeilDiv(b.n, 8)])
}

// DecodeFrom reads a bit vector. Set padding bits are cleared, or rejected
// with ErrInvalidBitVec by a reader configured with WithStrictBitVec.
func (b *BitVec) DecodeFrom(r *Reader) error {
	var n uint32
	if err := r.ReadCompact32(&n); err != nil {
		return err
	}
	size := CeilDiv(int(n), 8)
	if err := r.CheckLen(uint64(size), 1); err != nil {
		return err
	}
	data, err := r.ReadBytes(size)
	if err != nil {
		return err
	}
	if tail := int(n) % 8; tail != 0 {
		mask := byte(1)<<tail - 1
		if last := data[size-1]; last&^mask != 0 {
			if r.strictBits {
				return r.Fail(detailf(ErrInvalidBitVec, "last byte 0x%02x for %d bits", last, n))
			}
			data[size-1] = last & mask
		}
	}
	b.data, b.n = data, int(n)
	return nil
}

func (BitVec) MaxEncodedLen() Bound { return Unbounded }
func (BitVec) MinEncodedLen() int   { return 1 }
