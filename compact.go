package scale

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Compact integer modes, selected by the low two bits of the first byte.
const (
	compactSingle = 0b00 // 0..63, one byte
	compactTwo    = 0b01 // 64..2^14-1, two bytes
	compactFour   = 0b10 // 2^14..2^30-1, four bytes
	compactBig    = 0b11 // 2^30.., length-prefixed

	maxSingle = 1<<6 - 1
	maxTwo    = 1<<14 - 1
	maxFour   = 1<<30 - 1

	// maxCompactBytes is the widest payload of the big mode: 128 bits.
	maxCompactBytes = 16
)

// CompactLen returns the number of bytes the compact encoding of v takes.
func CompactLen(v uint64) int {
	switch {
	case v <= maxSingle:
		return 1
	case v <= maxTwo:
		return 2
	case v <= maxFour:
		return 4
	}
	return 1 + max(4, CeilDiv(bits.Len64(v), 8))
}

// CompactLen128 is CompactLen for 128-bit values.
func CompactLen128(v Uint128) int {
	if v.IsUint64() {
		return CompactLen(v.Lo)
	}
	return 1 + CeilDiv(v.BitLen(), 8)
}

// WriteCompact writes v in the smallest compact mode that holds it.
func (w *Writer) WriteCompact(v uint64) {
	if w.err != nil {
		return
	}
	switch {
	case v <= maxSingle:
		_ = w.WriteByte(byte(v) << 2)
	case v <= maxTwo:
		w.WriteUint16(uint16(v)<<2 | compactTwo)
	case v <= maxFour:
		w.WriteUint32(uint32(v)<<2 | compactFour)
	default:
		n := max(4, CeilDiv(bits.Len64(v), 8))
		var buf [9]byte
		buf[0] = byte(n-4)<<2 | compactBig
		Order.PutUint64(buf[1:], v)
		_, _ = w.Write(buf[:1+n])
	}
}

// WriteCompact128 writes a 128-bit value in the smallest compact mode.
func (w *Writer) WriteCompact128(v Uint128) {
	if v.IsUint64() {
		w.WriteCompact(v.Lo)
		return
	}
	if w.err != nil {
		return
	}
	n := CeilDiv(v.BitLen(), 8)
	var buf [1 + maxCompactBytes]byte
	buf[0] = byte(n-4)<<2 | compactBig
	v.PutBytes(buf[1:])
	_, _ = w.Write(buf[:1+n])
}

// ReadCompact128 reads a compact integer of up to 128 bits. Unless the
// reader is lenient, an encoding wider than necessary is rejected with
// ErrNonCanonicalCompact.
func (r *Reader) ReadCompact128(dest *Uint128) error {
	first, err := r.ReadByte()
	if err != nil {
		return err
	}

	var v Uint128
	var minimal bool
	switch first & 0b11 {
	case compactSingle:
		*dest = Uint128From(uint64(first >> 2))
		return nil
	case compactTwo:
		var buf [2]byte
		buf[0] = first
		if err := r.ReadFull(buf[1:]); err != nil {
			return err
		}
		v = Uint128From(uint64(Order.Uint16(buf[:]) >> 2))
		minimal = v.Lo > maxSingle
	case compactFour:
		var buf [4]byte
		buf[0] = first
		if err := r.ReadFull(buf[1:]); err != nil {
			return err
		}
		v = Uint128From(uint64(Order.Uint32(buf[:]) >> 2))
		minimal = v.Lo > maxTwo
	case compactBig:
		n := int(first>>2) + 4
		if n > maxCompactBytes {
			return r.Fail(detailf(ErrInvalidCompact, "%d-byte integer exceeds 128 bits", n))
		}
		var buf [maxCompactBytes]byte
		if err := r.ReadFull(buf[:n]); err != nil {
			return err
		}
		v = Uint128FromBytes(buf[:])
		minimal = (!v.IsUint64() || v.Lo > maxFour) && (n == 4 || buf[n-1] != 0)
	}

	if !minimal && !r.lenient {
		return r.Fail(detailf(ErrNonCanonicalCompact, "first byte 0x%02x", first))
	}
	*dest = v
	return nil
}

// ReadCompact64 reads a compact integer that must fit in 64 bits.
func (r *Reader) ReadCompact64(dest *uint64) error {
	var v Uint128
	if err := r.ReadCompact128(&v); err != nil {
		return err
	}
	if !v.IsUint64() {
		return r.Fail(detailf(ErrInvalidCompact, "value %s overflows uint64", v))
	}
	*dest = v.Lo
	return nil
}

// ReadCompact32 reads a compact integer that must fit in 32 bits.
func (r *Reader) ReadCompact32(dest *uint32) error {
	var v uint64
	if err := readCompactInto(r, &v, 1<<32-1); err != nil {
		return err
	}
	*dest = uint32(v)
	return nil
}

func readCompactInto(r *Reader, dest *uint64, limit uint64) error {
	var v uint64
	if err := r.ReadCompact64(&v); err != nil {
		return err
	}
	if v > limit {
		return r.Fail(detailf(ErrInvalidCompact, "value %d overflows %d", v, limit))
	}
	*dest = v
	return nil
}

// compactCodec is the compact encoding of an unsigned integer type.
type compactCodec[T constraints.Unsigned] struct{}

// CompactOf returns the compact Codec for an unsigned integer type. Values
// that do not fit T fail to decode with ErrInvalidCompact.
func CompactOf[T constraints.Unsigned]() Codec[T] { return compactCodec[T]{} }

func (compactCodec[T]) Encode(w *Writer, v T) { w.WriteCompact(uint64(v)) }

func (compactCodec[T]) Decode(r *Reader) (T, error) {
	var v uint64
	err := readCompactInto(r, &v, uint64(^T(0)))
	return T(v), err
}

func (compactCodec[T]) MaxEncodedLen() Bound { return Fixed(CompactLen(uint64(^T(0)))) }
func (compactCodec[T]) MinEncodedLen() int   { return 1 }

type compact128Codec struct{}

func (compact128Codec) Encode(w *Writer, v Uint128) { w.WriteCompact128(v) }

func (compact128Codec) Decode(r *Reader) (Uint128, error) {
	var v Uint128
	err := r.ReadCompact128(&v)
	return v, err
}

func (compact128Codec) MaxEncodedLen() Bound {
	return Fixed(CompactLen128(Uint128{Lo: ^uint64(0), Hi: ^uint64(0)}))
}
func (compact128Codec) MinEncodedLen() int { return 1 }

// compactSignedCodec folds a signed integer onto the unsigned scheme with
// the zig-zag transform: 0, -1, 1, -2, 2 ... map to 0, 1, 2, 3, 4 ...
type compactSignedCodec struct{}

func (compactSignedCodec) Encode(w *Writer, v int64) {
	w.WriteCompact(uint64(v<<1) ^ uint64(v>>63))
}

func (compactSignedCodec) Decode(r *Reader) (int64, error) {
	var u uint64
	if err := r.ReadCompact64(&u); err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

func (compactSignedCodec) MaxEncodedLen() Bound { return Fixed(CompactLen(^uint64(0))) }
func (compactSignedCodec) MinEncodedLen() int   { return 1 }

var (
	CompactU8    Codec[uint8]   = CompactOf[uint8]()
	CompactU16   Codec[uint16]  = CompactOf[uint16]()
	CompactU32   Codec[uint32]  = CompactOf[uint32]()
	CompactU64   Codec[uint64]  = CompactOf[uint64]()
	CompactU128  Codec[Uint128] = compact128Codec{}
	CompactInt64 Codec[int64]   = compactSignedCodec{}
)

// Compact wraps an unsigned integer so that it encodes compactly when used
// as a self-coding value, for example as a field of a reflected struct.
type Compact[T constraints.Unsigned] struct {
	Value T
}

func (c Compact[T]) EncodeTo(w *Writer) { w.WriteCompact(uint64(c.Value)) }

func (c *Compact[T]) DecodeFrom(r *Reader) error {
	v, err := compactCodec[T]{}.Decode(r)
	if err == nil {
		c.Value = v
	}
	return err
}

func (Compact[T]) MaxEncodedLen() Bound { return compactCodec[T]{}.MaxEncodedLen() }
func (Compact[T]) MinEncodedLen() int   { return 1 }
