package scale

import (
	"encoding/binary"
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer. On the wire it is 16 bytes,
// little-endian.
type Uint128 struct {
	Lo, Hi uint64
}

// Int128 is a signed 128-bit integer in two's complement, encoded like the
// Uint128 holding the same bits.
type Int128 Uint128

var (
	_ Encodable = Uint128{}
	_ Decodable = (*Uint128)(nil)
	_ Encodable = Int128{}
	_ Decodable = (*Int128)(nil)
)

// Uint128From widens a uint64.
func Uint128From(v uint64) Uint128 { return Uint128{Lo: v} }

// Uint128FromBytes reads 16 little-endian bytes.
func Uint128FromBytes(b []byte) Uint128 {
	return Uint128{Lo: Order.Uint64(b[:8]), Hi: Order.Uint64(b[8:16])}
}

// Uint128FromBig converts a non-negative big.Int. ok is false when x does
// not fit in 128 bits.
func Uint128FromBig(x *big.Int) (v Uint128, ok bool) {
	if x.Sign() < 0 || x.BitLen() > 128 {
		return Uint128{}, false
	}
	var buf [16]byte
	x.FillBytes(buf[:])
	return Uint128{Hi: binary.BigEndian.Uint64(buf[:8]), Lo: binary.BigEndian.Uint64(buf[8:])}, true
}

// PutBytes writes the 16 little-endian bytes of u into b.
func (u Uint128) PutBytes(b []byte) {
	Order.PutUint64(b[:8], u.Lo)
	Order.PutUint64(b[8:16], u.Hi)
}

// IsUint64 reports whether u fits in a uint64.
func (u Uint128) IsUint64() bool { return u.Hi == 0 }

// BitLen returns the number of bits needed to represent u.
func (u Uint128) BitLen() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// Cmp compares u and v and returns -1, 0 or +1.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	}
	return 0
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	hi := new(big.Int).SetUint64(u.Hi)
	hi.Lsh(hi, 64)
	return hi.Or(hi, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string { return u.Big().String() }

func (u Uint128) EncodeTo(w *Writer) { w.WriteUint128(u) }

func (u *Uint128) DecodeFrom(r *Reader) error {
	r.ReadUint128(u)
	return r.Err()
}

func (Uint128) MaxEncodedLen() Bound { return Fixed(16) }
func (Uint128) MinEncodedLen() int   { return 16 }

var (
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// Int128FromBig converts x. ok is false when x is outside the 128-bit
// signed range.
func Int128FromBig(x *big.Int) (v Int128, ok bool) {
	if x.Cmp(minInt128) < 0 || x.Cmp(maxInt128) > 0 {
		return Int128{}, false
	}
	if x.Sign() >= 0 {
		u, _ := Uint128FromBig(x)
		return Int128(u), true
	}
	u, _ := Uint128FromBig(new(big.Int).Add(x, two128))
	return Int128(u), true
}

// Int128From widens an int64.
func Int128From(v int64) Int128 {
	if v < 0 {
		return Int128{Lo: uint64(v), Hi: ^uint64(0)}
	}
	return Int128{Lo: uint64(v)}
}

// Big returns i as a big.Int.
func (i Int128) Big() *big.Int {
	x := Uint128(i).Big()
	if int64(i.Hi) < 0 {
		x.Sub(x, two128)
	}
	return x
}

func (i Int128) String() string { return i.Big().String() }

func (i Int128) EncodeTo(w *Writer) { w.WriteUint128(Uint128(i)) }

func (i *Int128) DecodeFrom(r *Reader) error {
	r.ReadUint128((*Uint128)(i))
	return r.Err()
}

func (Int128) MaxEncodedLen() Bound { return Fixed(16) }
func (Int128) MinEncodedLen() int   { return 16 }
