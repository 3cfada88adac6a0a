package scale

import "strconv"

// Bound is a static upper bound on an encoded length in bytes. The zero
// value is a bound of 0 bytes. Arithmetic saturates to Unbounded instead
// of overflowing.
type Bound struct {
	n         int
	unbounded bool
}

// Unbounded is the bound of any type whose size depends on its content.
var Unbounded = Bound{unbounded: true}

// Fixed returns a finite bound of n bytes.
func Fixed(n int) Bound {
	if n < 0 {
		return Unbounded
	}
	return Bound{n: n}
}

// Len returns the bound in bytes; ok is false when the bound is infinite.
func (b Bound) Len() (n int, ok bool) { return b.n, !b.unbounded }

func (b Bound) IsBounded() bool { return !b.unbounded }

// Add returns the bound of two members encoded one after the other.
func (b Bound) Add(o Bound) Bound {
	if b.unbounded || o.unbounded || b.n > maxInt-o.n {
		return Unbounded
	}
	return Bound{n: b.n + o.n}
}

// Max returns the larger of two bounds.
func (b Bound) Max(o Bound) Bound {
	if b.unbounded || o.unbounded {
		return Unbounded
	}
	return Bound{n: max(b.n, o.n)}
}

// Mul returns the bound of k consecutive members.
func (b Bound) Mul(k int) Bound {
	switch {
	case k < 0 || b.unbounded:
		return Unbounded
	case k == 0 || b.n == 0:
		return Bound{}
	case b.n > maxInt/k:
		return Unbounded
	}
	return Bound{n: b.n * k}
}

// Fits reports whether the bound is finite and at most limit.
func (b Bound) Fits(limit int) bool { return !b.unbounded && b.n <= limit }

func (b Bound) String() string {
	if b.unbounded {
		return "unbounded"
	}
	return strconv.Itoa(b.n)
}

// SumBounds is the bound of a product type: the sum of its members.
func SumBounds(bs ...Bound) Bound {
	var total Bound
	for _, b := range bs {
		total = total.Add(b)
	}
	return total
}

// EnumBound is the bound of a sum type: one discriminant byte plus the
// largest variant.
func EnumBound(variants ...Bound) Bound {
	return Fixed(1).Add(MaxBounds(variants...))
}

// MaxBounds is the largest of bs.
func MaxBounds(bs ...Bound) Bound {
	var widest Bound
	for _, b := range bs {
		widest = widest.Max(b)
	}
	return widest
}
