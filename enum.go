package scale

import (
	"fmt"
	"reflect"
)

// Variant is one alternative of a sum type built with EnumOf.
type Variant[T any] interface {
	Index() uint8
	Name() string
	payload() reflect.Type
	encode(w *Writer, v T)
	decode(r *Reader) (T, error)
	bound() Bound
	minLen() int
}

type variant[T, V any] struct {
	index uint8
	name  string
	c     Codec[V]
}

// VariantOf declares that values of the concrete type V are the variant of
// sum type T with the given discriminant. V must implement T.
func VariantOf[T, V any](index uint8, name string, c Codec[V]) Variant[T] {
	var zero V
	if _, ok := any(zero).(T); !ok {
		panic(fmt.Sprintf("scale: variant %s: %s does not implement %s",
			name, reflect.TypeFor[V](), reflect.TypeFor[T]()))
	}
	return variant[T, V]{index: index, name: name, c: c}
}

func (v variant[T, V]) Index() uint8          { return v.index }
func (v variant[T, V]) Name() string          { return v.name }
func (v variant[T, V]) payload() reflect.Type { return reflect.TypeFor[V]() }
func (v variant[T, V]) encode(w *Writer, x T) { v.c.Encode(w, any(x).(V)) }
func (v variant[T, V]) bound() Bound          { return v.c.MaxEncodedLen() }
func (v variant[T, V]) minLen() int           { return v.c.MinEncodedLen() }

func (v variant[T, V]) decode(r *Reader) (T, error) {
	x, err := v.c.Decode(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return any(x).(T), nil
}

type enumCodec[T any] struct {
	name    string
	byIndex [256]Variant[T]
	byType  map[reflect.Type]Variant[T]
	all     []Variant[T]
}

// EnumOf returns the Codec of a sum type: one discriminant byte followed by
// the payload of the selected variant. Decoding an undeclared discriminant
// fails with ErrInvalidDiscriminant. EnumOf panics on duplicate indexes or
// payload types.
func EnumOf[T any](name string, variants ...Variant[T]) Codec[T] {
	c := &enumCodec[T]{
		name:   name,
		byType: make(map[reflect.Type]Variant[T], len(variants)),
		all:    variants,
	}
	for _, v := range variants {
		if prev := c.byIndex[v.Index()]; prev != nil {
			panic(fmt.Sprintf("scale: enum %s: variants %s and %s share index %d",
				name, prev.Name(), v.Name(), v.Index()))
		}
		if _, dup := c.byType[v.payload()]; dup {
			panic(fmt.Sprintf("scale: enum %s: payload type %s declared twice", name, v.payload()))
		}
		c.byIndex[v.Index()] = v
		c.byType[v.payload()] = v
	}
	return c
}

func (c *enumCodec[T]) Encode(w *Writer, x T) {
	v, ok := c.byType[reflect.TypeOf(any(x))]
	if !ok {
		w.Fail(fmt.Errorf("%w: %T is not a variant of enum %s", ErrUnsupportedType, x, c.name))
		return
	}
	_ = w.WriteByte(v.Index())
	v.encode(w, x)
}

func (c *enumCodec[T]) Decode(r *Reader) (T, error) {
	var zero T
	b, err := r.ReadByte()
	if err != nil {
		return zero, err
	}
	v := c.byIndex[b]
	if v == nil {
		return zero, r.Fail(detailf(ErrInvalidDiscriminant, "%d for enum %s", b, c.name))
	}
	x, err := v.decode(r)
	if err != nil {
		return zero, Annotate(err, variantStep(v.Name(), c.name))
	}
	return x, nil
}

func (c *enumCodec[T]) MaxEncodedLen() Bound {
	bounds := make([]Bound, len(c.all))
	for i, v := range c.all {
		bounds[i] = v.bound()
	}
	return EnumBound(bounds...)
}

func (c *enumCodec[T]) MinEncodedLen() int {
	if len(c.all) == 0 {
		return 1
	}
	least := c.all[0].minLen()
	for _, v := range c.all[1:] {
		least = min(least, v.minLen())
	}
	return 1 + least
}
