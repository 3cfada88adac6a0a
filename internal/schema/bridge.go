package schema

import "github.com/oy3o/scale"

// bridged adapts a typed codec to dynamic values. Conversion failures on
// the way in are latched by the Writer like any other encoding error.
type bridged[T any] struct {
	c   scale.Codec[T]
	in  func(any) (T, error)
	out func(T) any
}

func bridge[T any](c scale.Codec[T], in func(any) (T, error), out func(T) any) scale.Codec[any] {
	return bridged[T]{c: c, in: in, out: out}
}

func (b bridged[T]) Encode(w *scale.Writer, v any) {
	x, err := b.in(v)
	if err != nil {
		w.Fail(err)
		return
	}
	b.c.Encode(w, x)
}

func (b bridged[T]) Decode(r *scale.Reader) (any, error) {
	x, err := b.c.Decode(r)
	if err != nil {
		return nil, err
	}
	return b.out(x), nil
}

func (b bridged[T]) MaxEncodedLen() scale.Bound { return b.c.MaxEncodedLen() }
func (b bridged[T]) MinEncodedLen() int         { return b.c.MinEncodedLen() }
