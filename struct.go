package scale

// Field is one member of a struct layout built with StructOf.
type Field[S any] interface {
	Name() string
	encode(w *Writer, s *S)
	decode(r *Reader, s *S) error
	bound() Bound
	minLen() int
}

type field[S, F any] struct {
	name string
	ref  func(*S) *F
	c    Codec[F]
}

// FieldOf declares a struct member. ref returns the address of the member
// inside the struct; c is the member's codec.
func FieldOf[S, F any](name string, ref func(*S) *F, c Codec[F]) Field[S] {
	return field[S, F]{name: name, ref: ref, c: c}
}

func (f field[S, F]) Name() string { return f.name }

func (f field[S, F]) encode(w *Writer, s *S) { f.c.Encode(w, *f.ref(s)) }

func (f field[S, F]) decode(r *Reader, s *S) error {
	v, err := f.c.Decode(r)
	if err != nil {
		return err
	}
	*f.ref(s) = v
	return nil
}

func (f field[S, F]) bound() Bound { return f.c.MaxEncodedLen() }
func (f field[S, F]) minLen() int  { return f.c.MinEncodedLen() }

type structCodec[S any] struct {
	name   string
	fields []Field[S]
}

// StructOf returns the Codec of a product type: its fields in declaration
// order, with no framing. name appears in decode error paths.
func StructOf[S any](name string, fields ...Field[S]) Codec[S] {
	return structCodec[S]{name: name, fields: fields}
}

func (c structCodec[S]) Encode(w *Writer, v S) {
	for _, f := range c.fields {
		if w.err != nil {
			return
		}
		f.encode(w, &v)
	}
}

func (c structCodec[S]) Decode(r *Reader) (S, error) {
	var v S
	for _, f := range c.fields {
		if err := f.decode(r, &v); err != nil {
			var zero S
			return zero, Annotate(err, fieldStep(f.Name(), c.name))
		}
	}
	return v, nil
}

func (c structCodec[S]) MaxEncodedLen() Bound {
	var total Bound
	for _, f := range c.fields {
		total = total.Add(f.bound())
	}
	return total
}

func (c structCodec[S]) MinEncodedLen() int {
	n := 0
	for _, f := range c.fields {
		n += f.minLen()
	}
	return n
}
