package schema

import (
	"fmt"

	"github.com/oy3o/scale"
)

type variant struct {
	name  string
	index uint8
	// payload is nil for a unit variant.
	payload scale.Codec[any]
}

// enumCodec is the dynamic counterpart of scale.EnumOf. Values are the
// variant name for unit variants or a one-entry object {"Name": payload}.
type enumCodec struct {
	name    string
	byIndex [256]*variant
	byName  map[string]*variant
}

func (c *compiler) enum(name string, defs []VariantDef) (scale.Codec[any], error) {
	e := &enumCodec{name: name, byName: make(map[string]*variant, len(defs))}
	for i, d := range defs {
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		v := &variant{name: d.Name, index: uint8(idx)}
		switch {
		case d.Type != "":
			t, err := Parse(d.Type)
			if err != nil {
				return nil, err
			}
			if v.payload, err = c.compile(t); err != nil {
				return nil, fmt.Errorf("variant %s of %s: %w", d.Name, name, err)
			}
		case d.Fields != nil:
			p, err := c.namedStruct(name+"::"+d.Name, d.Fields)
			if err != nil {
				return nil, err
			}
			v.payload = p
		}
		e.byIndex[v.index] = v
		e.byName[v.name] = v
	}
	return e, nil
}

func (e *enumCodec) Encode(w *scale.Writer, v any) {
	name, payload := "", any(nil)
	switch x := v.(type) {
	case string:
		name = x
	default:
		var ok bool
		if name, payload, ok = single(v); !ok {
			w.Fail(mismatch(`variant name or {"Variant": payload} for `+e.name, v))
			return
		}
	}
	vr, ok := e.byName[name]
	if !ok {
		w.Fail(fmt.Errorf("%w: enum %s has no variant %s", ErrValue, e.name, name))
		return
	}
	_ = w.WriteByte(vr.index)
	if vr.payload != nil {
		vr.payload.Encode(w, payload)
	}
}

func (e *enumCodec) Decode(r *scale.Reader) (any, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	vr := e.byIndex[b]
	if vr == nil {
		return nil, r.Fail(fmt.Errorf("%w: 0x%02x for enum %s", scale.ErrInvalidDiscriminant, b, e.name))
	}
	if vr.payload == nil {
		return vr.name, nil
	}
	payload, err := vr.payload.Decode(r)
	if err != nil {
		return nil, scale.Annotate(err, "variant "+vr.name+" of enum "+e.name)
	}
	return map[string]any{vr.name: payload}, nil
}

func (e *enumCodec) MaxEncodedLen() scale.Bound {
	bounds := make([]scale.Bound, 0, len(e.byName))
	for _, v := range e.byName {
		if v.payload != nil {
			bounds = append(bounds, v.payload.MaxEncodedLen())
		}
	}
	return scale.EnumBound(bounds...)
}

func (e *enumCodec) MinEncodedLen() int {
	least := -1
	for _, v := range e.byName {
		n := 0
		if v.payload != nil {
			n = v.payload.MinEncodedLen()
		}
		if least < 0 || n < least {
			least = n
		}
	}
	return 1 + max(least, 0)
}
