package schema

import (
	"fmt"
	"strconv"

	"github.com/oy3o/scale"
)

type namedSlot struct {
	c scale.Codec[any]
}

type compiler struct {
	reg *Registry
	// named holds the named types of this compilation. A slot with a nil
	// codec is still being compiled, so reaching it again means recursion.
	named map[string]*namedSlot
}

func (c *compiler) compile(t *Type) (scale.Codec[any], error) {
	switch t.Kind {
	case KindBool:
		return bridge(scale.Bool, toBool, identity[bool]), nil
	case KindU8:
		return bridge(scale.U8, toUint[uint8], widenUint[uint8]), nil
	case KindU16:
		return bridge(scale.U16, toUint[uint16], widenUint[uint16]), nil
	case KindU32:
		return bridge(scale.U32, toUint[uint32], widenUint[uint32]), nil
	case KindU64:
		return bridge(scale.U64, toUint[uint64], widenUint[uint64]), nil
	case KindU128:
		return bridge(scale.U128, toUint128, bigUint128), nil
	case KindI8:
		return bridge(scale.I8, toInt[int8], widenInt[int8]), nil
	case KindI16:
		return bridge(scale.I16, toInt[int16], widenInt[int16]), nil
	case KindI32:
		return bridge(scale.I32, toInt[int32], widenInt[int32]), nil
	case KindI64:
		return bridge(scale.I64, toInt[int64], widenInt[int64]), nil
	case KindI128:
		return bridge(scale.I128, toInt128, func(v scale.Int128) any { return v.Big() }), nil
	case KindStr:
		return bridge(scale.String, toString, identity[string]), nil
	case KindBytes:
		return bridge(scale.Bytes, toBytes, identity[[]byte]), nil
	case KindBitVec:
		return bridge(scale.Bits, toBitVec, func(b scale.BitVec) any { return b.String() }), nil
	case KindCompact:
		return compileCompact(t.Elem)
	case KindVec:
		if t.Elem.Kind == KindU8 {
			return bridge(scale.Bytes, toBytes, identity[[]byte]), nil
		}
		elem, err := c.compile(t.Elem)
		if err != nil {
			return nil, err
		}
		return bridge(scale.SliceOf(elem), toList, identity[[]any]), nil
	case KindOption:
		if t.Elem.Kind == KindBool {
			return bridge(scale.OptionBool, toOption(toBool), fromOption[bool]), nil
		}
		elem, err := c.compile(t.Elem)
		if err != nil {
			return nil, err
		}
		return bridge(scale.OptionOf(elem), toOption(identityErr), fromOption[any]), nil
	case KindResult:
		ok, err := c.compile(t.Elem)
		if err != nil {
			return nil, err
		}
		e, err := c.compile(t.Err)
		if err != nil {
			return nil, err
		}
		return bridge(scale.ResultOf(ok, e), toResult, fromResult), nil
	case KindArray:
		if t.Elem.Kind == KindU8 {
			return bridge(scale.FixedBytes(t.Len), toBytes, identity[[]byte]), nil
		}
		elem, err := c.compile(t.Elem)
		if err != nil {
			return nil, err
		}
		return bridge(scale.ArrayOf(elem, t.Len), toList, identity[[]any]), nil
	case KindTuple:
		fields := make([]FieldDef, len(t.Members))
		for i, m := range t.Members {
			fields[i] = FieldDef{Name: strconv.Itoa(i), Type: m.String()}
		}
		layout, err := c.record(t.String(), fields, t.Members)
		if err != nil {
			return nil, err
		}
		return bridge(layout, tupleIn(len(fields)), tupleOut), nil
	case KindNamed:
		return c.compileNamed(t.Name)
	}
	return nil, fmt.Errorf("schema: cannot compile %s", t)
}

func (c *compiler) compileNamed(name string) (scale.Codec[any], error) {
	if slot, ok := c.named[name]; ok {
		if slot.c != nil {
			return slot.c, nil
		}
		return scale.Recursive(func() scale.Codec[any] { return slot.c }), nil
	}
	def, ok := c.reg.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	slot := &namedSlot{}
	c.named[name] = slot

	var (
		codec scale.Codec[any]
		err   error
	)
	switch {
	case def.Alias != "":
		var t *Type
		if t, err = Parse(def.Alias); err == nil {
			codec, err = c.compile(t)
		}
	case def.Struct != nil:
		codec, err = c.namedStruct(name, def.Struct)
	default:
		codec, err = c.enum(name, def.Enum)
	}
	if err != nil {
		delete(c.named, name)
		return nil, err
	}
	slot.c = codec
	return codec, nil
}

func (c *compiler) namedStruct(name string, fields []FieldDef) (scale.Codec[any], error) {
	types, err := parseFields(fields)
	if err != nil {
		return nil, err
	}
	layout, err := c.record(name, fields, types)
	if err != nil {
		return nil, err
	}
	return bridge(layout, structIn(name, fields), structOut(fields)), nil
}

func parseFields(fields []FieldDef) ([]*Type, error) {
	types := make([]*Type, len(fields))
	for i, f := range fields {
		t, err := Parse(f.Type)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

// record is the positional form of struct and tuple values.
type record struct{ vals []any }

func (r *record) at(i int) *any {
	for len(r.vals) <= i {
		r.vals = append(r.vals, nil)
	}
	return &r.vals[i]
}

func (c *compiler) record(name string, fields []FieldDef, types []*Type) (scale.Codec[record], error) {
	members := make([]scale.Field[record], len(fields))
	for i, f := range fields {
		fc, err := c.compile(types[i])
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", f.Name, name, err)
		}
		members[i] = scale.FieldOf(f.Name, func(r *record) *any { return r.at(i) }, fc)
	}
	return scale.StructOf(name, members...), nil
}

func tupleIn(n int) func(any) (record, error) {
	return func(v any) (record, error) {
		if n == 0 && v == nil {
			return record{}, nil
		}
		l, err := toList(v)
		if err != nil {
			return record{}, err
		}
		if len(l) != n {
			return record{}, fmt.Errorf("%w: tuple of %d members, got %d", ErrValue, n, len(l))
		}
		return record{vals: l}, nil
	}
}

func tupleOut(r record) any {
	if r.vals == nil {
		return []any{}
	}
	return r.vals
}

func structIn(name string, fields []FieldDef) func(any) (record, error) {
	return func(v any) (record, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return record{}, mismatch("object for "+name, v)
		}
		r := record{vals: make([]any, len(fields))}
		known := make(map[string]bool, len(fields))
		for i, f := range fields {
			fv, ok := m[f.Name]
			if !ok {
				return record{}, fmt.Errorf("%w: %s is missing field %s", ErrValue, name, f.Name)
			}
			r.vals[i] = fv
			known[f.Name] = true
		}
		for _, k := range sortedKeys(m) {
			if !known[k] {
				return record{}, fmt.Errorf("%w: %s has no field %s", ErrValue, name, k)
			}
		}
		return r, nil
	}
}

func structOut(fields []FieldDef) func(record) any {
	return func(r record) any {
		m := make(map[string]any, len(fields))
		for i, f := range fields {
			m[f.Name] = *r.at(i)
		}
		return m
	}
}

func compileCompact(t *Type) (scale.Codec[any], error) {
	switch t.Kind {
	case KindU8:
		return bridge(scale.CompactU8, toUint[uint8], widenUint[uint8]), nil
	case KindU16:
		return bridge(scale.CompactU16, toUint[uint16], widenUint[uint16]), nil
	case KindU32:
		return bridge(scale.CompactU32, toUint[uint32], widenUint[uint32]), nil
	case KindU64:
		return bridge(scale.CompactU64, toUint[uint64], widenUint[uint64]), nil
	case KindU128:
		return bridge(scale.CompactU128, toUint128, bigUint128), nil
	}
	return nil, fmt.Errorf("schema: Compact<%s> is not supported", t)
}

func identity[T any](v T) any { return v }

func identityErr(v any) (any, error) { return v, nil }

func widenUint[T uint8 | uint16 | uint32 | uint64](v T) any { return uint64(v) }
func widenInt[T int8 | int16 | int32 | int64](v T) any      { return int64(v) }

func bigUint128(v scale.Uint128) any { return v.Big() }

func toOption[T any](in func(any) (T, error)) func(any) (scale.Option[T], error) {
	return func(v any) (scale.Option[T], error) {
		if v == nil {
			return scale.None[T](), nil
		}
		x, err := in(v)
		if err != nil {
			return scale.None[T](), err
		}
		return scale.Some(x), nil
	}
}

func fromOption[T any](o scale.Option[T]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

func toResult(v any) (scale.Result[any, any], error) {
	switch tag, payload, _ := single(v); tag {
	case "Ok":
		return scale.Ok[any, any](payload), nil
	case "Err":
		return scale.Err[any](payload), nil
	}
	return scale.Result[any, any]{}, mismatch(`{"Ok": ...} or {"Err": ...}`, v)
}

func fromResult(r scale.Result[any, any]) any {
	if r.IsErr {
		return map[string]any{"Err": r.Err}
	}
	return map[string]any{"Ok": r.Ok}
}
