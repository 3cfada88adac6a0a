package scale

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// A machine encodes and decodes one Go type by reflection. Machines are
// compiled once per type and cached, so the type definition is walked only
// on first use.
type machine interface {
	encode(w *Writer, v reflect.Value)
	// decode fills v, which is always settable.
	decode(r *Reader, v reflect.Value) error
	bound() Bound
	minLen() int
}

var (
	machines  = xsync.NewMap[reflect.Type, machine]()
	compileMu sync.Mutex

	encodableType = reflect.TypeFor[Encodable]()
	decodableType = reflect.TypeFor[Decodable]()
	boundedType   = reflect.TypeFor[Bounded]()
	minSizerType  = reflect.TypeFor[minSizer]()
	optionIface   = reflect.TypeFor[interface{ isOption() }]()
	resultIface   = reflect.TypeFor[interface{ isResult() }]()
	uint128Type   = reflect.TypeFor[Uint128]()
)

// machineFor returns the cached machine of t, compiling it if needed.
func machineFor(t reflect.Type) (machine, error) {
	if m, ok := machines.Load(t); ok {
		return m, nil
	}
	compileMu.Lock()
	defer compileMu.Unlock()

	c := compiler{
		pending: make(map[reflect.Type]*lazyMachine),
		built:   make(map[reflect.Type]machine),
	}
	m, err := c.compile(t)
	if err != nil {
		return nil, err
	}
	// Publish only once the whole graph compiled.
	for typ, bm := range c.built {
		machines.Store(typ, bm)
	}
	return m, nil
}

type compiler struct {
	pending map[reflect.Type]*lazyMachine
	built   map[reflect.Type]machine
}

func (c *compiler) compile(t reflect.Type) (machine, error) {
	if m, ok := machines.Load(t); ok {
		return m, nil
	}
	if m, ok := c.built[t]; ok {
		return m, nil
	}
	// A type reached again while it is being compiled is recursive.
	if lazy, ok := c.pending[t]; ok {
		return lazy, nil
	}
	lazy := &lazyMachine{}
	c.pending[t] = lazy
	defer delete(c.pending, t)

	m, err := c.build(t)
	if err != nil {
		return nil, err
	}
	lazy.m = m
	c.built[t] = m
	return m, nil
}

func (c *compiler) build(t reflect.Type) (machine, error) {
	switch {
	case t.Kind() == reflect.Struct && t.Implements(optionIface):
		return c.buildOption(t)
	case t.Kind() == reflect.Struct && t.Implements(resultIface):
		return c.buildResult(t)
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(encodableType):
		return selfMachine{t: t, decodable: reflect.PointerTo(t).Implements(decodableType)}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolMachine{}, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return intMachine{size: int(t.Size())}, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intMachine{size: int(t.Size()), signed: true}, nil
	case reflect.Int, reflect.Uint:
		if !ExtendedTypes {
			return nil, unsupported(t, "platform-sized integers need the scale_ext build tag")
		}
		return intMachine{size: 8, signed: t.Kind() == reflect.Int}, nil
	case reflect.Float32, reflect.Float64:
		if !ExtendedTypes {
			return nil, unsupported(t, "floats need the scale_ext build tag")
		}
		return floatMachine{size: int(t.Size())}, nil
	case reflect.String:
		return stringMachine{}, nil
	case reflect.Slice:
		if isPlainByte(t.Elem()) {
			return bytesMachine{}, nil
		}
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return &sliceMachine{t: t, elem: elem}, nil
	case reflect.Array:
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return &arrayMachine{n: t.Len(), elem: elem, raw: isPlainByte(t.Elem())}, nil
	case reflect.Pointer:
		elem, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return &ptrMachine{t: t, elem: elem}, nil
	case reflect.Struct:
		return c.buildStruct(t)
	case reflect.Map:
		if !ExtendedTypes {
			return nil, unsupported(t, "maps need the scale_ext build tag")
		}
		k, err := c.compile(t.Key())
		if err != nil {
			return nil, err
		}
		v, err := c.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return &mapMachine{t: t, key: k, val: v}, nil
	}
	return nil, unsupported(t, "")
}

func (c *compiler) buildStruct(t reflect.Type) (machine, error) {
	sm := &structMachine{name: t.Name()}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		var (
			m   machine
			err error
		)
		switch tag {
		case "":
			m, err = c.compile(f.Type)
		case tagCompact:
			m, err = compactFor(f.Type)
		default:
			err = unsupported(t, fmt.Sprintf("field %s has unknown tag %q", f.Name, tag))
		}
		if err != nil {
			return nil, err
		}
		sm.fields = append(sm.fields, structField{index: i, name: f.Name, m: m})
	}
	return sm, nil
}

func (c *compiler) buildOption(t reflect.Type) (machine, error) {
	value, _ := t.FieldByName("Value")
	valid, _ := t.FieldByName("Valid")
	elem, err := c.compile(value.Type)
	if err != nil {
		return nil, err
	}
	return &optionMachine{value: value.Index[0], valid: valid.Index[0], elem: elem}, nil
}

func (c *compiler) buildResult(t reflect.Type) (machine, error) {
	okf, _ := t.FieldByName("Ok")
	errf, _ := t.FieldByName("Err")
	isErr, _ := t.FieldByName("IsErr")
	ok, err := c.compile(okf.Type)
	if err != nil {
		return nil, err
	}
	e, err := c.compile(errf.Type)
	if err != nil {
		return nil, err
	}
	return &resultMachine{ok: ok, err: e, okIdx: okf.Index[0], errIdx: errf.Index[0], isErr: isErr.Index[0]}, nil
}

func compactFor(t reflect.Type) (machine, error) {
	switch t.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return compactMachine{max: math.MaxUint64 >> (64 - 8*t.Size())}, nil
	case reflect.Uint:
		if ExtendedTypes {
			return compactMachine{max: math.MaxUint}, nil
		}
	}
	if t == uint128Type {
		return compact128Machine{}, nil
	}
	return nil, unsupported(t, "compact applies to unsigned integers only")
}

// isPlainByte reports whether t is a byte without an encoding of its own,
// so sequences of it can be copied in bulk.
func isPlainByte(t reflect.Type) bool {
	return t.Kind() == reflect.Uint8 && !reflect.PointerTo(t).Implements(encodableType)
}

func unsupported(t reflect.Type, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return fmt.Errorf("%w: %s: %s", ErrUnsupportedType, t, detail)
}

// lazyMachine stands in for a type that is still being compiled. It is
// only reachable through a recursive type, which is Unbounded.
type lazyMachine struct{ m machine }

func (l *lazyMachine) encode(w *Writer, v reflect.Value) { l.m.encode(w, v) }
func (l *lazyMachine) decode(r *Reader, v reflect.Value) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	return l.m.decode(r, v)
}
func (l *lazyMachine) bound() Bound { return Unbounded }
func (l *lazyMachine) minLen() int  { return 0 }

type boolMachine struct{}

func (boolMachine) encode(w *Writer, v reflect.Value) { w.WriteBool(v.Bool()) }

func (boolMachine) decode(r *Reader, v reflect.Value) error {
	var b bool
	r.ReadBool(&b)
	if r.err == nil {
		v.SetBool(b)
	}
	return r.err
}

func (boolMachine) bound() Bound { return Fixed(1) }
func (boolMachine) minLen() int  { return 1 }

type intMachine struct {
	size   int
	signed bool
}

func (m intMachine) encode(w *Writer, v reflect.Value) {
	var u uint64
	if m.signed {
		u = uint64(v.Int())
	} else {
		u = v.Uint()
	}
	switch m.size {
	case 1:
		w.WriteUint8(uint8(u))
	case 2:
		w.WriteUint16(uint16(u))
	case 4:
		w.WriteUint32(uint32(u))
	default:
		w.WriteUint64(u)
	}
}

func (m intMachine) decode(r *Reader, v reflect.Value) error {
	var buf [8]byte
	if err := r.ReadFull(buf[:m.size]); err != nil {
		return err
	}
	u := Order.Uint64(buf[:])
	if !m.signed {
		if v.OverflowUint(u) {
			return r.Fail(unsupported(v.Type(), fmt.Sprintf("%d overflows", u)))
		}
		v.SetUint(u)
		return nil
	}
	var i int64
	switch m.size {
	case 1:
		i = int64(int8(u))
	case 2:
		i = int64(int16(u))
	case 4:
		i = int64(int32(u))
	default:
		i = int64(u)
	}
	if v.OverflowInt(i) {
		return r.Fail(unsupported(v.Type(), fmt.Sprintf("%d overflows", i)))
	}
	v.SetInt(i)
	return nil
}

func (m intMachine) bound() Bound { return Fixed(m.size) }
func (m intMachine) minLen() int  { return m.size }

type floatMachine struct{ size int }

func (m floatMachine) encode(w *Writer, v reflect.Value) {
	if m.size == 4 {
		w.WriteUint32(math.Float32bits(float32(v.Float())))
		return
	}
	w.WriteUint64(math.Float64bits(v.Float()))
}

func (m floatMachine) decode(r *Reader, v reflect.Value) error {
	if m.size == 4 {
		var u uint32
		r.ReadUint32(&u)
		if r.err == nil {
			v.SetFloat(float64(math.Float32frombits(u)))
		}
		return r.err
	}
	var u uint64
	r.ReadUint64(&u)
	if r.err == nil {
		v.SetFloat(math.Float64frombits(u))
	}
	return r.err
}

func (m floatMachine) bound() Bound { return Fixed(m.size) }
func (m floatMachine) minLen() int  { return m.size }

type compactMachine struct{ max uint64 }

func (compactMachine) encode(w *Writer, v reflect.Value) { w.WriteCompact(v.Uint()) }

func (m compactMachine) decode(r *Reader, v reflect.Value) error {
	var u uint64
	if err := readCompactInto(r, &u, m.max); err != nil {
		return err
	}
	v.SetUint(u)
	return nil
}

func (m compactMachine) bound() Bound { return Fixed(CompactLen(m.max)) }
func (compactMachine) minLen() int    { return 1 }

type compact128Machine struct{}

func (compact128Machine) encode(w *Writer, v reflect.Value) {
	w.WriteCompact128(v.Interface().(Uint128))
}

func (compact128Machine) decode(r *Reader, v reflect.Value) error {
	var u Uint128
	if err := r.ReadCompact128(&u); err != nil {
		return err
	}
	v.Set(reflect.ValueOf(u))
	return nil
}

func (compact128Machine) bound() Bound { return CompactU128.MaxEncodedLen() }
func (compact128Machine) minLen() int  { return 1 }

type stringMachine struct{}

func (stringMachine) encode(w *Writer, v reflect.Value) {
	s := v.String()
	w.WriteLen(len(s))
	_, _ = w.WriteString(s)
}

func (stringMachine) decode(r *Reader, v reflect.Value) error {
	n, err := r.ReadLen(1)
	if err != nil {
		return err
	}
	b, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	v.SetString(string(b))
	return nil
}

func (stringMachine) bound() Bound { return Unbounded }
func (stringMachine) minLen() int  { return 1 }

type bytesMachine struct{}

func (bytesMachine) encode(w *Writer, v reflect.Value) {
	w.WriteLen(v.Len())
	w.WriteBytes(v.Bytes())
}

func (bytesMachine) decode(r *Reader, v reflect.Value) error {
	n, err := r.ReadLen(1)
	if err != nil {
		return err
	}
	b, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	v.SetBytes(b)
	return nil
}

func (bytesMachine) bound() Bound { return Unbounded }
func (bytesMachine) minLen() int  { return 1 }

type sliceMachine struct {
	t    reflect.Type
	elem machine
}

func (m *sliceMachine) encode(w *Writer, v reflect.Value) {
	n := v.Len()
	w.WriteLen(n)
	for i := 0; i < n && w.err == nil; i++ {
		m.elem.encode(w, v.Index(i))
	}
}

func (m *sliceMachine) decode(r *Reader, v reflect.Value) error {
	minElem := m.elem.minLen()
	n, err := r.ReadLen(minElem)
	if err != nil {
		return err
	}
	capacity := n
	if r.Remaining() == UnknownRemaining || minElem == 0 {
		capacity = min(n, MaxPreallocation/max(1, int(m.t.Elem().Size())))
	}
	s := reflect.MakeSlice(m.t, 0, capacity)
	zero := reflect.Zero(m.t.Elem())
	for i := range n {
		s = reflect.Append(s, zero)
		if err := m.elem.decode(r, s.Index(i)); err != nil {
			return Annotate(err, elementStep(i))
		}
	}
	v.Set(s)
	return nil
}

func (m *sliceMachine) bound() Bound { return Unbounded }
func (m *sliceMachine) minLen() int  { return 1 }

type arrayMachine struct {
	n    int
	elem machine
	raw  bool
}

func (m *arrayMachine) encode(w *Writer, v reflect.Value) {
	if m.raw && v.CanAddr() {
		w.WriteBytes(v.Bytes())
		return
	}
	for i := 0; i < m.n && w.err == nil; i++ {
		m.elem.encode(w, v.Index(i))
	}
}

func (m *arrayMachine) decode(r *Reader, v reflect.Value) error {
	if err := r.CheckLen(uint64(m.n), m.elem.minLen()); err != nil {
		return err
	}
	if m.raw {
		return r.ReadFull(v.Bytes())
	}
	for i := range m.n {
		if err := m.elem.decode(r, v.Index(i)); err != nil {
			return Annotate(err, elementStep(i))
		}
	}
	return nil
}

func (m *arrayMachine) bound() Bound { return m.elem.bound().Mul(m.n) }
func (m *arrayMachine) minLen() int  { return m.n * m.elem.minLen() }

// ptrMachine encodes a pointer as an option of its target.
type ptrMachine struct {
	t    reflect.Type
	elem machine
}

func (m *ptrMachine) encode(w *Writer, v reflect.Value) {
	if v.IsNil() {
		_ = w.WriteByte(0)
		return
	}
	_ = w.WriteByte(1)
	m.elem.encode(w, v.Elem())
}

func (m *ptrMachine) decode(r *Reader, v reflect.Value) error {
	ok, err := readOptionTag(r)
	if err != nil {
		return err
	}
	if !ok {
		v.SetZero()
		return nil
	}
	p := reflect.New(m.t.Elem())
	if err := m.elem.decode(r, p.Elem()); err != nil {
		return err
	}
	v.Set(p)
	return nil
}

func (m *ptrMachine) bound() Bound { return Fixed(1).Add(m.elem.bound()) }
func (m *ptrMachine) minLen() int  { return 1 }

type optionMachine struct {
	value, valid int
	elem         machine
}

func (m *optionMachine) encode(w *Writer, v reflect.Value) {
	if !v.Field(m.valid).Bool() {
		_ = w.WriteByte(0)
		return
	}
	_ = w.WriteByte(1)
	m.elem.encode(w, v.Field(m.value))
}

func (m *optionMachine) decode(r *Reader, v reflect.Value) error {
	ok, err := readOptionTag(r)
	if err != nil {
		return err
	}
	v.SetZero()
	if !ok {
		return nil
	}
	if err := m.elem.decode(r, v.Field(m.value)); err != nil {
		return err
	}
	v.Field(m.valid).SetBool(true)
	return nil
}

func (m *optionMachine) bound() Bound { return Fixed(1).Add(m.elem.bound()) }
func (m *optionMachine) minLen() int  { return 1 }

type resultMachine struct {
	ok, err              machine
	okIdx, errIdx, isErr int
}

func (m *resultMachine) encode(w *Writer, v reflect.Value) {
	if v.Field(m.isErr).Bool() {
		_ = w.WriteByte(1)
		m.err.encode(w, v.Field(m.errIdx))
		return
	}
	_ = w.WriteByte(0)
	m.ok.encode(w, v.Field(m.okIdx))
}

func (m *resultMachine) decode(r *Reader, v reflect.Value) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	v.SetZero()
	switch b {
	case 0:
		return Annotate(m.ok.decode(r, v.Field(m.okIdx)), variantStep("Ok", "Result"))
	case 1:
		v.Field(m.isErr).SetBool(true)
		return Annotate(m.err.decode(r, v.Field(m.errIdx)), variantStep("Err", "Result"))
	}
	return r.Fail(detailf(ErrInvalidResultTag, "0x%02x", b))
}

func (m *resultMachine) bound() Bound { return EnumBound(m.ok.bound(), m.err.bound()) }
func (m *resultMachine) minLen() int  { return 1 + min(m.ok.minLen(), m.err.minLen()) }

type structField struct {
	index int
	name  string
	m     machine
}

type structMachine struct {
	name   string
	fields []structField
}

func (m *structMachine) encode(w *Writer, v reflect.Value) {
	for _, f := range m.fields {
		if w.err != nil {
			return
		}
		f.m.encode(w, v.Field(f.index))
	}
}

func (m *structMachine) decode(r *Reader, v reflect.Value) error {
	for _, f := range m.fields {
		if err := f.m.decode(r, v.Field(f.index)); err != nil {
			return Annotate(err, fieldStep(f.name, m.name))
		}
	}
	return nil
}

func (m *structMachine) bound() Bound {
	var total Bound
	for _, f := range m.fields {
		total = total.Add(f.m.bound())
	}
	return total
}

func (m *structMachine) minLen() int {
	n := 0
	for _, f := range m.fields {
		n += f.m.minLen()
	}
	return n
}

// selfMachine defers to a type's own EncodeTo and DecodeFrom. Types that
// only encode, such as views, fail to decode.
type selfMachine struct {
	t         reflect.Type
	decodable bool
}

func (m selfMachine) encode(w *Writer, v reflect.Value) {
	if !v.CanAddr() {
		p := reflect.New(m.t)
		p.Elem().Set(v)
		v = p.Elem()
	}
	w.Encode(v.Addr().Interface().(Encodable))
}

func (m selfMachine) decode(r *Reader, v reflect.Value) error {
	if !m.decodable {
		return r.Fail(unsupported(m.t, "type is encode-only"))
	}
	return r.Decode(v.Addr().Interface().(Decodable))
}

func (m selfMachine) bound() Bound {
	p := reflect.New(m.t)
	if p.Type().Implements(boundedType) {
		return p.Interface().(Bounded).MaxEncodedLen()
	}
	return Unbounded
}

func (m selfMachine) minLen() int {
	p := reflect.New(m.t)
	if p.Type().Implements(minSizerType) {
		return p.Interface().(minSizer).MinEncodedLen()
	}
	return 0
}

// mapMachine encodes a map as a sequence of pairs sorted by encoded key, so
// equal maps always produce the same bytes.
type mapMachine struct {
	t        reflect.Type
	key, val machine
}

func (m *mapMachine) encode(w *Writer, v reflect.Value) {
	type pair struct {
		key []byte
		val reflect.Value
	}
	pairs := make([]pair, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var buf bytes.Buffer
		kw := &Writer{w: &bytesBufferWriterAdapter{&buf}}
		m.key.encode(kw, iter.Key())
		if kw.err != nil {
			w.Fail(kw.err)
			return
		}
		pairs = append(pairs, pair{key: buf.Bytes(), val: iter.Value()})
	}
	slices.SortFunc(pairs, func(a, b pair) int { return bytes.Compare(a.key, b.key) })

	w.WriteLen(len(pairs))
	for _, p := range pairs {
		if w.err != nil {
			return
		}
		w.WriteBytes(p.key)
		m.val.encode(w, p.val)
	}
}

func (m *mapMachine) decode(r *Reader, v reflect.Value) error {
	n, err := r.ReadLen(m.key.minLen() + m.val.minLen())
	if err != nil {
		return err
	}
	out := reflect.MakeMapWithSize(m.t, min(n, MaxPreallocation))
	for i := range n {
		k := reflect.New(m.t.Key()).Elem()
		if err := m.key.decode(r, k); err != nil {
			return Annotate(err, elementStep(i))
		}
		val := reflect.New(m.t.Elem()).Elem()
		if err := m.val.decode(r, val); err != nil {
			return Annotate(err, elementStep(i))
		}
		out.SetMapIndex(k, val)
	}
	v.Set(out)
	return nil
}

func (m *mapMachine) bound() Bound { return Unbounded }
func (m *mapMachine) minLen() int  { return 1 }
