package scale

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type header struct {
	Number  uint32 `scale:"compact"`
	Extra   []uint16
	Name    string
	Skipped string `scale:"-"`
	hidden  uint8
	Maybe   *uint8
	Opt     Option[uint16]
	Res     Result[uint8, string]
	Big     Uint128
	Bits    BitVec
}

var headerCodec = StructOf("header",
	FieldOf("Number", func(h *header) *uint32 { return &h.Number }, CompactU32),
	FieldOf("Extra", func(h *header) *[]uint16 { return &h.Extra }, SliceOf(U16)),
	FieldOf("Name", func(h *header) *string { return &h.Name }, String),
	FieldOf("Maybe", func(h *header) **uint8 { return &h.Maybe }, PointerOf(U8)),
	FieldOf("Opt", func(h *header) *Option[uint16] { return &h.Opt }, OptionOf(U16)),
	FieldOf("Res", func(h *header) *Result[uint8, string] { return &h.Res }, ResultOf(U8, String)),
	FieldOf("Big", func(h *header) *Uint128 { return &h.Big }, U128),
	FieldOf("Bits", func(h *header) *BitVec { return &h.Bits }, Bits),
)

type fixedHeader struct {
	A uint8
	B [3]uint16
	C bool
	D *uint32
	E uint64 `scale:"compact"`
	F [2]byte
}

type node struct {
	Value uint8
	Next  *node
}

type link struct{ Next *link }

type forest struct {
	Label string
	Kids  []forest
}

type MarshalTestSuite struct {
	suite.Suite
}

func (s *MarshalTestSuite) sample() header {
	seven := uint8(7)
	return header{
		Number:  64,
		Extra:   []uint16{5},
		Name:    "ab",
		Skipped: "not encoded",
		hidden:  9,
		Maybe:   &seven,
		Opt:     Some[uint16](7),
		Res:     Err[uint8]("x"),
		Big:     Uint128From(1),
		Bits:    BitVecOf(true),
	}
}

func (s *MarshalTestSuite) TestMatchesCombinators() {
	h := s.sample()
	data, err := Marshal(h)
	s.Require().NoError(err)

	want, err := Encode(headerCodec, h)
	s.Require().NoError(err)
	s.Assert().Equal(want, data)
	s.Assert().Equal([]byte{0x01, 0x01, 0x04, 0x05, 0x00, 0x08, 'a', 'b'}, data[:8])

	var back header
	s.Require().NoError(Unmarshal(data, &back))
	h.Skipped, h.hidden = "", 0
	s.Assert().Equal(h, back)
}

func (s *MarshalTestSuite) TestPointerArgument() {
	h := s.sample()
	direct, err := Marshal(h)
	s.Require().NoError(err)
	viaPointer, err := Marshal(&h)
	s.Require().NoError(err)
	s.Assert().Equal(direct, viaPointer)

	_, err = Marshal((*header)(nil))
	s.Assert().ErrorIs(err, ErrUnsupportedType)
	_, err = Marshal(nil)
	s.Assert().ErrorIs(err, ErrUnsupportedType)

	s.Assert().Equal(errNilPointer, Unmarshal([]byte{0}, header{}))
	s.Assert().Equal(errNilPointer, Unmarshal([]byte{0}, (*header)(nil)))
}

func (s *MarshalTestSuite) TestFixedLayout() {
	v := fixedHeader{A: 1, B: [3]uint16{2, 3, 4}, C: true, E: 1, F: [2]byte{0xAA, 0xBB}}
	data, err := Marshal(v)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{
		0x01,
		0x02, 0x00, 0x03, 0x00, 0x04, 0x00,
		0x01,
		0x00,
		0x04,
		0xAA, 0xBB,
	}, data)

	var back fixedHeader
	s.Require().NoError(Unmarshal(data, &back))
	s.Assert().Equal(v, back)

	b, err := MaxEncodedLenOf(reflect.TypeFor[fixedHeader]())
	s.Require().NoError(err)
	s.Assert().Equal(Fixed(1+6+1+5+9+2), b)

	b, err = MaxEncodedLenOf(reflect.TypeFor[header]())
	s.Require().NoError(err)
	s.Assert().Equal(Unbounded, b)
}

func (s *MarshalTestSuite) TestRecursive() {
	v := node{Value: 1, Next: &node{Value: 2}}
	data, err := Marshal(v)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01, 0x01, 0x02, 0x00}, data)

	var back node
	s.Require().NoError(Unmarshal(data, &back))
	s.Assert().Equal(v, back)

	b, err := MaxEncodedLenOf(reflect.TypeFor[node]())
	s.Require().NoError(err)
	s.Assert().Equal(Unbounded, b)

	f := forest{Label: "r", Kids: []forest{{Label: "a", Kids: []forest{}}}}
	data, err = Marshal(f)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x04, 'r', 0x04, 0x04, 'a', 0x00}, data)
	var fb forest
	s.Require().NoError(Unmarshal(data, &fb))
	s.Assert().Equal(f, fb)
}

func (s *MarshalTestSuite) TestNestingDepth() {
	var deep link
	err := Unmarshal(bytes.Repeat([]byte{0x01}, 2<<20), &deep)
	s.Assert().ErrorIs(err, ErrDepthLimit)

	// Nine links behind the outer value.
	shallow := append(bytes.Repeat([]byte{0x01}, 9), 0x00)
	var back link
	s.Require().NoError(Unmarshal(shallow, &back))
	data, err := Marshal(back)
	s.Require().NoError(err)
	s.Assert().Equal(shallow, data)

	s.Assert().NoError(UnmarshalFrom(NewSliceReader(shallow).WithDepthLimit(9), &back))
	s.Assert().ErrorIs(UnmarshalFrom(NewSliceReader(shallow).WithDepthLimit(8), &back), ErrDepthLimit)
}

func (s *MarshalTestSuite) TestErrors() {
	type errPath struct {
		Name  string
		Extra []uint16
	}
	var v errPath
	err := Unmarshal([]byte{0x04, 'a', 0x08, 0x01, 0x00, 0x02}, &v)
	s.Require().ErrorIs(err, ErrLengthExceedsInput)
	if ChainedErrors {
		s.Assert().Contains(err.Error(), "field Extra of struct errPath: ")
	}

	err = Unmarshal([]byte{0x04, 'a', 0x00, 0xFF}, &v)
	s.Assert().ErrorIs(err, ErrTrailingData)

	var h header
	err = Unmarshal([]byte{0x00, 0x00, 0x00, 0x03}, &h)
	s.Assert().ErrorIs(err, ErrInvalidOptionTag)
}

func (s *MarshalTestSuite) TestUnsupported() {
	always := []any{
		struct{ C chan int }{},
		struct{ F func() }{},
		struct{ I any }{},
		struct {
			N int8 `scale:"compact"`
		}{},
		struct {
			N uint8 `scale:"varint"`
		}{},
	}
	for _, v := range always {
		_, err := Marshal(v)
		s.Assert().ErrorIs(err, ErrUnsupportedType, "%T", v)
	}

	if !ExtendedTypes {
		for _, v := range []any{struct{ N int }{}, struct{ F float64 }{}, struct{ M map[string]uint8 }{}} {
			_, err := Marshal(v)
			s.Assert().ErrorIs(err, ErrUnsupportedType, "%T", v)
		}
	}

	_, err := ReflectOf[struct{ C chan int }]()
	s.Assert().ErrorIs(err, ErrUnsupportedType)
	s.Assert().Panics(func() { MustReflect[func()]() })
}

func (s *MarshalTestSuite) TestReflectOf() {
	type pair struct {
		K uint8
		V string
	}
	c := SliceOf(MustReflect[pair]())
	in := []pair{{1, "a"}, {2, "b"}}
	data, err := Encode(c, in)
	s.Require().NoError(err)

	viaMarshal, err := Marshal(in)
	s.Require().NoError(err)
	s.Assert().Equal(viaMarshal, data)

	out, err := Decode(c, data)
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
	s.Assert().Equal(2, MustReflect[pair]().MinEncodedLen())
}

func (s *MarshalTestSuite) TestOptionAndResultSelfCoding() {
	o := Some[uint32](3)
	data, err := EncodeValue(o)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01, 0x03, 0, 0, 0}, data)
	s.Assert().Equal(Fixed(5), o.MaxEncodedLen())

	var back Option[uint32]
	s.Require().NoError(DecodeValue(&back, data))
	s.Assert().Equal(o, back)

	res := Ok[Option[uint8], string](Some[uint8](1))
	data, err = EncodeValue(res)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00, 0x01, 0x01}, data)
	s.Assert().Equal(Unbounded, res.MaxEncodedLen())
}

func TestMarshal(t *testing.T) {
	suite.Run(t, new(MarshalTestSuite))
}

func TestMachineCacheConcurrent(t *testing.T) {
	type shared struct {
		A uint16
		B []string
	}
	done := make(chan []byte)
	for range 8 {
		go func() {
			data, err := Marshal(shared{A: 1, B: []string{"x"}})
			if err != nil {
				data = nil
			}
			done <- data
		}()
	}
	for range 8 {
		require.Equal(t, []byte{0x01, 0x00, 0x04, 0x04, 'x'}, <-done)
	}
	_, ok := machines.Load(reflect.TypeFor[shared]())
	assert.True(t, ok)
}
