package scale

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type shape interface{ isShape() }

type circle struct{ R uint32 }
type square struct{ Side uint16 }
type point struct{}

func (circle) isShape() {}
func (square) isShape() {}
func (point) isShape()  {}

var shapeCodec = EnumOf[shape]("Shape",
	VariantOf[shape](0, "Circle", StructOf("Circle",
		FieldOf("R", func(c *circle) *uint32 { return &c.R }, U32))),
	VariantOf[shape](1, "Square", StructOf("Square",
		FieldOf("Side", func(s *square) *uint16 { return &s.Side }, U16))),
	VariantOf[shape](2, "Point", Empty[point]()),
)

type account struct {
	Name    string
	Balance uint64
	Flags   []bool
}

var accountCodec = StructOf("Account",
	FieldOf("Name", func(a *account) *string { return &a.Name }, String),
	FieldOf("Balance", func(a *account) *uint64 { return &a.Balance }, CompactU64),
	FieldOf("Flags", func(a *account) *[]bool { return &a.Flags }, SliceOf(Bool)),
)

type CompositeTestSuite struct {
	suite.Suite
}

func (s *CompositeTestSuite) encode(data []byte, err error) []byte {
	s.T().Helper()
	s.Require().NoError(err)
	return data
}

func (s *CompositeTestSuite) TestPrimitives() {
	s.Assert().Equal([]byte{0x01}, s.encode(Encode(Bool, true)))
	s.Assert().Equal([]byte{0xFF, 0xFF}, s.encode(Encode(I16, -1)))
	s.Assert().Equal([]byte{0x78, 0x56, 0x34, 0x12}, s.encode(Encode(U32, 0x12345678)))

	data := s.encode(Encode(I128, Int128From(-2)))
	s.Assert().Equal(append([]byte{0xFE}, bytes.Repeat([]byte{0xFF}, 15)...), data)
	back, err := Decode(I128, data)
	s.Require().NoError(err)
	s.Assert().Equal("-2", back.String())

	_, err = Decode(Bool, []byte{0x02})
	s.Assert().ErrorIs(err, ErrInvalidBool)

	s.Assert().Equal([]byte{1, 2, 3}, s.encode(Encode(FixedBytes(3), []byte{1, 2, 3})))
	_, err = Encode(FixedBytes(3), []byte{1, 2})
	s.Assert().ErrorIs(err, ErrArrayLength)
}

func (s *CompositeTestSuite) TestOption() {
	c := OptionOf(U32)
	s.Assert().Equal([]byte{0x00}, s.encode(Encode(c, None[uint32]())))
	s.Assert().Equal([]byte{0x01, 0x07, 0, 0, 0}, s.encode(Encode(c, Some[uint32](7))))

	v, err := Decode(c, []byte{0x01, 0x07, 0, 0, 0})
	s.Require().NoError(err)
	s.Assert().Equal(Some[uint32](7), v)

	_, err = Decode(c, []byte{0x02})
	s.Assert().ErrorIs(err, ErrInvalidOptionTag)
	s.Assert().Equal(Fixed(5), c.MaxEncodedLen())

	p := PointerOf(U8)
	seven := uint8(7)
	s.Assert().Equal([]byte{0x01, 0x07}, s.encode(Encode(p, &seven)))
	s.Assert().Equal([]byte{0x00}, s.encode(Encode(p, nil)))
}

func (s *CompositeTestSuite) TestOptionBool() {
	for v, want := range map[Option[bool]]byte{
		None[bool](): 0,
		Some(true):   1,
		Some(false):  2,
	} {
		s.Assert().Equal([]byte{want}, s.encode(Encode(OptionBool, v)))
		back, err := Decode(OptionBool, []byte{want})
		s.Require().NoError(err)
		s.Assert().Equal(v, back)
	}
	_, err := Decode(OptionBool, []byte{3})
	s.Assert().ErrorIs(err, ErrInvalidOptionTag)
}

func (s *CompositeTestSuite) TestResult() {
	c := ResultOf(U8, String)
	s.Assert().Equal([]byte{0x00, 0x2A}, s.encode(Encode(c, Ok[uint8, string](42))))
	s.Assert().Equal([]byte{0x01, 0x08, 'n', 'o'}, s.encode(Encode(c, Err[uint8]("no"))))

	v, err := Decode(c, []byte{0x01, 0x08, 'n', 'o'})
	s.Require().NoError(err)
	s.Assert().True(v.IsErr)
	s.Assert().Equal("no", v.Err)

	_, err = Decode(c, []byte{0x02})
	s.Assert().ErrorIs(err, ErrInvalidResultTag)
	s.Assert().Equal(Unbounded, c.MaxEncodedLen())
}

func (s *CompositeTestSuite) TestSequences() {
	c := SliceOf(U16)
	s.Assert().Equal([]byte{0x08, 0x01, 0x00, 0x02, 0x00}, s.encode(Encode(c, []uint16{1, 2})))
	s.Assert().Equal([]byte{0x00}, s.encode(Encode(c, nil)))

	v, err := Decode(c, []byte{0x08, 0x01, 0x00, 0x02, 0x00})
	s.Require().NoError(err)
	s.Assert().Equal([]uint16{1, 2}, v)

	s.Assert().Equal([]byte{0x0C, 'a', 'b', 'c'}, s.encode(Encode(String, "abc")))
	s.Assert().Equal([]byte{0x08, 0xDE, 0xAD}, s.encode(Encode(Bytes, []byte{0xDE, 0xAD})))
	s.Assert().Equal(Unbounded, String.MaxEncodedLen())
}

func (s *CompositeTestSuite) TestDeclaredLengthExceedsInput() {
	// 2^30-1 elements announced, none supplied.
	hostile := []byte{0xFE, 0xFF, 0xFF, 0xFF}

	_, err := Decode(SliceOf(U64), hostile)
	s.Assert().ErrorIs(err, ErrLengthExceedsInput)
	s.Assert().ErrorIs(err, ErrInsufficientInput)

	_, err = Decode(String, hostile)
	s.Assert().ErrorIs(err, ErrLengthExceedsInput)

	// From a stream the count cannot be checked up front; decoding fails
	// once the input runs out.
	_, err = DecodeFrom(streamOnly{bytes.NewReader(hostile)}, SliceOf(U64))
	s.Assert().ErrorIs(err, ErrInsufficientInput)

	_, err = DecodeFrom(streamOnly{bytes.NewReader(hostile)}, Bytes)
	s.Assert().ErrorIs(err, ErrInsufficientInput)
}

func (s *CompositeTestSuite) TestArray() {
	c := ArrayOf(U8, 3)
	s.Assert().Equal([]byte{1, 2, 3}, s.encode(Encode(c, []uint8{1, 2, 3})))
	s.Assert().Equal(Fixed(3), c.MaxEncodedLen())

	_, err := Encode(c, []uint8{1, 2})
	s.Assert().ErrorIs(err, ErrArrayLength)

	_, err = Decode(c, []byte{1, 2})
	s.Assert().ErrorIs(err, ErrInsufficientInput)
}

func (s *CompositeTestSuite) TestTuples() {
	c := Tuple3Of(U8, Bool, String)
	v := Tuple3[uint8, bool, string]{A: 1, B: true, C: "x"}
	data := s.encode(Encode(c, v))
	s.Assert().Equal([]byte{0x01, 0x01, 0x04, 'x'}, data)

	back, err := Decode(c, data)
	s.Require().NoError(err)
	s.Assert().Equal(v, back)

	s.Assert().Equal(Fixed(5), Tuple2Of(U8, U32).MaxEncodedLen())
	s.Assert().Equal(Fixed(15), Tuple4Of(U8, U16, U32, U64).MaxEncodedLen())
}

func (s *CompositeTestSuite) TestStruct() {
	a := account{Name: "al", Balance: 64, Flags: []bool{true, false}}
	data := s.encode(Encode(accountCodec, a))
	s.Assert().Equal([]byte{
		0x08, 'a', 'l', // Name
		0x01, 0x01, // Balance, compact
		0x08, 0x01, 0x00, // Flags
	}, data)

	back, err := Decode(accountCodec, data)
	s.Require().NoError(err)
	s.Assert().Equal(a, back)

	_, err = Decode(accountCodec, append(data, 0x00))
	s.Assert().ErrorIs(err, ErrTrailingData)
}

func (s *CompositeTestSuite) TestStructErrorPath() {
	_, err := Decode(accountCodec, []byte{0x08, 'a', 'l', 0x01, 0x01, 0x04, 0x07})
	s.Require().ErrorIs(err, ErrInvalidBool)
	if ChainedErrors {
		s.Assert().Equal("field Flags of struct Account: element 0: scale: invalid boolean: 0x07", err.Error())
	}
}

func (s *CompositeTestSuite) TestEnum() {
	s.Assert().Equal([]byte{0x00, 0x05, 0, 0, 0}, s.encode(Encode(shapeCodec, shape(circle{R: 5}))))
	s.Assert().Equal([]byte{0x01, 0x02, 0x00}, s.encode(Encode(shapeCodec, shape(square{Side: 2}))))
	s.Assert().Equal([]byte{0x02}, s.encode(Encode(shapeCodec, shape(point{}))))

	for _, data := range [][]byte{{0x00, 0x05, 0, 0, 0}, {0x01, 0x02, 0x00}, {0x02}} {
		v, err := Decode(shapeCodec, data)
		s.Require().NoError(err)
		s.Assert().Equal(data, s.encode(Encode(shapeCodec, v)))
	}

	for _, bad := range []byte{3, 255} {
		_, err := Decode(shapeCodec, []byte{bad})
		s.Assert().ErrorIs(err, ErrInvalidDiscriminant)
	}

	_, err := Decode(shapeCodec, []byte{0x00, 0x05, 0x00})
	s.Require().ErrorIs(err, ErrInsufficientInput)
	if ChainedErrors {
		s.Assert().Contains(err.Error(), "variant Circle of enum Shape: field R of struct Circle: ")
	}

	s.Assert().Equal(Fixed(5), shapeCodec.MaxEncodedLen())
	s.Assert().Equal(1, shapeCodec.MinEncodedLen())
}

func (s *CompositeTestSuite) TestEnumConstruction() {
	s.Assert().Panics(func() {
		EnumOf[shape]("Dup",
			VariantOf[shape](0, "A", Empty[point]()),
			VariantOf[shape](0, "B", circleLayout()),
		)
	})
	s.Assert().Panics(func() {
		VariantOf[shape](0, "NotAShape", U8)
	})

	// A value that is no declared variant cannot be encoded.
	c := EnumOf[shape]("OnlyPoint", VariantOf[shape](0, "Point", Empty[point]()))
	_, err := Encode(c, shape(circle{}))
	s.Assert().ErrorIs(err, ErrUnsupportedType)
}

func circleLayout() Codec[circle] {
	return StructOf("Circle", FieldOf("R", func(c *circle) *uint32 { return &c.R }, U32))
}

func (s *CompositeTestSuite) TestBitVec() {
	bits := BitVecOf(true, false, true)
	data := s.encode(EncodeValue(bits))
	s.Assert().Equal([]byte{0x0C, 0x05}, data)

	var back BitVec
	s.Require().NoError(DecodeValue(&back, data))
	s.Assert().Equal([]bool{true, false, true}, back.Bools())
	s.Assert().Equal("101", back.String())

	// Set padding bits are cleared unless the reader is strict.
	var padded BitVec
	s.Require().NoError(DecodeValue(&padded, []byte{0x0C, 0x0D}))
	s.Assert().Equal([]byte{0x05}, padded.Bytes())
	s.Assert().Equal("101", padded.String())

	_, err := DecodeWith(NewSliceReader([]byte{0x0C, 0x0D}).WithStrictBitVec(), Bits)
	s.Assert().ErrorIs(err, ErrInvalidBitVec)

	strict, err := DecodeWith(NewSliceReader([]byte{0x0C, 0x05}).WithStrictBitVec(), Bits)
	s.Require().NoError(err)
	s.Assert().Equal("101", strict.String())

	err = DecodeValue(&padded, []byte{0x40, 0xFF}) // 16 bits, one byte
	s.Assert().ErrorIs(err, ErrLengthExceedsInput)

	var grown BitVec
	for i := range 9 {
		grown.Append(i%2 == 0)
	}
	s.Assert().Equal(9, grown.Len())
	s.Assert().Equal([]byte{0x24, 0x55, 0x01}, s.encode(EncodeValue(grown)))
}

type tree struct {
	Value    uint8
	Children []tree
}

func (s *CompositeTestSuite) TestRecursive() {
	var treeCodec Codec[tree]
	treeCodec = Recursive(func() Codec[tree] {
		return StructOf("Tree",
			FieldOf("Value", func(t *tree) *uint8 { return &t.Value }, U8),
			FieldOf("Children", func(t *tree) *[]tree { return &t.Children }, SliceOf(treeCodec)),
		)
	})

	v := tree{Value: 1, Children: []tree{{Value: 2, Children: []tree{}}, {Value: 3, Children: []tree{}}}}
	data := s.encode(Encode(treeCodec, v))
	s.Assert().Equal([]byte{0x01, 0x08, 0x02, 0x00, 0x03, 0x00}, data)

	back, err := Decode(treeCodec, data)
	s.Require().NoError(err)
	s.Assert().Equal(v, back)

	s.Assert().Equal(Unbounded, treeCodec.MaxEncodedLen())
	s.Assert().Equal(2, treeCodec.MinEncodedLen())
}

type chain struct{ Next *chain }

func (s *CompositeTestSuite) TestNestingDepth() {
	var chainCodec Codec[chain]
	chainCodec = Recursive(func() Codec[chain] {
		return StructOf("Chain",
			FieldOf("Next", func(c *chain) **chain { return &c.Next }, PointerOf(chainCodec)))
	})

	// Every 0x01 opens one more level.
	_, err := Decode(chainCodec, bytes.Repeat([]byte{0x01}, 3<<20))
	s.Assert().ErrorIs(err, ErrDepthLimit)

	_, err = DecodeFrom(streamOnly{bytes.NewReader(bytes.Repeat([]byte{0x01}, 3<<20))}, chainCodec)
	s.Assert().ErrorIs(err, ErrDepthLimit)

	// Ten levels: the outer value and nine links.
	shallow := append(bytes.Repeat([]byte{0x01}, 9), 0x00)
	back, err := Decode(chainCodec, shallow)
	s.Require().NoError(err)
	s.Assert().Equal(shallow, s.encode(Encode(chainCodec, back)))

	_, err = DecodeWith(NewSliceReader(shallow).WithDepthLimit(10), chainCodec)
	s.Assert().NoError(err)

	_, err = DecodeWith(NewSliceReader(shallow).WithDepthLimit(9), chainCodec)
	s.Assert().ErrorIs(err, ErrDepthLimit)

	// The counter unwinds, so siblings do not add up.
	r := NewSliceReader(append(append([]byte{}, shallow...), shallow...)).WithDepthLimit(10)
	for range 2 {
		_, err = DecodeFrom(r, chainCodec)
		s.Require().NoError(err)
	}
	s.Assert().NoError(CheckTrailing(r))
}

func (s *CompositeTestSuite) TestEncodeHelpers() {
	var buf bytes.Buffer
	n, err := EncodeTo(&buf, accountCodec, account{Name: "x"})
	s.Require().NoError(err)
	s.Assert().EqualValues(buf.Len(), n)
	s.Assert().Equal(int(n), EncodedLen(accountCodec, account{Name: "x"}))

	out, err := AppendEncode([]byte{0xAA}, U16, 1)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0xAA, 0x01, 0x00}, out)

	fixed, err := EncodeToFixed(shapeCodec, shape(square{Side: 1}))
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01, 0x01, 0x00}, fixed)
}

func TestComposite(t *testing.T) {
	suite.Run(t, new(CompositeTestSuite))
}

func TestBounds(t *testing.T) {
	assert.Equal(t, Fixed(5), SumBounds(Fixed(1), Fixed(4)))
	assert.Equal(t, Unbounded, SumBounds(Fixed(1), Fixed(4), Unbounded))
	assert.Equal(t, Fixed(6), EnumBound(Fixed(2), Fixed(5), Fixed(3)))
	assert.Equal(t, Fixed(1), EnumBound(Fixed(0)))
	assert.Equal(t, Unbounded, Fixed(maxInt).Add(Fixed(1)))
	assert.Equal(t, Unbounded, Fixed(maxInt/2+1).Mul(2))
	assert.Equal(t, Fixed(0), Fixed(9).Mul(0))
	assert.Equal(t, Unbounded, Unbounded.Mul(0))

	n, ok := Fixed(7).Len()
	require.True(t, ok)
	assert.Equal(t, 7, n)
	assert.True(t, Fixed(7).Fits(7))
	assert.False(t, Unbounded.Fits(1<<30))
	assert.Equal(t, "unbounded", Unbounded.String())

	type record struct {
		A uint8
		B uint32
		C []byte
	}
	a := FieldOf("A", func(r *record) *uint8 { return &r.A }, U8)
	b := FieldOf("B", func(r *record) *uint32 { return &r.B }, U32)
	c := FieldOf("C", func(r *record) *[]byte { return &r.C }, Bytes)
	assert.Equal(t, Unbounded, StructOf("Record", a, b, c).MaxEncodedLen())
	assert.Equal(t, Fixed(5), StructOf("Record", a, b).MaxEncodedLen())
	assert.Equal(t, 6, StructOf("Record", a, b, c).MinEncodedLen())

	sized := EnumOf[any]("Sized",
		VariantOf[any](0, "Two", U16),
		VariantOf[any](1, "Five", Tuple2Of(U8, U32)),
		VariantOf[any](2, "Three", Tuple2Of(U8, U16)),
	)
	assert.Equal(t, Fixed(6), sized.MaxEncodedLen())
	assert.Equal(t, 3, sized.MinEncodedLen())

	// Unit types take no bytes.
	assert.Equal(t, Fixed(0), Empty[point]().MaxEncodedLen())
	assert.Equal(t, Fixed(0), StructOf[point]("Unit").MaxEncodedLen())
}
