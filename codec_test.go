package scale

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mocks and Helpers ---

// A simple fixed-size struct for testing codec implementations.
type mockPayload struct {
	ID   uint32
	Data [4]byte
}

type mockCodec = FixedSize[mockPayload]

// mockFlushingWriter helps verify that a writer's Flush method is called.
type mockFlushingWriter struct {
	bytes.Buffer
	flushed bool
}

func (m *mockFlushingWriter) Flush() error {
	m.flushed = true
	return nil
}

// streamOnly hides the concrete type of a reader so that it is treated as a
// stream of unknown length.
type streamOnly struct{ io.Reader }

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf)
}

func (s *WriterTestSuite) TestConstructors() {
	s.T().Run("ErrorOnNilWriter", func(t *testing.T) {
		_, err := NewWriter(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("NestedWriterDoesNotFlush", func(t *testing.T) {
		var out bytes.Buffer
		outer, err := NewWriterSize(&streamOnlyWriter{&out}, 64)
		require.NoError(t, err)
		inner, err := NewWriter(outer)
		require.NoError(t, err)

		inner.WriteUint8(7)
		require.NoError(t, inner.Flush())
		assert.Zero(t, out.Len(), "only the outermost writer flushes")

		require.NoError(t, outer.Flush())
		assert.Equal(t, []byte{7}, out.Bytes())
	})
}

type streamOnlyWriter struct{ io.Writer }

func (s *WriterTestSuite) TestBasicWrites() {
	payload := &mockCodec{mockPayload{ID: 0xDEADBEEF, Data: [4]byte{1, 2, 3, 4}}}

	s.writer.WriteUint8(0xAA)
	s.writer.WriteUint16(0xBBCC)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteBytes([]byte{5, 6, 7})
	s.writer.WriteCompact(1)
	s.writer.Encode(payload)

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+2+4+8+3+1+8, n)
	s.Assert().EqualValues(s.buf.Len(), s.writer.Count())

	expected := []byte{
		0xAA,       // WriteUint8
		0xCC, 0xBB, // WriteUint16 (Little Endian)
		0x00, 0xFF, 0xEE, 0xDD, // WriteUint32 (Little Endian)
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // WriteUint64 (Little Endian)
		5, 6, 7, // WriteBytes
		0x04,                               // WriteCompact(1)
		0xEF, 0xBE, 0xAD, 0xDE, 1, 2, 3, 4, // Encode(payload)
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestErrorHandling() {
	s.T().Run("ShortBufferError", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)

		_, err := writer.Result()
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})

	s.T().Run("WriteAfterErrorIsNoOp", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD) // only one byte fits

		firstErr := writer.Err()
		require.ErrorIs(t, firstErr, io.ErrShortWrite)

		writer.WriteUint8(0xFF)
		writer.Flush()

		assert.Equal(t, firstErr, writer.Err(), "The latched error should not change")
		assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xDD}, fixedBuf)
		assert.EqualValues(t, 5, writer.Count())
	})

	s.T().Run("FailKeepsFirstError", func(t *testing.T) {
		w, _ := NewBufferWriter(0)
		w.Fail(ErrArrayLength)
		w.Fail(io.ErrShortWrite)
		assert.ErrorIs(t, w.Err(), ErrArrayLength)
		w.WriteUint8(1)
		assert.Zero(t, w.Count())
	})
}

func (s *WriterTestSuite) TestFlush() {
	mock := &mockFlushingWriter{}
	writer, _ := NewWriterSize(mock, 128)
	writer.WriteUint8(0xAA)
	writer.WriteUint8(0xAA)

	// Before flush, data is in the buffer, but not in the underlying writer.
	s.Assert().Positive(writer.w.(*bufioWriterAdapter).Buffered())
	s.Assert().Zero(mock.Len())

	s.Require().NoError(writer.Flush())

	s.Assert().False(mock.flushed, "bufio does not forward Flush to the destination")
	s.Assert().Zero(writer.w.(*bufioWriterAdapter).Buffered())
	s.Assert().Equal(2, mock.Buffer.Len())
}

func (s *WriterTestSuite) TestAlreadyBuffered() {
	_, err := NewWriterSize(bufio.NewWriterSize(io.Discard, 16), 4096)
	s.Assert().ErrorIs(err, ErrAlreadyBuffered)
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestConstructors() {
	s.T().Run("ErrorOnNilReader", func(t *testing.T) {
		_, err := NewReader(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("SizeTooSmall", func(t *testing.T) {
		_, err := NewReaderSize(streamOnly{bytes.NewReader(nil)}, 8)
		assert.ErrorIs(t, err, ErrSizeTooSmall)
	})

	s.T().Run("KnownLengthSources", func(t *testing.T) {
		data := []byte{1, 2, 3}
		for name, src := range map[string]io.Reader{
			"BytesReader":   NewBytesReader(data),
			"bytes.Reader":  bytes.NewReader(data),
			"bytes.Buffer":  bytes.NewBuffer(data),
			"LimitedReader": &io.LimitedReader{R: streamOnly{bytes.NewReader(data)}, N: 3},
		} {
			r, err := NewReader(src)
			require.NoError(t, err, name)
			assert.Equal(t, 3, r.Remaining(), name)
		}
	})

	s.T().Run("StreamHasUnknownLength", func(t *testing.T) {
		r, err := NewReader(streamOnly{bytes.NewReader([]byte{1})})
		require.NoError(t, err)
		assert.Equal(t, UnknownRemaining, r.Remaining())
	})
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // uint8
		0xCC, 0xBB, // uint16
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0x11, 0x22, 0x33, // raw bytes
	}
	r, _ := NewReader(bytes.NewReader(data))

	var v8 uint8
	var v16 uint16
	var v32 uint32
	var v64 uint64
	r.ReadUint8(&v8)
	r.ReadUint16(&v16)
	r.ReadUint32(&v32)
	r.ReadUint64(&v64)
	read, err := r.ReadBytes(3)

	s.Require().NoError(err)
	s.Require().NoError(r.Err())
	s.Assert().Equal(uint8(0xAA), v8)
	s.Assert().Equal(uint16(0xBBCC), v16)
	s.Assert().Equal(uint32(0xDDEEFF00), v32)
	s.Assert().Equal(uint64(0x0102030405060708), v64)
	s.Assert().Equal([]byte{0x11, 0x22, 0x33}, read)
	s.Assert().Zero(r.Remaining())
	s.Assert().EqualValues(len(data), r.Count())

	_, err = r.ReadByte()
	s.Assert().ErrorIs(err, ErrInsufficientInput)
}

func (s *ReaderTestSuite) TestErrorHandling() {
	s.T().Run("ReadPastEndIsCheckedFirst", func(t *testing.T) {
		r := NewSliceReader([]byte{0x01, 0x02, 0x03})
		var v32 uint32
		r.ReadUint32(&v32)

		require.ErrorIs(t, r.Err(), ErrInsufficientInput)
		assert.Zero(t, r.Count(), "nothing is consumed when the length is known")
	})

	s.T().Run("ReadPastEndOfStream", func(t *testing.T) {
		r, _ := NewReader(streamOnly{bytes.NewReader([]byte{0x01, 0x02, 0x03})})
		var v32 uint32
		r.ReadUint32(&v32)
		assert.ErrorIs(t, r.Err(), ErrInsufficientInput)
	})

	s.T().Run("ReadAfterErrorIsNoOp", func(t *testing.T) {
		r := NewSliceReader([]byte{0x01, 0x02, 0x03})
		var v32 uint32
		var v8 uint8

		r.ReadUint32(&v32)
		firstErr := r.Err()
		require.Error(t, firstErr)

		r.ReadUint8(&v8)
		assert.Equal(t, firstErr, r.Err(), "The latched error should not change")
		assert.Equal(t, uint8(0), v8, "Destination variable should be unchanged after an error")
	})

	s.T().Run("InvalidBool", func(t *testing.T) {
		r := NewSliceReader([]byte{0x02})
		var b bool
		r.ReadBool(&b)
		assert.ErrorIs(t, r.Err(), ErrInvalidBool)
	})
}

func (s *ReaderTestSuite) TestLimits() {
	s.T().Run("WithLimit", func(t *testing.T) {
		r := NewSliceReader(make([]byte, 10)).WithLimit(4)
		assert.Equal(t, 4, r.Remaining())

		err := r.ReadFull(make([]byte, 5))
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.ErrorIs(t, err, ErrInsufficientInput)
	})

	s.T().Run("LimitOnStream", func(t *testing.T) {
		r, _ := NewReader(streamOnly{bytes.NewReader(make([]byte, 10))})
		r.WithLimit(2)
		assert.Equal(t, 2, r.Remaining())
		assert.NoError(t, r.ReadFull(make([]byte, 2)))
		_, err := r.ReadByte()
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})

	s.T().Run("LimitReader", func(t *testing.T) {
		r, err := LimitReader(streamOnly{bytes.NewReader([]byte{1, 2, 3, 4})}, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, r.Remaining())
		b, err := r.ReadBytes(3)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, b)
		assert.NoError(t, CheckTrailing(r))
	})

	s.T().Run("DecodeFromKeepsLimit", func(t *testing.T) {
		// A 1000-byte blob behind a 10-byte ceiling.
		data := append([]byte{0xA1, 0x0F}, make([]byte, 1000)...)
		r := NewSliceReader(data).WithLimit(10)

		same, err := NewReader(r)
		require.NoError(t, err)
		assert.Same(t, r, same)

		_, err = DecodeFrom(r, Bytes)
		assert.ErrorIs(t, err, ErrInsufficientInput)
		assert.LessOrEqual(t, r.Count(), int64(10))
	})

	s.T().Run("DecodeFromAdvancesCount", func(t *testing.T) {
		r := NewSliceReader([]byte{0x07, 0x2A, 0x00})
		a, err := DecodeFrom(r, U8)
		require.NoError(t, err)
		b, err := DecodeFrom(r, U16)
		require.NoError(t, err)
		assert.Equal(t, uint8(7), a)
		assert.Equal(t, uint16(42), b)
		assert.EqualValues(t, 3, r.Count())
		assert.NoError(t, CheckTrailing(r))
	})

	s.T().Run("CheckLen", func(t *testing.T) {
		r := NewSliceReader([]byte{1, 2, 3})
		assert.NoError(t, r.CheckLen(3, 1))
		err := r.CheckLen(2, 2)
		assert.ErrorIs(t, err, ErrLengthExceedsInput)
		assert.ErrorIs(t, err, ErrInsufficientInput)
	})

	s.T().Run("ReadBytesFromStreamInChunks", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xAB}, 3*MaxPreallocation+17)
		r, _ := NewReader(streamOnly{bytes.NewReader(data)})
		got, err := r.ReadBytes(len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	s.T().Run("ReadBytesFromShortStream", func(t *testing.T) {
		r, _ := NewReader(streamOnly{bytes.NewReader(make([]byte, 10))})
		_, err := r.ReadBytes(1 << 30)
		assert.ErrorIs(t, err, ErrInsufficientInput)
	})

	s.T().Run("Skip", func(t *testing.T) {
		r := NewSliceReader([]byte{1, 2, 3, 4})
		require.NoError(t, r.Skip(3))
		var b uint8
		r.ReadUint8(&b)
		assert.Equal(t, uint8(4), b)
		assert.ErrorIs(t, r.Skip(1), ErrInsufficientInput)
	})
}

func (s *ReaderTestSuite) TestCheckTrailing() {
	r := NewSliceReader([]byte{1, 2})
	var b uint8
	r.ReadUint8(&b)
	s.Assert().ErrorIs(CheckTrailing(r), ErrTrailingData)

	stream, _ := NewReader(streamOnly{bytes.NewReader([]byte{1})})
	stream.ReadUint8(&b)
	s.Assert().NoError(CheckTrailing(stream))

	// Bytes beyond a limit still count as trailing.
	limited := NewSliceReader(make([]byte, 6)).WithLimit(4)
	s.Require().NoError(limited.ReadFull(make([]byte, 4)))
	s.Assert().ErrorIs(CheckTrailing(limited), ErrTrailingData)
}

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

// --- Standalone Codec Tests ---

func TestFixedSize_SizeCache(t *testing.T) {
	c := &mockCodec{mockPayload{ID: 1}}
	expectedSize := 8 // uint32(4) + [4]byte(4)

	assert.Equal(t, expectedSize, c.Size())
	assert.Equal(t, expectedSize, c.Size())

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c2 := &mockCodec{mockPayload{ID: 2}}
			assert.Equal(t, expectedSize, c2.Size())
		}()
	}
	wg.Wait()
}

func TestFixedSize_RoundTrip(t *testing.T) {
	c := &mockCodec{mockPayload{ID: 0x01020304, Data: [4]byte{9, 8, 7, 6}}}
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1, 9, 8, 7, 6}, data)

	var out mockCodec
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, c.Payload, out.Payload)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)

	buf.WriteByte(0xFF) // next record
	var streamed mockCodec
	n, err = streamed.ReadFrom(streamOnly{&buf})
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)
	assert.Equal(t, c.Payload, streamed.Payload)
}

func TestFixedSize_Errors(t *testing.T) {
	t.Run("MarshalToShortBuffer", func(t *testing.T) {
		c := &mockCodec{}
		_, err := c.MarshalTo(make([]byte, c.Size()-1))
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})

	t.Run("UnmarshalWithTruncatedData", func(t *testing.T) {
		c := &mockCodec{}
		validData, _ := c.MarshalBinary()

		err := c.UnmarshalBinary(validData[:len(validData)-1])
		assert.ErrorIs(t, err, ErrInsufficientInput)
	})

	t.Run("UnmarshalWithTrailingData", func(t *testing.T) {
		c := &mockCodec{}
		validData, _ := c.MarshalBinary()

		err := c.UnmarshalBinary(append(validData, 0x01, 0x02, 0x03))
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("VariableSizePayloadPanics", func(t *testing.T) {
		c := &FixedSize[struct{ Name string }]{}
		assert.Panics(t, func() { c.Size() })
	})
}

func TestErrorPaths(t *testing.T) {
	err := Annotate(Annotate(ErrInvalidBool, fieldStep("flag", "Inner")), fieldStep("inner", "Outer"))
	assert.ErrorIs(t, err, ErrInvalidBool)
	if !ChainedErrors {
		assert.Equal(t, ErrInvalidBool, err)
		return
	}

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"field inner of struct Outer", "field flag of struct Inner"}, e.Path)
	assert.Equal(t, "field inner of struct Outer: field flag of struct Inner: scale: invalid boolean", err.Error())
}
