package scale

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("scale: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("scale: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an already-buffered
	// reader/writer, which would lead to unpredictable behavior and performance issues.
	ErrAlreadyBuffered = errors.New("scale: reader or writer is already buffered")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("scale: writer returned invalid count from Write")

	// ErrInsufficientInput indicates that fewer bytes remain in the source than a
	// fixed-width or declared-length read requires.
	ErrInsufficientInput = errors.New("scale: insufficient input")

	// ErrLengthExceedsInput is returned when a sequence, string or bit-vector length
	// prefix claims more data than the source can supply. It also matches
	// ErrInsufficientInput.
	ErrLengthExceedsInput = &kindError{msg: "scale: declared length exceeds remaining input", parent: ErrInsufficientInput}

	// ErrInvalidDiscriminant indicates a sum-type tag byte that matches no declared variant.
	ErrInvalidDiscriminant = errors.New("scale: invalid discriminant")

	// ErrInvalidBool indicates a boolean byte outside {0x00, 0x01}.
	ErrInvalidBool = errors.New("scale: invalid boolean")

	// ErrInvalidOptionTag indicates an option tag byte outside {0x00, 0x01}.
	ErrInvalidOptionTag = errors.New("scale: invalid option tag")

	// ErrInvalidResultTag indicates a result tag byte outside {0x00, 0x01}.
	ErrInvalidResultTag = errors.New("scale: invalid result tag")

	// ErrInvalidCompact indicates a compact integer whose extended byte count exceeds
	// the supported width, or whose value does not fit the decoding target.
	ErrInvalidCompact = errors.New("scale: invalid compact encoding")

	// ErrNonCanonicalCompact is returned by strict readers for a compact integer that
	// could have been written in a narrower mode. It also matches ErrInvalidCompact.
	ErrNonCanonicalCompact = &kindError{msg: "scale: non-minimal compact encoding", parent: ErrInvalidCompact}

	// ErrInvalidBitVec is returned by readers configured with WithStrictBitVec
	// for a bit-vector whose padding bits are set.
	ErrInvalidBitVec = errors.New("scale: invalid bit-vector padding")

	// ErrTrailingData is returned by the whole-buffer decoders when bytes remain
	// after the value has been decoded.
	ErrTrailingData = errors.New("scale: trailing data found after decoding")

	// ErrArrayLength is latched by a Writer when a fixed-size array codec is handed
	// a slice of the wrong length, or a sequence is too long to be prefixed.
	ErrArrayLength = errors.New("scale: sequence length does not match the declared size")

	// ErrUnsupportedType is returned by the reflection codec for types without a
	// defined encoding.
	ErrUnsupportedType = errors.New("scale: unsupported type")

	// ErrLimitExceeded indicates a decode would consume more bytes than the
	// ceiling configured with Reader.WithLimit.
	ErrLimitExceeded = &kindError{msg: "scale: decode exceeds configured size limit", parent: ErrInsufficientInput}

	// ErrDepthLimit indicates recursive values nested deeper than the reader's
	// depth limit.
	ErrDepthLimit = errors.New("scale: nesting depth limit exceeded")

	// ErrNilRef is latched by a Writer asked to encode a Ref holding nil.
	ErrNilRef = errors.New("scale: Ref to nil")
)

// kindError is a sentinel that also matches a broader sentinel.
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }

// Error carries the positional context of a decode failure, outermost first.
type Error struct {
	Path  []string
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	for _, p := range e.Path {
		b.WriteString(p)
		b.WriteString(": ")
	}
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Annotate prefixes err with a positional step such as "field a of struct B".
// With chained errors disabled it returns err untouched.
func Annotate(err error, step string) error {
	if err == nil || !ChainedErrors {
		return err
	}
	if e, ok := err.(*Error); ok {
		path := make([]string, 0, len(e.Path)+1)
		path = append(path, step)
		return &Error{Path: append(path, e.Path...), Cause: e.Cause}
	}
	return &Error{Path: []string{step}, Cause: err}
}

func fieldStep(field, typ string) string {
	return "field " + field + " of struct " + typ
}

func variantStep(variant, typ string) string {
	return "variant " + variant + " of enum " + typ
}

func elementStep(i int) string {
	return fmt.Sprintf("element %d", i)
}

// detailf attaches a formatted detail to a sentinel when chained errors are on.
func detailf(sentinel error, format string, args ...any) error {
	if !ChainedErrors {
		return sentinel
	}
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
