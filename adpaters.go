package scale

import (
	"bufio"
	"bytes"
)

type (
	bytesReaderAdapter       struct{ *bytes.Reader }
	bytesBufferReaderAdapter struct{ *bytes.Buffer }
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bufioWriterAdapter       struct{ *bufio.Writer }
	bufioReaderAdapter       struct{ *bufio.Reader }
)

func (r *bytesReaderAdapter) Remaining() int       { return r.Len() }
func (r *bytesBufferReaderAdapter) Remaining() int { return r.Len() }
func (r *bufioReaderAdapter) Remaining() int       { return UnknownRemaining }

func (w *bytesBufferWriterAdapter) Flush() error { return nil }
func (w *bufioWriterAdapter) Grow(int)           {}
