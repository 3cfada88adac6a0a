package scale

import (
	"bytes"
	"sync"
)

// maxPooledBuffer keeps one oversized encode from pinning its memory in the
// pool forever.
const maxPooledBuffer = 64 * 1024

// bytesBufPool reuses buffers for encoding values of unknown size.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, BUFFER_SIZE))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bytesBufPool.Put(buf)
}
