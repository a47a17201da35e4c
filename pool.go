package sir

import (
	"io"
	"sync"
)

// buffer is a pooled byte buffer, modeled on the teacher's v2/pool.go
// "buffer []byte" — implementing it over a slice makes the helpers methods
// instead of free functions, and lets Release hand it back to the pool.
type buffer []byte

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, maxMessageBytes)
		return (*buffer)(&b)
	},
}

// newBuffer returns a buffer from the global pool, allocating if necessary.
func newBuffer() *buffer {
	return bufPool.Get().(*buffer)
}

// Release returns modestly sized buffers to the pool and leaks large ones,
// exactly as the teacher's buffer.Release does.
func (b *buffer) Release() {
	const maxSz = 64 << 10
	if b == nil {
		return
	}
	if cap(*b) <= maxSz {
		*b = (*b)[:0]
		bufPool.Put(b)
	}
}

var (
	_ io.Writer       = (*buffer)(nil)
	_ io.StringWriter = (*buffer)(nil)
)

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) WriteString(s string) (int, error) {
	*b = append(*b, s...)
	return len(s), nil
}

func (b *buffer) WriteByte(c byte) error {
	*b = append(*b, c)
	return nil
}

func (b *buffer) String() string {
	return string(*b)
}
