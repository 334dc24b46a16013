package telemetry

import (
	"bytes"
	"sync"
)

// lineBuffer forwards complete lines written to a span. A trailing partial
// line is held back until more data or Close arrives.
type lineBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	onLines func([]byte)
	closed  bool
}

func newLineBuffer(onLines func([]byte)) *lineBuffer {
	return &lineBuffer{onLines: onLines}
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return len(p), nil
	}

	b.buf.Write(p)
	if i := bytes.LastIndexByte(b.buf.Bytes(), '\n'); i >= 0 {
		b.emit(b.buf.Next(i + 1))
	}
	return len(p), nil
}

// Close forwards whatever is left.
func (b *lineBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	if b.buf.Len() > 0 {
		b.emit(b.buf.Next(b.buf.Len()))
	}
}

// emit copies data since the buffer reuses its storage.
func (b *lineBuffer) emit(data []byte) {
	b.onLines(bytes.Clone(data))
}
