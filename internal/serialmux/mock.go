package serialmux

import (
	"io"
	"strings"
	"sync"
)

// MockPort implements Porter and BufferResetter for tests. Inbound traffic is
// queued with PushLine; Read blocks until data arrives or the port closes,
// mimicking a real serial device.
type MockPort struct {
	mu       sync.Mutex
	inbound  chan []byte
	pending  []byte
	written  strings.Builder
	writeErr error
	closed   bool
	closeCh  chan struct{}
	flushes  int
}

// NewMockPort returns an open mock port with no queued data.
func NewMockPort() *MockPort {
	return &MockPort{
		inbound: make(chan []byte, 64),
		closeCh: make(chan struct{}),
	}
}

// PushLine queues one newline-terminated inbound line.
func (p *MockPort) PushLine(line string) {
	p.inbound <- []byte(line + "\n")
}

func (p *MockPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(buf, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	select {
	case data := <-p.inbound:
		n := copy(buf, data)
		if n < len(data) {
			p.mu.Lock()
			p.pending = append(p.pending, data[n:]...)
			p.mu.Unlock()
		}
		return n, nil
	case <-p.closeCh:
		return 0, io.EOF
	}
}

func (p *MockPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(data)
}

// Close unblocks any pending Read with EOF. Idempotent.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.closeCh)
	}
	return nil
}

// ResetInputBuffer records a flush; the mock holds no real buffers.
func (p *MockPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return nil
}

// ResetOutputBuffer records a flush.
func (p *MockPort) ResetOutputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return nil
}

// SetWriteError makes subsequent writes fail with err.
func (p *MockPort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// Written returns everything written to the port so far.
func (p *MockPort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

// WrittenLines returns the written stream split into lines, empty trailing
// segment removed.
func (p *MockPort) WrittenLines() []string {
	data := strings.TrimSuffix(p.Written(), "\n")
	if data == "" {
		return nil
	}
	return strings.Split(data, "\n")
}

// Flushes returns how many buffer resets were requested.
func (p *MockPort) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// MockOpener returns an Opener that always hands out the given port.
func MockOpener(port Porter) Opener {
	return func(string, int) (Porter, error) {
		return port, nil
	}
}
