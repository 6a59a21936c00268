// Package serialmux owns the physical serial link to the plotter. It runs a
// background reader that splits inbound bytes into lines and fans them out to
// subscriber channels, and exposes a serialized line writer. Multiple
// observers (the streaming controller, status consoles) can subscribe to the
// same port.
package serialmux

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConnected is returned by write operations when no port is open.
	ErrNotConnected = errors.New("serialmux: not connected")
	// ErrWriteFailed is returned when the port accepts fewer bytes than sent.
	ErrWriteFailed = errors.New("serialmux: short write to serial port")
)

// Porter is the minimal interface the mux needs from a serial port. The
// abstraction enables unit testing without real hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// BufferResetter is implemented by ports that can drop queued bytes. Used by
// the emergency stop to discard anything in flight.
type BufferResetter interface {
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// Opener opens a serial port at a path with the given baud rate. Injected so
// tests can supply mock ports.
type Opener func(path string, baud int) (Porter, error)

// subscriberBuffer sizes each fan-out channel. Inbound lines beyond the
// buffer are dropped for that subscriber so a slow observer can never stall
// the reader; the controller drains its channel promptly.
const subscriberBuffer = 64

// Mux multiplexes a single serial port between a line writer and any number
// of line subscribers. The zero value is not usable; call New.
type Mux struct {
	open Opener

	portMu   sync.Mutex
	port     Porter
	portName string
	gen      int // bumped per connection so a stale reader exits cleanly

	writeMu sync.Mutex

	subMu       sync.Mutex
	subscribers map[string]chan string
}

// New returns a disconnected Mux that opens ports with the given Opener.
func New(open Opener) *Mux {
	return &Mux{
		open:        open,
		subscribers: make(map[string]chan string),
	}
}

// Connect opens the serial port and starts the background reader. Any
// existing connection is closed first. Failure to open is recoverable; the
// mux stays disconnected and the caller may retry with another port.
func (m *Mux) Connect(path string, baud int) error {
	m.Disconnect()

	port, err := m.open(path, baud)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", path, err)
	}

	m.portMu.Lock()
	m.port = port
	m.portName = path
	m.gen++
	gen := m.gen
	m.portMu.Unlock()

	log.Info().Str("port", path).Int("baud", baud).Msg("serial port connected")
	go m.readLoop(port, gen)
	return nil
}

// Disconnect closes the port if one is open. Safe to call at any time,
// including when already disconnected.
func (m *Mux) Disconnect() {
	m.portMu.Lock()
	port := m.port
	name := m.portName
	m.port = nil
	m.portName = ""
	m.portMu.Unlock()

	if port == nil {
		return
	}
	if err := port.Close(); err != nil {
		log.Warn().Err(err).Str("port", name).Msg("error closing serial port")
	} else {
		log.Info().Str("port", name).Msg("serial port disconnected")
	}
}

// Connected reports whether a port is currently open.
func (m *Mux) Connected() bool {
	m.portMu.Lock()
	defer m.portMu.Unlock()
	return m.port != nil
}

// PortName returns the path of the open port, or "" when disconnected.
func (m *Mux) PortName() string {
	m.portMu.Lock()
	defer m.portMu.Unlock()
	return m.portName
}

func (m *Mux) currentPort() Porter {
	m.portMu.Lock()
	defer m.portMu.Unlock()
	return m.port
}

func (m *Mux) write(text string) error {
	port := m.currentPort()
	if port == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	n, err := port.Write([]byte(text))
	if err != nil {
		return fmt.Errorf("write to serial port: %w", err)
	}
	if n != len(text) {
		return ErrWriteFailed
	}
	return nil
}

// WriteLine sends one newline-terminated command to the device. Writes are
// serialized; concurrent callers take turns.
func (m *Mux) WriteLine(text string) error {
	return m.write(text)
}

// WriteRaw sends a line outside normal command accounting. It shares the
// writer lock with WriteLine so bytes from different callers never
// interleave. Used only for the emergency stop path.
func (m *Mux) WriteRaw(text string) error {
	return m.write(text)
}

// FlushBuffers drops any queued inbound and outbound bytes, when the
// underlying port supports it.
func (m *Mux) FlushBuffers() error {
	port := m.currentPort()
	if port == nil {
		return ErrNotConnected
	}
	resetter, ok := port.(BufferResetter)
	if !ok {
		return nil
	}
	if err := resetter.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	if err := resetter.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("reset output buffer: %w", err)
	}
	return nil
}

// Subscribe registers a new inbound line channel and returns its ID for
// Unsubscribe. The channel is buffered; lines beyond the buffer are dropped
// for this subscriber rather than blocking the reader.
func (m *Mux) Subscribe() (string, <-chan string) {
	id := uuid.NewString()
	ch := make(chan string, subscriberBuffer)
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber channel.
func (m *Mux) Unsubscribe(id string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

func (m *Mux) fanOut(line string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for id, ch := range m.subscribers {
		select {
		case ch <- line:
		default:
			log.Debug().Str("subscriber", id).Msg("dropping line for slow subscriber")
		}
	}
}

// readLoop scans the port for newline-terminated messages until the port is
// closed or fails. Each complete inbound line goes to every subscriber.
func (m *Mux) readLoop(port Porter, gen int) {
	scan := bufio.NewScanner(port)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		m.fanOut(line)
	}

	m.portMu.Lock()
	stale := gen != m.gen || m.port != port
	m.portMu.Unlock()
	if stale {
		// Superseded by a newer connection or an explicit Disconnect.
		return
	}
	if err := scan.Err(); err != nil {
		log.Warn().Err(err).Msg("serial read loop ended")
	}
	m.Disconnect()
}
