// Package plot implements the streaming controller that drives a plot job:
// it dispatches an encoded command stream to the serial transport under
// acknowledgment-based flow control, tracks the gondola position, and runs
// the pause/resume/stop/emergency-stop state machine. All session state
// lives behind one mutex shared by the request context and the transport's
// reader goroutine.
package plot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/banshee-data/polargraph/internal/gcode"
	"github.com/banshee-data/polargraph/internal/path"
	"github.com/banshee-data/polargraph/internal/settings"
)

var (
	// ErrNotConnected is returned by Start when no transport link is open.
	ErrNotConnected = errors.New("plot: transport not connected")
	// ErrNoContent is returned by Start for a document or stream with
	// nothing to send.
	ErrNoContent = errors.New("plot: no commands to plot")
	// ErrInvalidState is returned when an operation is not legal in the
	// current controller state.
	ErrInvalidState = errors.New("plot: invalid state for operation")
)

// ackToken prefixes device lines that acknowledge a command and release the
// next one. Comparison is case-insensitive.
const ackToken = "ok"

// emergencyStopCommand is recognized by the firmware outside normal flow
// control.
const emergencyStopCommand = "M112"

// emergencyStopRetries is how many times the hard-stop is written; delivery
// is best-effort and never confirmed.
const emergencyStopRetries = 5

// Transport is the serial link surface the controller needs. Satisfied by
// *serialmux.Mux.
type Transport interface {
	Connected() bool
	WriteLine(text string) error
	WriteRaw(text string) error
	FlushBuffers() error
}

// Status is a point-in-time snapshot of a plot session. All fields are
// copies; reading a Status has no side effects.
type Status struct {
	State      State    `json:"state"`
	Line       int      `json:"line"`
	TotalLines int      `json:"total_lines"`
	Percent    int      `json:"percent"`
	Position   Position `json:"position"`
	Connected  bool     `json:"connected"`
}

// Notification is pushed to the observer channel on every state change and
// dispatched line.
type Notification struct {
	State    State    `json:"state"`
	Line     int      `json:"line"`
	Total    int      `json:"total"`
	Percent  int      `json:"percent"`
	Position Position `json:"position"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock injects the clock used for wall-clock pacing in the homing and
// emergency-stop sequences.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithOnComplete registers a hook run after a plot reaches Completed,
// typically to release temporary drawing-source resources. It runs outside
// the controller lock.
func WithOnComplete(fn func()) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// Controller owns one plot session end to end.
type Controller struct {
	transport Transport
	cfg       settings.Settings
	clock     clockwork.Clock

	onComplete func()
	notify     chan Notification

	mu      sync.Mutex
	state   State
	lines   []string
	cursor  int
	tracker *Tracker
}

// New returns an idle controller bound to the given transport and settings.
func New(transport Transport, cfg settings.Settings, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		notify:    make(chan Notification, 64),
		state:     Idle,
		tracker: NewTracker(Position{
			X: cfg.HomeX,
			Y: cfg.HomeY,
			Z: float64(cfg.PenAngleUp),
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notifications returns the observer channel. Events beyond the buffer are
// dropped rather than blocking the controller.
func (c *Controller) Notifications() <-chan Notification {
	return c.notify
}

// Run consumes inbound device lines until the channel closes or the context
// is canceled. Acknowledgment lines drive the dispatch loop; anything else
// is device telemetry and only logged here (other transport subscribers see
// every line).
func (c *Controller) Run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.handleInbound(line)
		}
	}
}

func (c *Controller) handleInbound(line string) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), ackToken) {
		c.handleAck()
		return
	}
	log.Debug().Str("line", line).Msg("device message")
}

func (c *Controller) handleAck() {
	c.mu.Lock()
	if c.state != Plotting {
		// Acks arriving while paused or stopped release nothing; the
		// cursor already points at the next unsent line.
		c.mu.Unlock()
		return
	}
	completed, err := c.dispatchLocked()
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("dispatch failed; plot stalled until stop or retry")
	}
	if completed {
		c.completed()
	}
}

// dispatchLocked sends the next pending command. Comment and blank lines are
// written without consuming an acknowledgment: the loop advances past them
// iteratively, bounded by the remaining command count, and stops after the
// first real command (which the device must ack) or at the end of the
// stream. On a write error the cursor does not advance, so the attempt can
// be retried or the plot stopped with state unchanged.
func (c *Controller) dispatchLocked() (completed bool, err error) {
	for c.cursor < len(c.lines) {
		line := c.lines[c.cursor]

		if err := c.transport.WriteLine(line); err != nil {
			return false, fmt.Errorf("dispatch line %d: %w", c.cursor, err)
		}

		isComment := gcode.IsComment(line)
		if !isComment {
			c.tracker.Update(line)
		}
		c.cursor++
		c.notifyLocked()

		if !isComment {
			return false, nil
		}
	}

	c.state = Completed
	c.notifyLocked()
	return true, nil
}

func (c *Controller) completed() {
	log.Info().Msg("plot complete")
	if c.onComplete != nil {
		c.onComplete()
	}
}

// Start encodes the document and begins plotting it. Valid when idle (or
// after a completed or stopped plot) with a connected transport and a
// drawable document. The line cursor and tracked position reset, the homing
// sequence runs, and the first line is dispatched.
func (c *Controller) Start(doc *path.Document) error {
	if !doc.HasContent() {
		return ErrNoContent
	}
	return c.StartLines(gcode.Encode(doc, c.cfg.CodecOptions()))
}

// StartLines begins plotting a pre-encoded command stream, e.g. a loaded
// G-code file.
func (c *Controller) StartLines(lines []string) error {
	commands := 0
	for _, line := range lines {
		if !gcode.IsComment(line) {
			commands++
		}
	}
	if commands == 0 {
		return ErrNoContent
	}
	if !c.transport.Connected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	if !c.state.startable() {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, state)
	}
	c.lines = lines
	c.cursor = 0
	c.tracker.Reset()
	c.state = Homing
	c.notifyLocked()
	c.mu.Unlock()

	log.Info().Int("lines", len(lines)).Msg("starting plot")
	go c.home()
	return nil
}

// home runs the initialization sequence with fixed wall-clock pacing (the
// firmware does not acknowledge these commands individually), then enters
// Plotting and dispatches the first line. It aborts quietly if a stop or
// emergency stop lands mid-sequence.
func (c *Controller) home() {
	for _, cmd := range c.cfg.HomingSequence() {
		if c.State() != Homing {
			return
		}
		if err := c.transport.WriteLine(cmd.Line); err != nil {
			log.Warn().Err(err).Str("command", cmd.Line).Msg("homing write failed; aborting start")
			c.mu.Lock()
			if c.state == Homing {
				c.state = Idle
				c.notifyLocked()
			}
			c.mu.Unlock()
			return
		}
		if cmd.Wait > 0 {
			c.clock.Sleep(cmd.Wait)
		}
	}

	c.mu.Lock()
	if c.state != Homing {
		c.mu.Unlock()
		return
	}
	c.state = Plotting
	c.notifyLocked()
	completed, err := c.dispatchLocked()
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("first dispatch failed; plot stalled until stop or retry")
	}
	if completed {
		c.completed()
	}
}

// Pause raises the pen and suspends dispatch, keeping the line cursor. The
// pen-up command is sent before the state changes; if that write fails the
// controller stays in Plotting.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Plotting {
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidState, c.state)
	}
	if err := c.transport.WriteLine(c.cfg.PenUpCommand()); err != nil {
		return fmt.Errorf("send pen up: %w", err)
	}
	c.state = Paused
	c.notifyLocked()
	return nil
}

// Resume re-enters the dispatch loop at the current cursor. Lines dispatched
// before the pause are never re-sent.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if c.state != Paused {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidState, state)
	}
	c.state = Plotting
	c.notifyLocked()
	completed, err := c.dispatchLocked()
	c.mu.Unlock()

	if completed {
		c.completed()
	}
	return err
}

// Stop ends the plot: the configured end-of-job sequence is sent, the cursor
// resets to zero, and the state becomes Stopped. Valid while homing,
// plotting, or paused. End-sequence write failures are logged, not fatal;
// the local state always reaches Stopped.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Homing, Plotting, Paused:
	default:
		return fmt.Errorf("%w: cannot stop while %s", ErrInvalidState, c.state)
	}

	for _, line := range c.cfg.EndSequence() {
		if err := c.transport.WriteLine(line); err != nil {
			log.Warn().Err(err).Str("command", line).Msg("end-of-job write failed")
		}
	}
	c.cursor = 0
	c.state = Stopped
	c.notifyLocked()
	log.Info().Msg("plot stopped")
	return nil
}

// EmergencyStop halts the device immediately from any state. The hard-stop
// command is written several times as raw, non-flow-controlled writes, the
// motors are disabled, the pen is forced up, and the transport buffers are
// flushed. Every step is best-effort: nothing waits for an acknowledgment,
// write errors are ignored, and the state always ends EmergencyStopped even
// with no transport connected.
func (c *Controller) EmergencyStop() {
	for i := 0; i < emergencyStopRetries; i++ {
		if err := c.transport.WriteRaw(emergencyStopCommand); err != nil {
			log.Debug().Err(err).Msg("emergency stop write failed")
		}
	}
	c.clock.Sleep(c.cfg.SettleDelay())
	if err := c.transport.WriteRaw("M18"); err != nil {
		log.Debug().Err(err).Msg("motor disable write failed")
	}
	if err := c.transport.WriteRaw(c.cfg.PenUpCommand()); err != nil {
		log.Debug().Err(err).Msg("pen up write failed")
	}
	if err := c.transport.FlushBuffers(); err != nil {
		log.Debug().Err(err).Msg("buffer flush failed")
	}

	c.mu.Lock()
	c.state = EmergencyStopped
	c.notifyLocked()
	c.mu.Unlock()
	log.Warn().Msg("emergency stop")
}

// Reset re-arms the controller after an emergency stop (or any halted
// state), returning it to Idle with the cursor cleared. Not valid while
// plotting.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Plotting || c.state == Homing {
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidState, c.state)
	}
	c.state = Idle
	c.cursor = 0
	c.lines = nil
	c.tracker.Reset()
	c.notifyLocked()
	return nil
}

// GotoLine moves the cursor without dispatching. Valid in any state except
// Plotting. The target clamps to [0, total]; the clamped cursor is returned.
func (c *Controller) GotoLine(n int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Plotting {
		return c.cursor, fmt.Errorf("%w: cannot seek while %s", ErrInvalidState, c.state)
	}
	if n < 0 {
		n = 0
	}
	if n > len(c.lines) {
		n = len(c.lines)
	}
	c.cursor = n
	c.notifyLocked()
	return c.cursor, nil
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns a snapshot of the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:      c.state,
		Line:       c.cursor,
		TotalLines: len(c.lines),
		Percent:    percent(c.cursor, len(c.lines)),
		Position:   c.tracker.Position(),
		Connected:  c.transport.Connected(),
	}
}

func percent(current, total int) int {
	if total < 1 {
		total = 1
	}
	return 100 * current / total
}

// notifyLocked publishes the current session snapshot without blocking.
func (c *Controller) notifyLocked() {
	n := Notification{
		State:    c.state,
		Line:     c.cursor,
		Total:    len(c.lines),
		Percent:  percent(c.cursor, len(c.lines)),
		Position: c.tracker.Position(),
	}
	select {
	case c.notify <- n:
	default:
	}
}
