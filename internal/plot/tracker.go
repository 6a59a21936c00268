package plot

import "github.com/banshee-data/polargraph/internal/gcode"

// Position is the believed location of the gondola in machine coordinates.
// Z carries the pen servo angle.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Tracker maintains the device's believed position from the command lines
// actually dispatched to it. It is a pure consumer: only travel and draw
// moves change it, and a malformed coordinate word leaves that axis alone.
// The tracker is owned by the controller and relies on its lock.
type Tracker struct {
	home Position
	pos  Position
}

// NewTracker returns a tracker sitting at the given home position.
func NewTracker(home Position) *Tracker {
	return &Tracker{home: home, pos: home}
}

// Update applies one dispatched command line. Non-move commands are ignored.
func (t *Tracker) Update(line string) {
	m, ok := gcode.ParseMove(line)
	if !ok {
		return
	}
	if m.X != nil {
		t.pos.X = *m.X
	}
	if m.Y != nil {
		t.pos.Y = *m.Y
	}
	if m.Z != nil {
		t.pos.Z = *m.Z
	}
}

// Reset returns the tracked position to home. Called whenever a stream
// starts.
func (t *Tracker) Reset() {
	t.pos = t.home
}

// Position returns the current believed position.
func (t *Tracker) Position() Position {
	return t.pos
}
