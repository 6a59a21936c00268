// Package gcode converts between the path document model and the plotter's
// line-oriented G-code dialect. Encoding is deterministic: coordinates are
// formatted with fixed three-decimal precision so identical documents always
// produce identical command streams.
package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Options carries the dialect parameters consumed from settings. Feed rates
// are mm/min; the pen commands are emitted verbatim.
type Options struct {
	TravelFeed int
	DrawFeed   int
	PenUp      string
	PenDown    string
}

// DefaultOptions matches the target firmware defaults.
func DefaultOptions() Options {
	return Options{
		TravelFeed: 1000,
		DrawFeed:   500,
		PenUp:      "G0 Z90 F1000",
		PenDown:    "G0 Z40 F1000",
	}
}

// Move is a parsed travel or draw command. Coordinate fields are nil when the
// corresponding word is absent or malformed.
type Move struct {
	Draw bool
	X    *float64
	Y    *float64
	Z    *float64
}

// IsComment reports whether a command line is blank or comment-only. Such
// lines never produce device work and never consume an acknowledgment.
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, ";")
}

// ParseMove parses a G0/G1 command line. It returns false for comments and
// for any command that is not a move. Malformed coordinate words are dropped
// rather than failing the whole line.
func ParseMove(line string) (Move, bool) {
	if IsComment(line) {
		return Move{}, false
	}
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Move{}, false
	}

	var m Move
	switch fields[0] {
	case "G0", "G00":
	case "G1", "G01":
		m.Draw = true
	default:
		return Move{}, false
	}

	for _, word := range fields[1:] {
		if len(word) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			continue
		}
		switch word[0] {
		case 'X':
			m.X = &v
		case 'Y':
			m.Y = &v
		case 'Z':
			m.Z = &v
		}
	}
	return m, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// TravelCommand formats a pen-up repositioning move.
func (o Options) TravelCommand(x, y float64) string {
	return fmt.Sprintf("G0 X%s Y%s F%d", formatCoord(x), formatCoord(y), o.TravelFeed)
}

// DrawCommand formats a pen-down drawing move.
func (o Options) DrawCommand(x, y float64) string {
	return fmt.Sprintf("G1 X%s Y%s F%d", formatCoord(x), formatCoord(y), o.DrawFeed)
}
