package gcode

import (
	"fmt"

	"github.com/banshee-data/polargraph/internal/path"
)

// Encode turns a path document into an ordered G-code command list. For each
// non-degenerate line it emits a travel move to the first point, a pen-down
// command, one draw move per subsequent point, and a pen-up so consecutive
// lines never drag the pen. Degenerate lines are skipped.
func Encode(doc *path.Document, opts Options) []string {
	cmds := []string{"; polargraph plot", "G90"}

	for li, layer := range doc.Layers {
		drawable := false
		for _, line := range layer.Lines {
			if !line.Degenerate() {
				drawable = true
				break
			}
		}
		if !drawable {
			continue
		}

		cmds = append(cmds, fmt.Sprintf("; layer %d color=%s width=%s",
			li+1, layer.Color, formatCoord(layer.Width)))

		for _, line := range layer.Lines {
			if line.Degenerate() {
				continue
			}
			first := line.Points[0]
			cmds = append(cmds, opts.TravelCommand(first.X, first.Y), opts.PenDown)
			for _, p := range line.Points[1:] {
				cmds = append(cmds, opts.DrawCommand(p.X, p.Y))
			}
			cmds = append(cmds, opts.PenUp)
		}
	}

	return cmds
}

// Decode rebuilds a path document from a command stream. Travel moves with
// planar coordinates open a new line (implicit pen-up-then-down); draw moves
// append points. Pure tool-height moves (pen up/down), comments, and any
// unrecognized command are skipped, preserving best-effort decoding. Color
// and width are not carried by the dialect and come back as defaults.
func Decode(lines []string) *path.Document {
	doc := path.NewDocument()
	for _, line := range lines {
		m, ok := ParseMove(line)
		if !ok {
			continue
		}
		if m.X == nil && m.Y == nil {
			// Pen or feed-only command, no planar motion.
			continue
		}

		pos := doc.Position()
		x, y := pos.X, pos.Y
		if m.X != nil {
			x = *m.X
		}
		if m.Y != nil {
			y = *m.Y
		}

		if m.Draw {
			if doc.IsPenUp() {
				doc.PenDown()
			}
			doc.MoveTo(x, y)
		} else {
			doc.JumpTo(x, y)
		}
	}
	doc.PenUp()
	return doc
}
