// Package path implements the vector path document shared by every drawing
// source and consumer: layers of polylines built with turtle-style cursor
// operations. A Document is mutated only by the source that builds it; once
// handed to the codec or the streaming controller it is treated as read-only.
package path

import "math"

// DefaultColor is the stroke color assigned when a document is created
// without an explicit stroke.
const DefaultColor = "#000000"

// DefaultWidth is the stroke width (mm) assigned when a document is created
// without an explicit stroke.
const DefaultWidth = 1.0

// Point is a single coordinate. Z carries the tool height where relevant and
// is zero for plain 2D points.
type Point struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the planar distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Line is an ordered run of points drawn continuously with a single pen.
// A line with fewer than two points is degenerate and excluded from queries
// and serialization.
type Line struct {
	Points []Point
	Color  string
	Width  float64
}

// Degenerate reports whether the line is too short to draw.
func (l Line) Degenerate() bool { return len(l.Points) < 2 }

// Layer groups lines sharing one color and stroke width.
type Layer struct {
	Lines []Line
	Color string
	Width float64
}

// Document is an ordered set of layers plus the build cursor used while a
// drawing source is generating content. Heading is in degrees with 0 pointing
// along +X and positive angles counter-clockwise.
type Document struct {
	Layers []Layer

	position Point
	heading  float64
	penUp    bool
	color    string
	width    float64
}

// NewDocument returns an empty document with the pen up at the origin and the
// default stroke active.
func NewDocument() *Document {
	d := &Document{
		penUp: true,
		color: DefaultColor,
		width: DefaultWidth,
	}
	d.newLayer()
	return d
}

func (d *Document) newLayer() {
	d.Layers = append(d.Layers, Layer{Color: d.color, Width: d.width})
}

func (d *Document) currentLayer() *Layer {
	return &d.Layers[len(d.Layers)-1]
}

func (d *Document) newLine() {
	layer := d.currentLayer()
	layer.Lines = append(layer.Lines, Line{
		Points: []Point{d.position},
		Color:  d.color,
		Width:  d.width,
	})
}

// SetStroke switches the active color and width. A change starts a new layer,
// and continues the stroke in a fresh line if the pen is down.
func (d *Document) SetStroke(color string, width float64) {
	if d.color == color && d.width == width {
		return
	}
	d.color = color
	d.width = width
	d.newLayer()
	if !d.penUp {
		d.newLine()
	}
}

// PenDown lowers the pen, opening a new line at the current position. Calling
// it with the pen already down is a no-op.
func (d *Document) PenDown() {
	if !d.penUp {
		return
	}
	d.penUp = false
	d.newLine()
}

// PenUp raises the pen. Subsequent moves reposition the cursor without
// appending points.
func (d *Document) PenUp() {
	d.penUp = true
}

// IsPenUp reports the build cursor's pen state.
func (d *Document) IsPenUp() bool { return d.penUp }

// Position returns the build cursor position.
func (d *Document) Position() Point { return d.position }

// Heading returns the build cursor heading in degrees.
func (d *Document) Heading() float64 { return d.heading }

// MoveTo moves the cursor to an absolute position, appending to the current
// line when the pen is down.
func (d *Document) MoveTo(x, y float64) {
	d.position.X = x
	d.position.Y = y
	if d.penUp {
		return
	}
	layer := d.currentLayer()
	if n := len(layer.Lines); n > 0 {
		line := &layer.Lines[n-1]
		line.Points = append(line.Points, d.position)
	}
}

// JumpTo raises the pen, moves to the given position, and lowers the pen,
// starting a new line there.
func (d *Document) JumpTo(x, y float64) {
	d.PenUp()
	d.position.X = x
	d.position.Y = y
	d.PenDown()
}

// Forward moves in the current heading direction by distance.
func (d *Document) Forward(distance float64) {
	rad := d.heading * math.Pi / 180
	d.MoveTo(d.position.X+math.Cos(rad)*distance, d.position.Y+math.Sin(rad)*distance)
}

// Backward moves opposite the current heading by distance.
func (d *Document) Backward(distance float64) { d.Forward(-distance) }

// Turn rotates the heading counter-clockwise by degrees.
func (d *Document) Turn(degrees float64) { d.heading += degrees }

// TurnLeft rotates the heading counter-clockwise by degrees.
func (d *Document) TurnLeft(degrees float64) { d.heading += degrees }

// TurnRight rotates the heading clockwise by degrees.
func (d *Document) TurnRight(degrees float64) { d.heading -= degrees }

// SetHeading sets the absolute heading in degrees.
func (d *Document) SetHeading(degrees float64) { d.heading = degrees }

// LineTo draws a single segment from (x1,y1) to (x2,y2).
func (d *Document) LineTo(x1, y1, x2, y2 float64) {
	d.JumpTo(x1, y1)
	d.MoveTo(x2, y2)
}

// Rect draws an axis-aligned rectangle with its lower-left corner at (x,y).
func (d *Document) Rect(x, y, width, height float64) {
	d.JumpTo(x, y)
	d.MoveTo(x+width, y)
	d.MoveTo(x+width, y+height)
	d.MoveTo(x, y+height)
	d.MoveTo(x, y)
}

// Arc draws a circular arc around (cx,cy) from startAngle to endAngle
// (radians) approximated by the given number of segments.
func (d *Document) Arc(cx, cy, radius, startAngle, endAngle float64, steps int) {
	if steps <= 0 {
		steps = 36
	}
	delta := (endAngle - startAngle) / float64(steps)
	for i := 0; i <= steps; i++ {
		angle := startAngle + delta*float64(i)
		x := cx + math.Cos(angle)*radius
		y := cy + math.Sin(angle)*radius
		if i == 0 {
			d.JumpTo(x, y)
		} else {
			d.MoveTo(x, y)
		}
	}
}

// Circle draws a full circle around (cx,cy).
func (d *Document) Circle(cx, cy, radius float64, steps int) {
	d.Arc(cx, cy, radius, 0, 2*math.Pi, steps)
}
