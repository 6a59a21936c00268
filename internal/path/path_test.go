package path

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPenDownOpensLineAtCursor(t *testing.T) {
	d := NewDocument()
	d.PenUp()
	d.MoveTo(10, 20)
	d.PenDown()
	d.MoveTo(30, 20)

	lines := d.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []Point{{X: 10, Y: 20}, {X: 30, Y: 20}}, lines[0].Points)
}

func TestPenUpMoveDoesNotAppend(t *testing.T) {
	d := NewDocument()
	d.JumpTo(0, 0)
	d.MoveTo(5, 0)
	d.PenUp()
	d.MoveTo(50, 50)

	lines := d.Lines()
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Points, 2)
	assert.Equal(t, Point{X: 50, Y: 50}, d.Position())
}

func TestPenDownTwiceIsNoop(t *testing.T) {
	d := NewDocument()
	d.JumpTo(0, 0)
	d.PenDown()
	d.MoveTo(1, 1)

	require.Len(t, d.Lines(), 1)
}

func TestSetStrokeStartsNewLayer(t *testing.T) {
	d := NewDocument()
	d.LineTo(0, 0, 10, 0)
	d.SetStroke("#ff0000", 0.5)
	d.MoveTo(10, 10)

	require.Len(t, d.Layers, 2)
	assert.Equal(t, "#ff0000", d.Layers[1].Color)
	assert.Equal(t, 0.5, d.Layers[1].Width)

	// Pen was down, so the stroke continues in a fresh line in the new layer.
	require.Len(t, d.Layers[1].Lines, 1)
	assert.Equal(t, []Point{{X: 10}, {X: 10, Y: 10}}, d.Layers[1].Lines[0].Points)
}

func TestSetStrokeSameValuesIsNoop(t *testing.T) {
	d := NewDocument()
	d.SetStroke(DefaultColor, DefaultWidth)
	assert.Len(t, d.Layers, 1)
}

func TestDegenerateLinesExcludedFromQueries(t *testing.T) {
	d := NewDocument()
	d.JumpTo(100, 100) // opens a single-point line, never extended
	d.JumpTo(0, 0)
	d.MoveTo(3, 4)

	assert.Len(t, d.Lines(), 1)
	assert.Equal(t, 2, d.CountPoints())
	assert.Equal(t, 1, d.CountSegments())
	assert.InDelta(t, 5.0, d.DrawDistance(), 1e-9)
	assert.Equal(t, Bounds{MaxX: 3, MaxY: 4}, d.Bounds())
	assert.True(t, d.HasContent())
}

func TestEmptyDocumentQueries(t *testing.T) {
	d := NewDocument()
	assert.False(t, d.HasContent())
	assert.Equal(t, Bounds{}, d.Bounds())
	assert.Zero(t, d.CountPoints())
	assert.Zero(t, d.DrawDistance())
	assert.Zero(t, d.TravelDistance())
}

func TestTravelDistance(t *testing.T) {
	d := NewDocument()
	d.LineTo(0, 0, 10, 0)
	d.LineTo(10, 10, 20, 10) // travel from (10,0) to (10,10) is 10

	assert.InDelta(t, 10.0, d.TravelDistance(), 1e-9)
}

func TestForwardAndTurn(t *testing.T) {
	d := NewDocument()
	d.JumpTo(0, 0)
	d.Forward(10)
	d.TurnLeft(90)
	d.Forward(10)

	lines := d.Lines()
	require.Len(t, lines, 1)
	last := lines[0].Points[len(lines[0].Points)-1]
	assert.InDelta(t, 10, last.X, 1e-9)
	assert.InDelta(t, 10, last.Y, 1e-9)
}

func TestTransformsIdentityIdempotent(t *testing.T) {
	build := func() *Document {
		d := NewDocument()
		d.LineTo(1, 2, 3, 4)
		d.MoveTo(5, -1)
		return d
	}

	d := build()
	d.Translate(0, 0)
	d.Scale(1, 1)
	d.Rotate(0)
	assert.Equal(t, build().Lines(), d.Lines())
}

func TestRotateQuarterTurn(t *testing.T) {
	d := NewDocument()
	d.LineTo(10, 0, 20, 0)
	d.Rotate(90)

	lines := d.Lines()
	require.Len(t, lines, 1)
	assert.InDelta(t, 0, lines[0].Points[0].X, 1e-9)
	assert.InDelta(t, 10, lines[0].Points[0].Y, 1e-9)
	assert.InDelta(t, 0, lines[0].Points[1].X, 1e-9)
	assert.InDelta(t, 20, lines[0].Points[1].Y, 1e-9)
}

func TestFitToKeepAspect(t *testing.T) {
	d := NewDocument()
	d.Rect(0, 0, 20, 10)
	d.FitTo(-100, -100, 100, 100, true)

	b := d.Bounds()
	assert.InDelta(t, 200, b.Width(), 1e-9)
	assert.InDelta(t, 100, b.Height(), 1e-9)
	assert.InDelta(t, 0, (b.MinX+b.MaxX)/2, 1e-9)
	assert.InDelta(t, 0, (b.MinY+b.MaxY)/2, 1e-9)
}

func TestFitToEmptyDocumentIsNoop(t *testing.T) {
	d := NewDocument()
	d.FitTo(0, 0, 100, 100, true)
	assert.Equal(t, Bounds{}, d.Bounds())
}

func TestCenterOn(t *testing.T) {
	d := NewDocument()
	d.Rect(0, 0, 10, 10)
	d.CenterOn(100, 50)

	b := d.Bounds()
	assert.InDelta(t, 100, (b.MinX+b.MaxX)/2, 1e-9)
	assert.InDelta(t, 50, (b.MinY+b.MaxY)/2, 1e-9)
}

func TestCircleClosedAndBounded(t *testing.T) {
	d := NewDocument()
	d.Circle(0, 0, 50, 72)

	lines := d.Lines()
	require.Len(t, lines, 1)
	first := lines[0].Points[0]
	last := lines[0].Points[len(lines[0].Points)-1]
	assert.InDelta(t, first.X, last.X, 1e-9)
	assert.InDelta(t, first.Y, last.Y, 1e-9)

	b := d.Bounds()
	assert.InDelta(t, 100, b.Width(), 1e-6)
	assert.True(t, math.Abs(b.Height()-100) < 1e-6)
}
