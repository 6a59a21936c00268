package path

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// apply runs fn over every point of every layer, degenerate lines included,
// so the whole document moves together.
func (d *Document) apply(fn func(Point) Point) {
	for li := range d.Layers {
		layer := &d.Layers[li]
		for ni := range layer.Lines {
			points := layer.Lines[ni].Points
			for pi := range points {
				points[pi] = fn(points[pi])
			}
		}
	}
}

// Translate shifts every point by (dx, dy).
func (d *Document) Translate(dx, dy float64) {
	d.apply(func(p Point) Point {
		p.X += dx
		p.Y += dy
		return p
	})
}

// Scale multiplies every point by (sx, sy) about the origin.
func (d *Document) Scale(sx, sy float64) {
	d.apply(func(p Point) Point {
		p.X *= sx
		p.Y *= sy
		return p
	})
}

// Rotate turns every point about the origin by degrees counter-clockwise.
func (d *Document) Rotate(degrees float64) {
	rot := r2.NewRotation(degrees*math.Pi/180, r2.Vec{})
	d.apply(func(p Point) Point {
		v := rot.Rotate(r2.Vec{X: p.X, Y: p.Y})
		p.X = v.X
		p.Y = v.Y
		return p
	})
}

// CenterOn translates the drawing so its bounding box is centered on (cx, cy).
func (d *Document) CenterOn(cx, cy float64) {
	b := d.Bounds()
	d.Translate(cx-(b.MinX+b.MaxX)/2, cy-(b.MinY+b.MaxY)/2)
}

// FitTo scales and translates the drawing to fill the given bounds. With
// keepAspect the smaller scale factor applies to both axes. Empty drawings
// are left untouched.
func (d *Document) FitTo(left, bottom, right, top float64, keepAspect bool) {
	b := d.Bounds()
	if b.Width() == 0 || b.Height() == 0 {
		return
	}

	sx := (right - left) / b.Width()
	sy := (top - bottom) / b.Height()
	if keepAspect {
		s := math.Min(sx, sy)
		sx, sy = s, s
	}

	d.Translate(-b.MinX-b.Width()/2, -b.MinY-b.Height()/2)
	d.Scale(sx, sy)
	d.Translate((left+right)/2, (bottom+top)/2)
}
