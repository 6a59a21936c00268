package producer

import (
	"math"

	"github.com/banshee-data/polargraph/internal/path"
)

func init() {
	Register(spiralProducer{})
	Register(spirographProducer{})
	Register(lissajousProducer{})
	Register(borderProducer{})
}

// spiralProducer draws an Archimedean spiral from the center out.
type spiralProducer struct{}

func (spiralProducer) Info() Info {
	return Info{ID: "spiral", Name: "Spiral", Description: "Archimedean spiral"}
}

func (spiralProducer) Produce(opts Options) (Result, error) {
	turns := opts.Float("turns", 10)
	spacing := opts.Float("spacing", 5)

	const stepsPerTurn = 72
	total := int(turns * stepsPerTurn)

	doc := path.NewDocument()
	for i := 0; i < total; i++ {
		angle := 2 * math.Pi * float64(i) / stepsPerTurn
		r := spacing * float64(i) / stepsPerTurn
		x := r * math.Cos(angle)
		y := r * math.Sin(angle)
		if i == 0 {
			doc.JumpTo(x, y)
		} else {
			doc.MoveTo(x, y)
		}
	}
	doc.PenUp()
	return Single(doc), nil
}

// spirographProducer draws hypotrochoid curves.
type spirographProducer struct{}

func (spirographProducer) Info() Info {
	return Info{ID: "spirograph", Name: "Spirograph", Description: "Classic spirograph patterns"}
}

func (spirographProducer) Produce(opts Options) (Result, error) {
	R := opts.Float("R", 100)
	r := opts.Float("r", 60)
	d := opts.Float("d", 80)
	revolutions := opts.Int("revolutions", 10)
	if revolutions < 1 {
		revolutions = 1
	}

	steps := 1000 * revolutions
	doc := path.NewDocument()
	for i := 0; i <= steps; i++ {
		t := 2 * math.Pi * float64(revolutions) * float64(i) / float64(steps)
		x := (R-r)*math.Cos(t) + d*math.Cos((R-r)/r*t)
		y := (R-r)*math.Sin(t) - d*math.Sin((R-r)/r*t)
		if i == 0 {
			doc.JumpTo(x, y)
		} else {
			doc.MoveTo(x, y)
		}
	}
	doc.PenUp()
	return Single(doc), nil
}

// lissajousProducer draws Lissajous figures.
type lissajousProducer struct{}

func (lissajousProducer) Info() Info {
	return Info{ID: "lissajous", Name: "Lissajous", Description: "Lissajous curves"}
}

func (lissajousProducer) Produce(opts Options) (Result, error) {
	a := float64(opts.Int("a", 3))
	b := float64(opts.Int("b", 4))
	delta := opts.Float("delta", 90) * math.Pi / 180
	size := opts.Float("size", 200)

	const steps = 1000
	doc := path.NewDocument()
	for i := 0; i <= steps; i++ {
		t := 2 * math.Pi * float64(i) / steps
		x := size * math.Sin(a*t+delta)
		y := size * math.Sin(b*t)
		if i == 0 {
			doc.JumpTo(x, y)
		} else {
			doc.MoveTo(x, y)
		}
	}
	doc.PenUp()
	return Single(doc), nil
}

// borderProducer draws a rectangular frame inset from the work-area edges.
// Width and height default to an A0 sheet; the caller passes the configured
// work area when it differs.
type borderProducer struct{}

func (borderProducer) Info() Info {
	return Info{ID: "border", Name: "Border", Description: "Rectangular border around the work area"}
}

func (borderProducer) Produce(opts Options) (Result, error) {
	width := opts.Float("width", 841)
	height := opts.Float("height", 1189)
	margin := opts.Float("margin", 10)

	halfW := width/2 - margin
	halfH := height/2 - margin

	doc := path.NewDocument()
	doc.Rect(-halfW, -halfH, 2*halfW, 2*halfH)
	doc.PenUp()
	return Single(doc), nil
}
