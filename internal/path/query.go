package path

import "math"

// Bounds is the axis-aligned bounding box of the drawn content.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Bounds returns the bounding box over all non-degenerate lines. An empty
// document yields the zero bounds.
func (d *Document) Bounds() Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, line := range d.Lines() {
		for _, p := range line.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Bounds{}
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Lines returns every non-degenerate line in layer order.
func (d *Document) Lines() []Line {
	var out []Line
	for _, layer := range d.Layers {
		for _, line := range layer.Lines {
			if line.Degenerate() {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

// HasContent reports whether any line is drawable.
func (d *Document) HasContent() bool {
	for _, layer := range d.Layers {
		for _, line := range layer.Lines {
			if !line.Degenerate() {
				return true
			}
		}
	}
	return false
}

// CountPoints returns the total number of points across drawable lines.
func (d *Document) CountPoints() int {
	var total int
	for _, line := range d.Lines() {
		total += len(line.Points)
	}
	return total
}

// CountSegments returns the total number of drawn segments.
func (d *Document) CountSegments() int {
	var total int
	for _, line := range d.Lines() {
		total += len(line.Points) - 1
	}
	return total
}

// DrawDistance returns the total pen-down travel.
func (d *Document) DrawDistance() float64 {
	var total float64
	for _, line := range d.Lines() {
		for i := 0; i < len(line.Points)-1; i++ {
			total += line.Points[i].DistanceTo(line.Points[i+1])
		}
	}
	return total
}

// TravelDistance returns the total pen-up travel between consecutive lines.
func (d *Document) TravelDistance() float64 {
	var total float64
	var last *Point
	for _, line := range d.Lines() {
		if last != nil {
			total += last.DistanceTo(line.Points[0])
		}
		end := line.Points[len(line.Points)-1]
		last = &end
	}
	return total
}
