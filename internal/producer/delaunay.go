package producer

import (
	"fmt"
	"math/rand"

	"github.com/fogleman/delaunay"

	"github.com/banshee-data/polargraph/internal/path"
)

func init() {
	Register(delaunayProducer{})
}

// delaunayProducer scatters random points and draws their Delaunay
// triangulation. Each shared edge is drawn once. A fixed seed makes the
// output reproducible.
type delaunayProducer struct{}

func (delaunayProducer) Info() Info {
	return Info{ID: "delaunay", Name: "Delaunay Mesh", Description: "Triangulated random point field"}
}

func (delaunayProducer) Produce(opts Options) (Result, error) {
	count := opts.Int("points", 50)
	size := opts.Float("size", 400)
	seed := opts.Int("seed", 1)
	if count < 3 {
		count = 3
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	points := make([]delaunay.Point, count)
	for i := range points {
		points[i] = delaunay.Point{
			X: (rng.Float64() - 0.5) * size,
			Y: (rng.Float64() - 0.5) * size,
		}
	}

	tri, err := delaunay.Triangulate(points)
	if err != nil {
		return Result{}, fmt.Errorf("triangulate %d points: %w", count, err)
	}

	type edge struct{ a, b int }
	seen := make(map[edge]bool)

	doc := path.NewDocument()
	ts := tri.Triangles
	for i := 0; i < len(ts); i += 3 {
		corners := [4]int{ts[i], ts[i+1], ts[i+2], ts[i]}
		for j := 0; j < 3; j++ {
			a, b := corners[j], corners[j+1]
			if a > b {
				a, b = b, a
			}
			e := edge{a, b}
			if seen[e] {
				continue
			}
			seen[e] = true
			pa, pb := tri.Points[a], tri.Points[b]
			doc.LineTo(pa.X, pa.Y, pb.X, pb.Y)
		}
	}
	doc.PenUp()
	return Single(doc), nil
}
