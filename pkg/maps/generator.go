package maps

import (
	"fmt"
	"math"

	"club-conquest/internal/geom"
	"club-conquest/internal/random"
)

// GeneratorOptions contains settings for map generation.
type GeneratorOptions struct {
	ID       string
	Name     string
	Seed     string
	Cols     int     // cells per row
	Rows     int     // cells per column
	CellSize float64 // map units per grid step
	Jitter   float64 // vertex displacement as a fraction of CellSize, at most 0.45
	Capitals int     // number of capital cells to place

	// Anchors are preferred capital positions as fractions of the map size,
	// y up. Capitals without an anchor are spread out.
	Anchors []geom.Point
}

// DefaultOptions returns default generator options.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		ID:       "generated",
		Name:     "Generated",
		Seed:     "demo",
		Cols:     8,
		Rows:     6,
		CellSize: 10,
		Jitter:   0.3,
		Capitals: 4,
	}
}

// Generator builds a jittered grid of quadrilateral cells. Interior vertices
// are displaced at random; border vertices only slide along the border, so the
// map stays a rectangle.
type Generator struct {
	options  GeneratorOptions
	rng      *random.Source
	vertices [][]geom.Point // [row][col], (Rows+1) x (Cols+1)
	cells    []Cell
}

// NewGenerator creates a new map generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	opts.Jitter = math.Max(0, math.Min(opts.Jitter, 0.45))
	return &Generator{
		options: opts,
		rng:     random.New(random.Key(opts.Seed, "map", opts.Cols, opts.Rows)),
	}
}

// Generate creates a map with the given options.
func Generate(opts GeneratorOptions) (*Map, error) {
	return NewGenerator(opts).Generate()
}

// Generate creates the map. The same options always produce the same map.
func (g *Generator) Generate() (*Map, error) {
	o := g.options
	switch {
	case o.Cols < 1 || o.Rows < 1:
		return nil, fmt.Errorf("invalid grid: %dx%d", o.Cols, o.Rows)
	case o.CellSize <= 0:
		return nil, fmt.Errorf("invalid cell size: %v", o.CellSize)
	case o.Capitals < 0 || o.Capitals > o.Cols*o.Rows:
		return nil, fmt.Errorf("cannot place %d capitals on %d cells", o.Capitals, o.Cols*o.Rows)
	}

	g.placeVertices()
	g.buildCells()
	capitals := g.placeCapitals()

	return &Map{
		ID:       o.ID,
		Name:     o.Name,
		Width:    float64(o.Cols) * o.CellSize,
		Height:   float64(o.Rows) * o.CellSize,
		Capitals: len(capitals),
		Cells:    reorder(g.cells, capitals),
	}, nil
}

func (g *Generator) placeVertices() {
	o := g.options
	g.vertices = make([][]geom.Point, o.Rows+1)
	for j := 0; j <= o.Rows; j++ {
		g.vertices[j] = make([]geom.Point, o.Cols+1)
		for i := 0; i <= o.Cols; i++ {
			dx := (g.rng.Float64()*2 - 1) * o.Jitter * o.CellSize
			dy := (g.rng.Float64()*2 - 1) * o.Jitter * o.CellSize
			if i == 0 || i == o.Cols {
				dx = 0
			}
			if j == 0 || j == o.Rows {
				dy = 0
			}
			g.vertices[j][i] = geom.Pt(float64(i)*o.CellSize+dx, float64(j)*o.CellSize+dy)
		}
	}
}

// buildCells creates one counter-clockwise quad per grid square. Cell id is
// row*Cols+col before capitals are moved to the front.
func (g *Generator) buildCells() {
	o := g.options
	g.cells = make([]Cell, 0, o.Cols*o.Rows)
	for y := 0; y < o.Rows; y++ {
		for x := 0; x < o.Cols; x++ {
			poly := []geom.Point{
				g.vertices[y][x],
				g.vertices[y][x+1],
				g.vertices[y+1][x+1],
				g.vertices[y+1][x],
			}
			var neighbors []int
			if y > 0 {
				neighbors = append(neighbors, (y-1)*o.Cols+x)
			}
			if x > 0 {
				neighbors = append(neighbors, y*o.Cols+x-1)
			}
			if x < o.Cols-1 {
				neighbors = append(neighbors, y*o.Cols+x+1)
			}
			if y < o.Rows-1 {
				neighbors = append(neighbors, (y+1)*o.Cols+x)
			}
			g.cells = append(g.cells, Cell{
				ID:        y*o.Cols + x,
				Centroid:  geom.Centroid(poly),
				Polygon:   poly,
				Neighbors: neighbors,
			})
		}
	}
}

// placeCapitals picks the capital cells: the free cell nearest each anchor
// first, then the free cell farthest from every capital placed so far.
func (g *Generator) placeCapitals() []int {
	o := g.options
	capitals := make([]int, 0, o.Capitals)
	used := make(map[int]bool, o.Capitals)

	for _, a := range o.Anchors {
		if len(capitals) == o.Capitals {
			break
		}
		target := geom.Pt(a.X*float64(o.Cols)*o.CellSize, a.Y*float64(o.Rows)*o.CellSize)
		best, bestDist := -1, math.Inf(1)
		for _, c := range g.cells {
			if used[c.ID] {
				continue
			}
			d := c.Centroid.Sub(target)
			if dist := d.Dot(d); dist < bestDist {
				best, bestDist = c.ID, dist
			}
		}
		capitals = append(capitals, best)
		used[best] = true
	}

	if len(capitals) == 0 && o.Capitals > 0 {
		first := g.rng.Intn(len(g.cells))
		capitals = append(capitals, first)
		used[first] = true
	}

	for len(capitals) < o.Capitals {
		best, bestDist := -1, -1.0
		for _, c := range g.cells {
			if used[c.ID] {
				continue
			}
			nearest := math.Inf(1)
			for _, id := range capitals {
				d := c.Centroid.Sub(g.cells[id].Centroid)
				nearest = math.Min(nearest, d.Dot(d))
			}
			if nearest > bestDist {
				best, bestDist = c.ID, nearest
			}
		}
		capitals = append(capitals, best)
		used[best] = true
	}
	return capitals
}
