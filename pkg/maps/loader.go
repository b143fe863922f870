package maps

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"club-conquest/internal/geom"
)

// RawMap is the format stored in JSON files.
type RawMap struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Width    float64   `json:"width,omitempty"`
	Height   float64   `json:"height,omitempty"`
	Capitals []int     `json:"capitals,omitempty"` // cell ids, in team order
	Cells    []RawCell `json:"cells"`
}

// RawCell is cell data from the JSON file. Missing centroids are computed
// from the polygon; missing neighbor lists are derived from shared edges by
// the engine.
type RawCell struct {
	ID        int          `json:"id"`
	Centroid  *geom.Point  `json:"centroid,omitempty"`
	Polygon   []geom.Point `json:"polygon"`
	Neighbors []int        `json:"neighbors,omitempty"`
}

// LoadFile loads a map from a JSON file.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON loads a map from JSON bytes.
func LoadFromJSON(data []byte) (*Map, error) {
	var raw RawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}
	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	return process(&raw), nil
}

// validate checks a raw map for errors.
func validate(raw *RawMap) error {
	if raw.ID == "" {
		return fmt.Errorf("map ID is required")
	}
	if len(raw.Cells) == 0 {
		return fmt.Errorf("map has no cells")
	}
	for i, c := range raw.Cells {
		if c.ID != i {
			return fmt.Errorf("cell at index %d has id %d", i, c.ID)
		}
		if len(c.Polygon) < 3 {
			return fmt.Errorf("cell %d polygon has %d points", c.ID, len(c.Polygon))
		}
		for _, n := range c.Neighbors {
			if n < 0 || n >= len(raw.Cells) || n == c.ID {
				return fmt.Errorf("cell %d has invalid neighbor %d", c.ID, n)
			}
		}
	}
	seen := make(map[int]bool, len(raw.Capitals))
	for _, id := range raw.Capitals {
		if id < 0 || id >= len(raw.Cells) {
			return fmt.Errorf("capital %d is not a cell", id)
		}
		if seen[id] {
			return fmt.Errorf("capital %d listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

func process(raw *RawMap) *Map {
	cells := make([]Cell, len(raw.Cells))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, rc := range raw.Cells {
		centroid := geom.Centroid(rc.Polygon)
		if rc.Centroid != nil {
			centroid = *rc.Centroid
		}
		for _, p := range rc.Polygon {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		cells[i] = Cell{
			ID:        rc.ID,
			Centroid:  centroid,
			Polygon:   rc.Polygon,
			Neighbors: rc.Neighbors,
		}
	}

	m := &Map{
		ID:       raw.ID,
		Name:     raw.Name,
		Width:    raw.Width,
		Height:   raw.Height,
		Capitals: len(raw.Capitals),
		Cells:    cells,
	}
	if m.Name == "" {
		m.Name = m.ID
	}
	if m.Width == 0 {
		m.Width = maxX - minX
	}
	if m.Height == 0 {
		m.Height = maxY - minY
	}
	if len(raw.Capitals) > 0 {
		m.Cells = reorder(cells, raw.Capitals)
	}
	return m
}

// Raw returns the map in its file format.
func (m *Map) Raw() RawMap {
	raw := RawMap{
		ID:     m.ID,
		Name:   m.Name,
		Width:  m.Width,
		Height: m.Height,
		Cells:  make([]RawCell, len(m.Cells)),
	}
	for i := 0; i < m.Capitals; i++ {
		raw.Capitals = append(raw.Capitals, i)
	}
	for i, c := range m.Cells {
		centroid := c.Centroid
		raw.Cells[i] = RawCell{ID: c.ID, Centroid: &centroid, Polygon: c.Polygon, Neighbors: c.Neighbors}
	}
	return raw
}
