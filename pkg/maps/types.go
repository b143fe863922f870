// Package maps builds the tessellated maps that matches are played on: a
// seeded generator, a JSON loader for external tessellations and the club
// rosters that name the teams.
package maps

import (
	"fmt"
	"sort"

	"club-conquest/internal/game"
	"club-conquest/internal/geom"
)

// Map is a tessellation ready to be handed to the engine. Cells are indexed by
// ID, and the first Capitals cells are the team capitals.
type Map struct {
	ID       string
	Name     string
	Width    float64
	Height   float64
	Capitals int
	Cells    []Cell
}

// Cell is one polygon of the tessellation. Polygon vertices are shared
// exactly with the neighboring cells.
type Cell struct {
	ID        int
	Centroid  geom.Point
	Polygon   []geom.Point
	Neighbors []int
}

// CellCount returns the number of cells.
func (m *Map) CellCount() int {
	return len(m.Cells)
}

// Setup builds the engine setup for a roster. Team i starts on cell i.
func (m *Map) Setup(settings game.Settings, teams []game.TeamInput) (game.Setup, error) {
	if len(teams) > len(m.Cells) {
		return game.Setup{}, fmt.Errorf("map %s has %d cells for %d teams", m.ID, len(m.Cells), len(teams))
	}
	if m.Capitals > 0 && len(teams) > m.Capitals {
		return game.Setup{}, fmt.Errorf("map %s has %d capitals for %d teams", m.ID, m.Capitals, len(teams))
	}

	cells := make([]game.CellInput, len(m.Cells))
	for i, c := range m.Cells {
		cells[i] = game.CellInput{
			ID:        c.ID,
			Centroid:  c.Centroid,
			Polygon:   append([]geom.Point(nil), c.Polygon...),
			Neighbors: append([]int(nil), c.Neighbors...),
		}
	}
	return game.Setup{Settings: settings, Cells: cells, Teams: teams}, nil
}

// reorder moves the capital cells to the front, in the given order, and
// renumbers every cell and neighbor reference to match.
func reorder(cells []Cell, capitals []int) []Cell {
	order := make([]int, 0, len(cells))
	isCapital := make(map[int]bool, len(capitals))
	for _, id := range capitals {
		order = append(order, id)
		isCapital[id] = true
	}
	for i := range cells {
		if !isCapital[i] {
			order = append(order, i)
		}
	}

	newID := make([]int, len(cells))
	for pos, old := range order {
		newID[old] = pos
	}

	out := make([]Cell, len(cells))
	for pos, old := range order {
		c := cells[old]
		neighbors := make([]int, len(c.Neighbors))
		for i, n := range c.Neighbors {
			neighbors[i] = newID[n]
		}
		sort.Ints(neighbors)
		out[pos] = Cell{ID: pos, Centroid: c.Centroid, Polygon: c.Polygon, Neighbors: neighbors}
	}
	return out
}
