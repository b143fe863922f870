package game

import "club-conquest/internal/geom"

// Neutral is the owner id of unowned cells.
const Neutral = -1

// Cell represents a single polygonal region of the map.
type Cell struct {
	ID          int          `json:"id"`
	OwnerTeamID int          `json:"ownerTeamId"` // Team ID, or Neutral
	Centroid    geom.Point   `json:"centroid"`
	Polygon     []geom.Point `json:"polygon"`
	Neighbors   []int        `json:"neighbors"` // IDs of adjacent cells
}

// IsNeutral returns true if no team owns the cell.
func (c *Cell) IsNeutral() bool {
	return c.OwnerTeamID == Neutral
}

// IsAdjacent returns true if id is one of the cell's neighbors.
func (c *Cell) IsAdjacent(id int) bool {
	for _, n := range c.Neighbors {
		if n == id {
			return true
		}
	}
	return false
}

// clone returns a deep copy of the cell.
func (c Cell) clone() Cell {
	c.Polygon = append([]geom.Point(nil), c.Polygon...)
	c.Neighbors = append([]int(nil), c.Neighbors...)
	return c
}

// Border is a polygon edge shared by two cells.
type Border struct {
	CellA int
	CellB int
	Edge  geom.Segment
}

// Other returns the cell on the opposite side of the border from id.
func (b Border) Other(id int) int {
	if b.CellA == id {
		return b.CellB
	}
	return b.CellA
}
