package game

import (
	"fmt"
	"math"
	"sort"

	"club-conquest/internal/geom"
	"club-conquest/internal/random"
)

// Setup is everything needed to start a match: the tessellated map and the
// roster. Team i starts on cell i, which is also its capital.
type Setup struct {
	Settings Settings
	Cells    []CellInput
	Teams    []TeamInput
}

// CellInput contains cell information from the map.
type CellInput struct {
	ID        int
	Centroid  geom.Point
	Polygon   []geom.Point
	Neighbors []int
}

// TeamInput contains team information from the roster.
type TeamInput struct {
	ID      int
	Name    string
	Color   string
	Overall int // 0 means the balance default
}

// NewBoard validates a setup and builds the initial board from it.
func NewBoard(setup Setup, balance Balance) (*Board, error) {
	if err := validateSetup(setup); err != nil {
		return nil, err
	}

	board := &Board{
		Seed:    setup.Settings.Seed,
		Turn:    0,
		Teams:   make([]Team, len(setup.Teams)),
		Cells:   make([]Cell, len(setup.Cells)),
		History: []HistoryItem{},
	}

	for i, t := range setup.Teams {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Team %d", i+1)
		}
		overall := t.Overall
		if overall == 0 {
			overall = balance.Overall.Default
		}
		board.Teams[i] = Team{
			ID:            t.ID,
			Name:          name,
			Color:         t.Color,
			Alive:         true,
			Overall:       balance.clampOverall(overall),
			Form:          balance.clampForm(1),
			CapitalCellID: t.ID,
		}
	}

	for i, c := range setup.Cells {
		board.Cells[i] = Cell{
			ID:        c.ID,
			Centroid:  c.Centroid,
			Polygon:   append([]geom.Point(nil), c.Polygon...),
			Neighbors: append([]int(nil), c.Neighbors...),
		}
	}

	neutral := pickNeutrals(setup, balance)
	for i := range board.Cells {
		switch {
		case i < len(board.Teams):
			board.Cells[i].OwnerTeamID = i
		case neutral[i]:
			board.Cells[i].OwnerTeamID = Neutral
		default:
			board.Cells[i].OwnerTeamID = nearestCapital(board, board.Cells[i].Centroid)
		}
	}

	board.rebuildBorders()
	board.refreshAlive()
	return board, nil
}

// pickNeutrals draws floor(total * share) non-capital cells without
// replacement from the setup's init stream.
func pickNeutrals(setup Setup, balance Balance) map[int]bool {
	numTeams := len(setup.Teams)
	candidates := make([]int, 0, len(setup.Cells)-numTeams)
	for _, c := range setup.Cells {
		if c.ID >= numTeams {
			candidates = append(candidates, c.ID)
		}
	}

	target := int(math.Floor(float64(len(setup.Cells)) * balance.Neutrals.Share))
	if target > len(candidates) {
		target = len(candidates)
	}

	rng := random.New(random.Key(setup.Settings.Seed, "init", setup.Settings.Country, numTeams))
	picked := make(map[int]bool, target)
	// Partial Fisher-Yates: the first target slots end up as the picks.
	for i := 0; i < target; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		picked[candidates[i]] = true
	}
	return picked
}

// nearestCapital returns the team whose capital centroid is closest to p.
func nearestCapital(b *Board, p geom.Point) int {
	best := 0
	bestDist := math.Inf(1)
	for _, t := range b.Teams {
		d := b.Cells[t.CapitalCellID].Centroid.Sub(p)
		dist := d.Dot(d)
		if dist < bestDist {
			best = t.ID
			bestDist = dist
		}
	}
	return best
}

// rebuildBorders recomputes the shared-edge cache and fills in neighbor lists
// for cells that came without one.
func (b *Board) rebuildBorders() {
	borders, adjacency := findBorders(b.Cells)
	b.borders = borders
	for i := range b.Cells {
		if len(b.Cells[i].Neighbors) == 0 {
			b.Cells[i].Neighbors = adjacency[b.Cells[i].ID]
		}
	}
}

// findBorders pairs up polygon edges that two different cells share exactly.
// Borders come out in cell ID order, then polygon order.
func findBorders(cells []Cell) ([]Border, map[int][]int) {
	type edgeSide struct {
		cell   int
		seg    geom.Segment
		paired bool
	}

	seen := make(map[geom.Key]*edgeSide)
	borders := make([]Border, 0)
	linked := make(map[int]map[int]bool)
	link := func(a, b int) {
		if linked[a] == nil {
			linked[a] = make(map[int]bool)
		}
		linked[a][b] = true
	}

	for _, c := range cells {
		for _, seg := range geom.Edges(c.Polygon) {
			if seg.A == seg.B {
				continue // closed rings repeat their first vertex
			}
			key := geom.EdgeKey(seg.A, seg.B)
			side, ok := seen[key]
			if !ok {
				seen[key] = &edgeSide{cell: c.ID, seg: seg}
				continue
			}
			if side.cell == c.ID || side.paired {
				continue
			}
			side.paired = true
			borders = append(borders, Border{CellA: side.cell, CellB: c.ID, Edge: side.seg})
			link(side.cell, c.ID)
			link(c.ID, side.cell)
		}
	}

	adjacency := make(map[int][]int, len(linked))
	for id, set := range linked {
		ids := make([]int, 0, len(set))
		for n := range set {
			ids = append(ids, n)
		}
		sort.Ints(ids)
		adjacency[id] = ids
	}
	return borders, adjacency
}

func validateSetup(setup Setup) error {
	if len(setup.Teams) < 2 {
		return fmt.Errorf("%w: need at least 2 teams, got %d", ErrMalformedSetup, len(setup.Teams))
	}
	if len(setup.Cells) < len(setup.Teams) {
		return fmt.Errorf("%w: %d cells for %d teams", ErrMalformedSetup, len(setup.Cells), len(setup.Teams))
	}
	for i, t := range setup.Teams {
		if t.ID != i {
			return fmt.Errorf("%w: team at index %d has id %d", ErrMalformedSetup, i, t.ID)
		}
	}
	cells := make([]Cell, len(setup.Cells))
	for i, c := range setup.Cells {
		cells[i] = Cell{ID: c.ID, Polygon: c.Polygon, Neighbors: c.Neighbors}
	}
	return validateCells(cells, len(setup.Teams))
}

// validateCells checks the structural invariants of a cell list: IDs equal
// indices, polygons can form borders, neighbors and owners refer to real ids.
func validateCells(cells []Cell, numTeams int) error {
	for i, c := range cells {
		if c.ID != i {
			return fmt.Errorf("%w: cell at index %d has id %d", ErrMalformedSetup, i, c.ID)
		}
		if len(c.Polygon) < 3 {
			return fmt.Errorf("%w: cell %d polygon has %d points", ErrMalformedSetup, c.ID, len(c.Polygon))
		}
		for _, n := range c.Neighbors {
			if n < 0 || n >= len(cells) || n == c.ID {
				return fmt.Errorf("%w: cell %d has invalid neighbor %d", ErrMalformedSetup, c.ID, n)
			}
		}
		if c.OwnerTeamID != Neutral && (c.OwnerTeamID < 0 || c.OwnerTeamID >= numTeams) {
			return fmt.Errorf("%w: cell %d owned by unknown team %d", ErrMalformedSetup, c.ID, c.OwnerTeamID)
		}
	}
	return nil
}
