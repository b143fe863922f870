// Package game contains the attack-resolution engine: target resolution by ray
// casting, the combat model and the state machine that owns the board.
package game

// Settings are the match-level options chosen before setup.
type Settings struct {
	Seed        string `json:"seed"`
	Country     string `json:"selectedCountry"`
	MapColoring string `json:"mapColoring"`
}

// HistoryItem is the log entry for one resolved attack.
type HistoryItem struct {
	Turn            int       `json:"turn"`
	AttackerTeamID  int       `json:"attackerTeamId"`
	DefenderTeamID  int       `json:"defenderTeamId"` // Neutral for neutral cells
	TargetCellID    int       `json:"targetCellId"`
	FromCellID      int       `json:"fromCellId"`
	Direction       Direction `json:"direction"`
	AttackerWon     bool      `json:"attackerWon"`
	P               float64   `json:"p"`
	CapturedCapital bool      `json:"capturedCapital"`
	Timestamp       int64     `json:"timestamp"` // unix milliseconds
}

// Snapshot is a deep copy of the mutable part of the board.
type Snapshot struct {
	Teams   []Team        `json:"teams"`
	Cells   []Cell        `json:"cells"`
	Turn    int           `json:"turn"`
	History []HistoryItem `json:"history"`
}

// Board represents the complete state of a match. Cells and Teams are indexed
// by their IDs.
type Board struct {
	Seed    string
	Turn    int
	Teams   []Team
	Cells   []Cell
	History []HistoryItem

	// borders caches every polygon edge shared by two cells.
	borders []Border
}

// Team returns the team with the given ID.
func (b *Board) Team(id int) (*Team, bool) {
	if id < 0 || id >= len(b.Teams) {
		return nil, false
	}
	return &b.Teams[id], true
}

// Cell returns the cell with the given ID.
func (b *Board) Cell(id int) (*Cell, bool) {
	if id < 0 || id >= len(b.Cells) {
		return nil, false
	}
	return &b.Cells[id], true
}

// CellsOwnedBy returns the IDs of the cells owned by a team, in ID order.
func (b *Board) CellsOwnedBy(teamID int) []int {
	ids := make([]int, 0)
	for i := range b.Cells {
		if b.Cells[i].OwnerTeamID == teamID {
			ids = append(ids, b.Cells[i].ID)
		}
	}
	return ids
}

// OwnerCounts returns the number of cells per owner, including Neutral.
func (b *Board) OwnerCounts() map[int]int {
	counts := make(map[int]int, len(b.Teams)+1)
	for i := range b.Cells {
		counts[b.Cells[i].OwnerTeamID]++
	}
	return counts
}

// AliveTeams returns the teams that still own territory.
func (b *Board) AliveTeams() []Team {
	alive := make([]Team, 0, len(b.Teams))
	for _, t := range b.Teams {
		if t.Alive {
			alive = append(alive, t)
		}
	}
	return alive
}

// IsOver checks if at most one team is still alive.
func (b *Board) IsOver() bool {
	return len(b.AliveTeams()) <= 1
}

// Winner returns the last team standing, or false if the match is not over
// or nobody is left.
func (b *Board) Winner() (Team, bool) {
	alive := b.AliveTeams()
	if len(alive) != 1 {
		return Team{}, false
	}
	return alive[0], true
}

// refreshAlive recomputes Alive for every team from its cell count.
func (b *Board) refreshAlive() {
	counts := b.OwnerCounts()
	for i := range b.Teams {
		b.Teams[i].Alive = counts[b.Teams[i].ID] > 0
	}
}

// transferAll hands every cell of the loser to the winner.
func (b *Board) transferAll(loserID, winnerID int) int {
	moved := 0
	for i := range b.Cells {
		if b.Cells[i].OwnerTeamID == loserID {
			b.Cells[i].OwnerTeamID = winnerID
			moved++
		}
	}
	return moved
}

// snapshot returns a deep copy of the mutable state.
func (b *Board) snapshot() Snapshot {
	return Snapshot{
		Teams:   cloneTeams(b.Teams),
		Cells:   cloneCells(b.Cells),
		Turn:    b.Turn,
		History: cloneHistory(b.History),
	}
}

// restore replaces the mutable state with a copy of s.
func (b *Board) restore(s Snapshot) {
	b.Teams = cloneTeams(s.Teams)
	b.Cells = cloneCells(s.Cells)
	b.Turn = s.Turn
	b.History = cloneHistory(s.History)
}

func cloneTeams(teams []Team) []Team {
	return append([]Team{}, teams...)
}

func cloneCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i := range cells {
		out[i] = cells[i].clone()
	}
	return out
}

func cloneHistory(history []HistoryItem) []HistoryItem {
	return append([]HistoryItem{}, history...)
}
