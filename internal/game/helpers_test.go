package game

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"club-conquest/internal/geom"
	"club-conquest/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Level: "error", Out: io.Discard})
	os.Exit(m.Run())
}

// square returns the unit square with its lower-left corner at (x, y).
func square(x, y float64) []geom.Point {
	return []geom.Point{geom.Pt(x, y), geom.Pt(x+1, y), geom.Pt(x+1, y+1), geom.Pt(x, y+1)}
}

// gridSetup builds a cols x rows board of unit squares. Cell id is y*cols+x,
// so the capitals are spread along the bottom row.
func gridSetup(cols, rows, numTeams int, seed string) Setup {
	setup := Setup{Settings: Settings{Seed: seed, Country: "Turkey"}}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			poly := square(float64(x), float64(y))
			setup.Cells = append(setup.Cells, CellInput{
				ID:       y*cols + x,
				Centroid: geom.Centroid(poly),
				Polygon:  poly,
			})
		}
	}
	for i := 0; i < numTeams; i++ {
		setup.Teams = append(setup.Teams, TeamInput{ID: i})
	}
	return setup
}

// rowBoard builds a single row of unit squares with the given owners. Each
// team's capital is the first cell it owns.
func rowBoard(t *testing.T, owners ...int) *Board {
	t.Helper()

	numTeams := 0
	for _, o := range owners {
		if o+1 > numTeams {
			numTeams = o + 1
		}
	}
	b := &Board{Seed: "test", Teams: make([]Team, numTeams), History: []HistoryItem{}}
	for i := range b.Teams {
		b.Teams[i] = Team{ID: i, Name: "T", Overall: 75, Form: 1, CapitalCellID: -1}
	}
	for i, o := range owners {
		poly := square(float64(i), 0)
		b.Cells = append(b.Cells, Cell{ID: i, OwnerTeamID: o, Centroid: geom.Centroid(poly), Polygon: poly})
		if o != Neutral && b.Teams[o].CapitalCellID == -1 {
			b.Teams[o].CapitalCellID = i
		}
	}
	require.NoError(t, validateCells(b.Cells, numTeams))
	b.rebuildBorders()
	b.refreshAlive()
	return b
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func always(v float64) func(string) float64 {
	return func(string) float64 { return v }
}

func newTestEngine(t *testing.T, setup Setup, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(setup, append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return e
}

func ownersOf(cells []Cell) []int {
	owners := make([]int, len(cells))
	for i, c := range cells {
		owners[i] = c.OwnerTeamID
	}
	return owners
}
