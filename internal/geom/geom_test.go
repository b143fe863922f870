package geom

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCentroid(t *testing.T) {
	t.Run("mean of vertices", func(t *testing.T) {
		c := Centroid([]Point{Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2)})
		require.InDelta(t, 2.0, c.X, 1e-12)
		require.InDelta(t, 1.0, c.Y, 1e-12)
	})

	t.Run("vertex mean is not area weighted", func(t *testing.T) {
		// Extra collinear vertex pulls the mean to the right.
		c := Centroid([]Point{Pt(0, 0), Pt(2, 0), Pt(4, 0), Pt(4, 4), Pt(0, 4)})
		require.InDelta(t, 2.0, c.X, 1e-12)
		require.InDelta(t, 1.6, c.Y, 1e-12)
	})

	t.Run("empty", func(t *testing.T) {
		require.Equal(t, Point{}, Centroid(nil))
	})
}

func TestEdgeKeyOrderIndependent(t *testing.T) {
	a, b := Pt(5, -5), Pt(5, 5)
	require.Equal(t, EdgeKey(a, b), EdgeKey(b, a))
	require.NotEqual(t, EdgeKey(a, b), EdgeKey(a, Pt(5, 5.0000001)))
}

func TestEdgesClosePolygon(t *testing.T) {
	poly := []Point{Pt(0, 0), Pt(1, 0), Pt(1, 1)}
	edges := Edges(poly)
	require.Len(t, edges, 3)
	require.Equal(t, Segment{A: Pt(1, 1), B: Pt(0, 0)}, edges[2])
	require.Nil(t, Edges([]Point{Pt(0, 0)}))
}

func TestRayIntersect(t *testing.T) {
	tests := []struct {
		name  string
		ray   Ray
		seg   Segment
		hit   bool
		wantT float64
		wantS float64
	}{
		{
			name:  "east ray hits vertical edge at midpoint",
			ray:   Ray{Origin: Pt(0, 0), Dir: Pt(1, 0)},
			seg:   Segment{A: Pt(5, -5), B: Pt(5, 5)},
			hit:   true,
			wantT: 5,
			wantS: 0.5,
		},
		{
			name:  "reversed segment flips s",
			ray:   Ray{Origin: Pt(0, 0), Dir: Pt(1, 0)},
			seg:   Segment{A: Pt(5, 5), B: Pt(5, -3)},
			hit:   true,
			wantT: 5,
			wantS: 0.625,
		},
		{
			name: "behind the origin",
			ray:  Ray{Origin: Pt(0, 0), Dir: Pt(-1, 0)},
			seg:  Segment{A: Pt(5, -5), B: Pt(5, 5)},
		},
		{
			name: "misses the segment span",
			ray:  Ray{Origin: Pt(0, 10), Dir: Pt(1, 0)},
			seg:  Segment{A: Pt(5, -5), B: Pt(5, 5)},
		},
		{
			name: "parallel",
			ray:  Ray{Origin: Pt(0, 0), Dir: Pt(0, 1)},
			seg:  Segment{A: Pt(5, -5), B: Pt(5, 5)},
		},
		{
			name:  "segment endpoint counts",
			ray:   Ray{Origin: Pt(0, 5), Dir: Pt(1, 0)},
			seg:   Segment{A: Pt(5, -5), B: Pt(5, 5)},
			hit:   true,
			wantT: 5,
			wantS: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotT, gotS, ok := tt.ray.Intersect(tt.seg)
			require.Equal(t, tt.hit, ok)
			if !tt.hit {
				return
			}
			require.InDelta(t, tt.wantT, gotT, 1e-9)
			require.InDelta(t, tt.wantS, gotS, 1e-9)
		})
	}
}

func TestUnitAndAngles(t *testing.T) {
	n := Unit(90)
	require.InDelta(t, 0, n.X, 1e-12)
	require.InDelta(t, 1, n.Y, 1e-12)

	sw := Unit(-135)
	require.InDelta(t, -math.Sqrt2/2, sw.X, 1e-12)
	require.InDelta(t, -math.Sqrt2/2, sw.Y, 1e-12)
	require.InDelta(t, -135, Degrees(sw), 1e-9)

	require.InDelta(t, 90, AngleDiff(180, -90), 1e-12)
	require.InDelta(t, 10, AngleDiff(-175, 175), 1e-12)
	require.InDelta(t, 0, AngleDiff(360, 0), 1e-12)
}

func TestPointJSON(t *testing.T) {
	data, err := json.Marshal(Pt(1.5, -2))
	require.NoError(t, err)
	require.JSONEq(t, `[1.5,-2]`, string(data))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`[3,4]`), &p))
	require.Equal(t, Pt(3, 4), p)
	require.InDelta(t, 5, p.Len(), 1e-12)

	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &p))
}
