package random

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

func TestSameSeedSameStream(t *testing.T) {
	a := New("demo:match:1:0:7")
	b := New("demo:match:1:0:7")
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New("demo:match:1:0:7")
	b := New("demo:match:1:0:8")
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	require.Less(t, same, 20)
}

func TestFloat64Range(t *testing.T) {
	s := New("range")
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestRollIsFirstDraw(t *testing.T) {
	require.Equal(t, New("k").Float64(), Roll("k"))
}

func TestKey(t *testing.T) {
	require.Equal(t, "demo:match:3:0:7", Key("demo", "match", 3, 0, 7))
	require.Equal(t, "", Key())
}

func TestWeightedChoice(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		roll    float64
		want    int
	}{
		{"empty", nil, 0.5, -1},
		{"first bucket", []float64{1, 1, 2}, 0.1, 0},
		{"boundary goes to next bucket", []float64{1, 1, 2}, 0.25, 1},
		{"last bucket", []float64{1, 1, 2}, 0.99, 2},
		{"zero weight skipped", []float64{1, 0, 1}, 0.5, 2},
		{"negative treated as zero", []float64{-5, 1}, 0.0, 1},
		{"all zero is uniform", []float64{0, 0, 0, 0}, 0.6, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WeightedChoice(tt.weights, fixed(tt.roll)))
		})
	}
}

func TestWeightedChoiceDistribution(t *testing.T) {
	src := New("weights")
	counts := make([]int, 3)
	const n = 30000
	for i := 0; i < n; i++ {
		counts[WeightedChoice([]float64{1, 2, 7}, src)]++
	}
	require.InDelta(t, 0.1, float64(counts[0])/n, 0.02)
	require.InDelta(t, 0.2, float64(counts[1])/n, 0.02)
	require.InDelta(t, 0.7, float64(counts[2])/n, 0.02)
}
