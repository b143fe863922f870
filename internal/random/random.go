// Package random provides deterministic random streams keyed by strings, so a
// whole match can be replayed from its seed.
package random

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/exp/rand"
)

// Source is a deterministic stream of pseudo-random numbers.
// A Source is not safe for concurrent use.
type Source struct {
	rng *rand.Rand
}

// New returns a Source whose entire output is determined by seed.
func New(seed string) *Source {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return &Source{rng: rand.New(rand.NewSource(h.Sum64()))}
}

// Float64 returns the next number in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns the next integer in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Key joins the parts of a stream identity with ':' separators, e.g.
// Key("demo", "match", 3, 0, 7) == "demo:match:3:0:7".
func Key(parts ...any) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	return strings.Join(strs, ":")
}

// Roll returns the first number of the stream identified by key.
func Roll(key string) float64 {
	return New(key).Float64()
}

// Float64er is anything that yields numbers in [0, 1).
type Float64er interface {
	Float64() float64
}

// WeightedChoice picks an index with probability proportional to its weight,
// using inverse-CDF sampling over the cumulative weights. Negative weights are
// treated as zero. If every weight is zero the choice is uniform. It returns -1
// for an empty slice.
func WeightedChoice(weights []float64, src Float64er) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	r := src.Float64()
	if total <= 0 {
		return int(r * float64(len(weights)))
	}

	target := r * total
	cum := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if target < cum {
			return i
		}
	}
	// Rounding can leave target == total; fall back to the last positive weight.
	return last
}
