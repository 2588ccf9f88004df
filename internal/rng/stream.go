package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is a deterministic random stream. The uniform, permutation and normal
// draws all advance the same PCG source, so the order of calls is part of
// the output.
type Stream struct {
	seed   int64
	src    *rand.PCG
	rnd    *rand.Rand
	normal distuv.Normal
}

// New creates a stream for the given seed
func New(seed int64) *Stream {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Stream{
		seed:   seed,
		src:    src,
		rnd:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// IntRange returns a uniform integer in [lo, hi). It returns lo when the
// range is empty.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rnd.IntN(hi-lo)
}

// Normal returns a standard normal draw
func (s *Stream) Normal() float64 {
	return s.normal.Rand()
}

// Perm returns a random permutation of [0, n)
func (s *Stream) Perm(n int) []int {
	if n <= 0 {
		return []int{}
	}
	return s.rnd.Perm(n)
}

// Seed returns the seed the stream was created with
func (s *Stream) Seed() int64 {
	return s.seed
}
