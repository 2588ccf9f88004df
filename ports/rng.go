package ports

// RNG is an explicitly threaded, seeded random source. Every draw made while
// building a dataset goes through one RNG so a seed fully determines the output.
type RNG interface {
	// IntRange returns a uniform integer in [lo, hi)
	IntRange(lo, hi int) int

	// Normal returns a draw from N(0, 1)
	Normal() float64

	// Perm returns a random permutation of [0, n)
	Perm(n int) []int

	// Seed returns the seed the stream was created with
	Seed() int64
}
