package vmath

import "math"

// FastRand is a seedable xorshift64 generator (13, 17, 5).
// Deterministic for a given seed, not safe for concurrent use.
type FastRand struct {
	state uint64
}

// NewFastRand creates a generator; a zero seed is remapped to 1 because
// xorshift has a fixed point at zero
func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 17
	r.state ^= r.state << 5
	return r.state
}

// Intn returns a uniform int in [0, n), 0 for n <= 0
func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a uniform float64 in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Range returns a uniform float64 in [lo, hi)
func (r *FastRand) Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// UnitVector returns a uniformly distributed direction on the unit circle
func (r *FastRand) UnitVector() (x, y float64) {
	const twoPi = 2 * math.Pi
	a := r.Float64() * twoPi
	return math.Cos(a), math.Sin(a)
}
