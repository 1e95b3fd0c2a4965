// Package randutil centralises deterministic RNG construction for the
// simulator and replay layers. The planner itself never draws random
// numbers.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided
// int64, deriving the two 64-bit seeds rand/v2's PCG needs so that all
// call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive folds a stream index into a base seed, giving independent
// reproducible streams for repeated replay runs.
func Derive(seed int64, stream int) int64 {
	return int64(mix(uint64(seed) + uint64(stream)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
