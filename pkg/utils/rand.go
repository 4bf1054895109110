package utils

import (
	"math"
	"math/rand"
)

// RandSource is a seeded random number generator. A RandSource is owned by a
// single study and is not safe for concurrent use.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a new random source with the given seed. Seed zero is
// a valid seed; identical seeds always yield identical streams.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the source was created with
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Derive returns an independent source whose seed is a fixed mix of this
// source's seed and salt.
func (r *RandSource) Derive(salt int64) *RandSource {
	return NewRandSource(MixSeed(r.seed, salt))
}

// MixSeed combines a seed and a salt into a new seed (splitmix64 finalizer).
func MixSeed(seed, salt int64) int64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15*uint64(salt+1)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64((z ^ (z >> 31)) & math.MaxInt64)
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// Choice draws an index with probability proportional to weights.
// Non-positive weights are never chosen. Returns -1 if no weight is positive.
func (r *RandSource) Choice(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	u := r.rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		u -= w
		if u < 0 {
			return i
		}
	}
	// Float rounding can leave u marginally non-negative
	return last
}
