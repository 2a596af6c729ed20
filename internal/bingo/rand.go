// internal/bingo/rand.go
//
// Random source of a board. Boards draw from the process generator unless
// WithRand injects a seeded one (tests, daily boards).

package bingo

import "math/rand/v2"

// Rand is the random source used by a Board. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	// IntN returns a uniformly distributed int in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// processRand draws from the process-wide generator.
type processRand struct{}

func (processRand) IntN(n int) int { return rand.IntN(n) }
