package generator

import (
	"math/rand/v2"
	"sync/atomic"
)

// RandFactory hands out independent random generators, one per goroutine.
// With a seed the sequence of generators is reproducible.
type RandFactory struct {
	seed    uint64
	seeded  bool
	counter atomic.Uint64
}

// NewRandFactory returns a factory seeded from the runtime's entropy
func NewRandFactory() *RandFactory {
	return &RandFactory{}
}

// NewSeededRandFactory returns a factory whose n-th generator is always the same
func NewSeededRandFactory(seed uint64) *RandFactory {
	return &RandFactory{seed: seed, seeded: true}
}

// New returns a fresh generator. The result must not be shared between goroutines.
func (f *RandFactory) New() *rand.Rand {
	if !f.seeded {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	n := f.counter.Add(1)
	return rand.New(rand.NewPCG(f.seed, n))
}
