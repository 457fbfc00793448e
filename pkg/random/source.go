// Package random provides the seedable integer generator used by tree construction
// and the synthetic data generators.
package random

import (
	"math"
	"math/bits"
	"math/rand"
	"time"
)

// Source draws uniformly distributed integers.
//
// A Source is not safe for concurrent use. Parallel builders each own one,
// typically obtained from Derive.
type Source interface {
	// NextInt returns a uniform integer in the closed interval [min, max].
	// It panics if min > max.
	NextInt(min, max int) int

	// Seed returns a fresh seed for a child source.
	Seed() int64
}

type source struct {
	rng *rand.Rand
}

// New returns a Source with a fixed seed. Equal seeds produce equal sequences.
func New(seed int64) Source {
	return &source{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeeded returns a Source seeded from the wall clock.
func NewTimeSeeded() Source {
	return New(time.Now().UnixNano())
}

func (s *source) NextInt(min, max int) int {
	if min > max {
		panic("random: NextInt called with min > max")
	}
	// The difference is exact in uint64 even when max-min overflows int.
	span := uint64(max) - uint64(min)
	if span < math.MaxInt {
		return min + s.rng.Intn(int(span)+1)
	}
	return int(uint64(min) + s.wide(span))
}

// wide returns a uniform value in [0, span] for spans that do not fit Intn.
func (s *source) wide(span uint64) uint64 {
	mask := uint64(math.MaxUint64) >> (64 - bits.Len64(span))
	for {
		if u := s.rng.Uint64() & mask; u <= span {
			return u
		}
	}
}

func (s *source) Seed() int64 {
	return s.rng.Int63()
}

// Derive splits master into n independent sources. The seeds are drawn from master
// sequentially before any child is used, so child i is the same no matter how the
// children are later scheduled.
func Derive(master Source, n int) []Source {
	children := make([]Source, n)
	for i := range children {
		children[i] = New(master.Seed())
	}
	return children
}
