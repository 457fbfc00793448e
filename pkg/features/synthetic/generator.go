// Package synthetic generates syscall frequency profiles that stand in for a live
// collector.
package synthetic

import (
	"fmt"

	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/random"
)

// Generator produces labelled process behaviour profiles over features.NumSyscalls
// dimensions.
type Generator struct {
	rng random.Source
}

// New returns a Generator drawing from src.
func New(src random.Source) *Generator {
	return &Generator{rng: src}
}

// Normal returns a benign profile: frequent common syscalls, occasional mid-range
// syscalls and almost none of the rare ones.
func (g *Generator) Normal(name string) features.Vector {
	freq := make([]int, features.NumSyscalls)
	for i := range freq {
		switch {
		case i < 5:
			freq[i] = 50 + g.rng.NextInt(-10, 10)
		case i < 10:
			freq[i] = 10 + g.rng.NextInt(-5, 5)
		default:
			freq[i] = g.rng.NextInt(0, 3)
		}
	}
	return features.NewLabeled(name, freq, false)
}

// Anomalous returns a suspicious profile: common syscalls suppressed and rare,
// privileged syscalls heavily used.
func (g *Generator) Anomalous(name string) features.Vector {
	freq := make([]int, features.NumSyscalls)
	for i := range freq {
		switch {
		case i >= 10:
			freq[i] = 30 + g.rng.NextInt(-5, 15)
		case i < 5:
			freq[i] = 5 + g.rng.NextInt(-2, 3)
		default:
			freq[i] = g.rng.NextInt(0, 10)
		}
	}
	return features.NewLabeled(name, freq, true)
}

// TrainingSet returns n normal profiles named prefix_0 .. prefix_{n-1}.
func (g *Generator) TrainingSet(prefix string, n int) []features.Vector {
	out := make([]features.Vector, n)
	for i := range out {
		out[i] = g.Normal(fmt.Sprintf("%s_%d", prefix, i))
	}
	return out
}

// TestSet returns n profiles of which the last anomalous are anomalous.
func (g *Generator) TestSet(prefix string, n, anomalous int) []features.Vector {
	out := make([]features.Vector, n)
	for i := range out {
		name := fmt.Sprintf("%s_%d", prefix, i)
		if i >= n-anomalous {
			out[i] = g.Anomalous(name)
		} else {
			out[i] = g.Normal(name)
		}
	}
	return out
}
