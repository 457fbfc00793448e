package iforest

import (
	"math"

	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

// degenerateScore is returned when the subsample is too small to normalise.
const degenerateScore = 0.5

// AnomalyScore returns 2^(-E[h(x)] / c(S)) for sample, where E[h(x)] is the mean
// path length over the forest and S its subsample size. The result is in [0, 1];
// higher is more anomalous. A forest with S <= 1 scores every sample 0.5.
func AnomalyScore(f *Forest, sample features.Vector) (float64, error) {
	if sample.Len() != f.dimensions {
		return 0, errors.NewDimensionError("score", f.dimensions, sample.Len())
	}

	avgPath := f.AveragePathLength(sample)

	c := CFactor(f.subsampleSize)
	if c == 0 {
		return degenerateScore, nil
	}

	return math.Pow(2, -avgPath/c), nil
}
