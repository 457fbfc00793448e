package iforest

import (
	"golang.org/x/sync/errgroup"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/random"
)

// Forest is a trained ensemble of isolation trees. It is never modified after Train
// returns and may be scored from any number of goroutines.
type Forest struct {
	trees         []*Tree
	subsampleSize int
	dimensions    int
}

// Train builds cfg.NumTrees trees, each from cfg.SubsampleSize vectors drawn with
// replacement from training. The subsample size is clamped to len(training).
//
// Each tree gets its own random stream split from src before any tree is built, so
// the result is the same for every cfg.Workers value.
func Train(training []features.Vector, cfg detectors.Config, src random.Source) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := features.CheckDimensions("train", training, cfg.Dimensions); err != nil {
		return nil, err
	}

	sampleSize := cfg.SubsampleSize
	if sampleSize > len(training) {
		sampleSize = len(training)
	}

	streams := random.Derive(src, cfg.NumTrees)
	trees := make([]*Tree, cfg.NumTrees)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := streams[i]

			// Sample with replacement
			sample := make([]features.Vector, sampleSize)
			for j := range sample {
				sample[j] = training[rng.NextInt(0, len(training)-1)]
			}

			tree, err := BuildTree(sample, cfg.MaxDepth, rng)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Forest{
		trees:         trees,
		subsampleSize: sampleSize,
		dimensions:    cfg.Dimensions,
	}, nil
}

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int { return len(f.trees) }

// SubsampleSize returns the effective per-tree sample size.
func (f *Forest) SubsampleSize() int { return f.subsampleSize }

// Dimensions returns the feature width the forest was trained on.
func (f *Forest) Dimensions() int { return f.dimensions }

// Tree returns the i-th tree.
func (f *Forest) Tree(i int) *Tree { return f.trees[i] }

// AveragePathLength returns the mean path length of sample over all trees.
func (f *Forest) AveragePathLength(sample features.Vector) float64 {
	var total float64
	for _, t := range f.trees {
		total += t.PathLength(sample)
	}
	return total / float64(len(f.trees))
}
