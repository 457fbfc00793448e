// Package iforest implements the Isolation Forest algorithm for anomaly detection.
package iforest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/random"
)

var _ detectors.StreamDetector = (*IsolationForest)(nil)

// IsolationForest is a detectors.StreamDetector backed by a Forest. Fit swaps in a
// newly trained forest; scoring only reads the current one.
type IsolationForest struct {
	mu sync.RWMutex

	cfg     detectors.Config
	logger  zerolog.Logger
	metrics *collectors

	// Trained model
	forest    *Forest
	threshold float64
}

// Option configures an IsolationForest.
type Option func(*IsolationForest)

// WithConfig replaces the whole configuration.
func WithConfig(cfg detectors.Config) Option {
	return func(f *IsolationForest) {
		f.cfg = cfg
	}
}

// WithTrees sets the number of isolation trees.
func WithTrees(n int) Option {
	return func(f *IsolationForest) {
		f.cfg.NumTrees = n
	}
}

// WithSampleSize sets the subsample size for each tree.
func WithSampleSize(n int) Option {
	return func(f *IsolationForest) {
		f.cfg.SubsampleSize = n
	}
}

// WithMaxDepth sets the depth bound of each tree.
func WithMaxDepth(d int) Option {
	return func(f *IsolationForest) {
		f.cfg.MaxDepth = d
	}
}

// WithThreshold sets the anomaly threshold.
func WithThreshold(t float64) Option {
	return func(f *IsolationForest) {
		f.cfg.Threshold = t
	}
}

// WithContamination derives the threshold from the expected proportion of
// anomalies in the training data.
func WithContamination(c float64) Option {
	return func(f *IsolationForest) {
		f.cfg.Contamination = c
	}
}

// WithDimensions sets the expected feature width.
func WithDimensions(d int) Option {
	return func(f *IsolationForest) {
		f.cfg.Dimensions = d
	}
}

// WithSeed sets the random seed for reproducibility.
func WithSeed(seed int64) Option {
	return func(f *IsolationForest) {
		f.cfg.Seed = seed
	}
}

// WithWorkers sets how many goroutines build trees and score batches.
func WithWorkers(n int) Option {
	return func(f *IsolationForest) {
		f.cfg.Workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *IsolationForest) {
		f.logger = logger
	}
}

// WithRegisterer registers the detector's collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(f *IsolationForest) {
		f.metrics.register(reg)
	}
}

// New creates a new IsolationForest with the given options. The configuration is
// validated by Fit.
func New(opts ...Option) *IsolationForest {
	f := &IsolationForest{
		cfg:     detectors.DefaultConfig(),
		logger:  zerolog.Nop(),
		metrics: newCollectors(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.threshold = f.cfg.Threshold

	return f
}

// Config returns the detector configuration.
func (f *IsolationForest) Config() detectors.Config {
	return f.cfg
}

// Fit trains a new forest on data and replaces the current one.
func (f *IsolationForest) Fit(data []features.Vector) error {
	if err := f.cfg.Validate(); err != nil {
		return err
	}

	src := random.NewTimeSeeded()
	if f.cfg.Seed != 0 {
		src = random.New(f.cfg.Seed)
	}

	f.logger.Info().
		Int("samples", len(data)).
		Int("trees", f.cfg.NumTrees).
		Int("subsample", f.cfg.SubsampleSize).
		Int("max_depth", f.cfg.MaxDepth).
		Int("workers", f.cfg.Workers).
		Msg("training isolation forest")

	start := time.Now()
	forest, err := Train(data, f.cfg, src)
	if err != nil {
		return errors.Wrap(err, "fit")
	}

	if f.logger.GetLevel() <= zerolog.DebugLevel {
		for i, t := range forest.trees {
			f.logger.Debug().
				Int("tree", i+1).
				Int("nodes", t.NumNodes()).
				Int("height", t.Height()).
				Msg("tree built")
		}
	}

	threshold := f.cfg.Threshold
	if f.cfg.Contamination > 0 {
		scores, err := scoreAll(forest, data, f.cfg.Workers)
		if err != nil {
			return errors.Wrap(err, "fit")
		}
		threshold = contaminationThreshold(scores, f.cfg.Contamination)
	}

	f.mu.Lock()
	f.forest = forest
	f.threshold = threshold
	f.mu.Unlock()

	f.metrics.fits.Inc()
	f.metrics.trees.Set(float64(forest.NumTrees()))
	f.metrics.threshold.Set(threshold)

	f.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("subsample", forest.SubsampleSize()).
		Float64("threshold", threshold).
		Msg("isolation forest training complete")

	return nil
}

// Forest returns the trained forest, or nil before Fit.
func (f *IsolationForest) Forest() *Forest {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.forest
}

func (f *IsolationForest) snapshot(op string) (*Forest, float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.forest == nil {
		return nil, 0, errors.NotTrained(op)
	}
	return f.forest, f.threshold, nil
}

// Predict returns anomaly scores for the given samples.
func (f *IsolationForest) Predict(data []features.Vector) ([]detectors.Score, error) {
	forest, threshold, err := f.snapshot("predict")
	if err != nil {
		return nil, err
	}

	values, err := scoreAll(forest, data, f.cfg.Workers)
	if err != nil {
		return nil, err
	}

	scores := make([]detectors.Score, len(data))
	for i, v := range data {
		scores[i] = detectors.NewScore(v, values[i], threshold)
		f.metrics.observe(values[i], scores[i].IsAnomaly())
	}

	return scores, nil
}

// PredictOne returns the anomaly score for a single sample.
func (f *IsolationForest) PredictOne(sample features.Vector) (detectors.Score, error) {
	forest, threshold, err := f.snapshot("predict one")
	if err != nil {
		return detectors.Score{}, err
	}

	value, err := AnomalyScore(forest, sample)
	if err != nil {
		return detectors.Score{}, err
	}

	score := detectors.NewScore(sample, value, threshold)
	f.metrics.observe(value, score.IsAnomaly())

	return score, nil
}

// PredictStream scores samples from input until it is closed or ctx is done.
// Samples that cannot be scored are logged and dropped.
func (f *IsolationForest) PredictStream(ctx context.Context, input <-chan features.Vector, output chan<- detectors.Score) error {
	if _, _, err := f.snapshot("predict stream"); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-input:
			if !ok {
				return nil
			}

			score, err := f.PredictOne(sample)
			if err != nil {
				f.logger.Warn().Err(err).Str("id", sample.ID()).Msg("dropping sample")
				continue
			}

			select {
			case output <- score:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Threshold returns the current anomaly threshold.
func (f *IsolationForest) Threshold() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.threshold
}

// SetThreshold updates the anomaly threshold.
func (f *IsolationForest) SetThreshold(t float64) error {
	if t < 0 || t > 1 {
		return errors.InvalidConfiguration("threshold", t, "must be within [0, 1]")
	}

	f.mu.Lock()
	f.threshold = t
	f.mu.Unlock()

	f.metrics.threshold.Set(t)
	return nil
}

// scoreAll scores data against forest, splitting the work across workers goroutines.
func scoreAll(forest *Forest, data []features.Vector, workers int) ([]float64, error) {
	values := make([]float64, len(data))
	if len(data) == 0 {
		return values, nil
	}
	if workers > len(data) {
		workers = len(data)
	}

	chunk := (len(data) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(data); start += chunk {
		start, end := start, start+chunk
		if end > len(data) {
			end = len(data)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				v, err := AnomalyScore(forest, data[i])
				if err != nil {
					return err
				}
				values[i] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// contaminationThreshold returns the (1-c) empirical quantile of scores.
func contaminationThreshold(scores []float64, c float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	return stat.Quantile(1-c, stat.Empirical, sorted, nil)
}
