package detectors

import (
	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

// Config holds common configuration for detectors.
type Config struct {
	// NumTrees is the ensemble size.
	NumTrees int `mapstructure:"trees"`
	// SubsampleSize is the number of samples drawn per tree, clamped to the
	// training set size.
	SubsampleSize int `mapstructure:"subsample"`
	// MaxDepth bounds the depth of every tree.
	MaxDepth int `mapstructure:"max-depth"`
	// Threshold is the score at or above which a sample is an anomaly.
	Threshold float64 `mapstructure:"threshold"`
	// Contamination, when positive, replaces Threshold with the matching
	// quantile of the training scores.
	Contamination float64 `mapstructure:"contamination"`
	// Dimensions is the expected feature width.
	Dimensions int `mapstructure:"dimensions"`
	// Seed fixes the random stream. Zero seeds from the clock, so 0 itself
	// cannot be used as a fixed seed.
	Seed int64 `mapstructure:"seed"`
	// Workers is the number of goroutines used for training and batch scoring.
	Workers int `mapstructure:"workers"`
}

// DefaultConfig returns the defaults of the syscall intrusion detector.
func DefaultConfig() Config {
	return Config{
		NumTrees:      10,
		SubsampleSize: 8,
		MaxDepth:      10,
		Threshold:     0.6,
		Dimensions:    features.NumSyscalls,
		Workers:       1,
	}
}

// Validate checks every field and returns the first violation.
func (c Config) Validate() error {
	switch {
	case c.NumTrees < 1:
		return errors.InvalidConfiguration("trees", c.NumTrees, "must be at least 1")
	case c.SubsampleSize < 1:
		return errors.InvalidConfiguration("subsample", c.SubsampleSize, "must be at least 1")
	case c.MaxDepth < 0:
		return errors.InvalidInput("config", "max depth must not be negative, got %d", c.MaxDepth)
	case c.Dimensions < 1:
		return errors.InvalidInput("config", "dimensionality must be positive, got %d", c.Dimensions)
	case c.Threshold < 0 || c.Threshold > 1:
		return errors.InvalidConfiguration("threshold", c.Threshold, "must be within [0, 1]")
	case c.Contamination < 0 || c.Contamination >= 0.5:
		return errors.InvalidConfiguration("contamination", c.Contamination, "must be within [0, 0.5)")
	case c.Workers < 1:
		return errors.InvalidConfiguration("workers", c.Workers, "must be at least 1")
	}
	return nil
}
