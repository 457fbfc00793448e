// Package detectors provides unsupervised anomaly detection over feature vectors.
package detectors

import (
	"context"

	"github.com/hed1ad/syscallguard/pkg/features"
)

// Detector is the common interface for all anomaly detection algorithms.
type Detector interface {
	// Fit trains the detector on historical data. Each vector must have the
	// configured dimensionality.
	Fit(data []features.Vector) error

	// Predict returns one Score per sample, in input order.
	Predict(data []features.Vector) ([]Score, error)

	// PredictOne scores a single sample.
	PredictOne(sample features.Vector) (Score, error)
}

// StreamDetector extends Detector with streaming capabilities.
type StreamDetector interface {
	Detector

	// PredictStream scores samples from input until it is closed or ctx is done.
	PredictStream(ctx context.Context, input <-chan features.Vector, output chan<- Score) error
}

// Score is the per-item result handed to reporting.
type Score struct {
	// ID is the identifier of the scored vector.
	ID string
	// Value is the anomaly score in [0, 1]; higher is more anomalous.
	Value float64
	// Verdict is Value compared against the detector threshold.
	Verdict Verdict
	// GroundTruth is the vector's evaluation label, nil when unlabelled.
	GroundTruth *bool
}

// IsAnomaly reports whether the verdict is Anomaly.
func (s Score) IsAnomaly() bool {
	return s.Verdict == Anomaly
}

// NewScore assembles a Score for v. The label is copied through for evaluation.
func NewScore(v features.Vector, value, threshold float64) Score {
	s := Score{
		ID:      v.ID(),
		Value:   value,
		Verdict: Classify(value, threshold),
	}
	if anomaly, ok := v.Label(); ok {
		s.GroundTruth = &anomaly
	}
	return s
}
