// Package io provides input/output utilities for data ingestion.
package io

import (
	"context"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

// Reader is the interface for reading feature vectors from various sources.
type Reader interface {
	// Read returns the complete dataset.
	Read() ([]features.Vector, error)

	// Stream returns a channel of vectors for real-time processing.
	Stream(ctx context.Context) (<-chan features.Vector, error)

	// FeatureNames returns the names of the feature dimensions.
	FeatureNames() []string

	// Close releases resources.
	Close() error
}

// Writer is the interface for writing detection results.
type Writer interface {
	// Write outputs a single result.
	Write(result detectors.Score) error

	// WriteAll outputs multiple results.
	WriteAll(results []detectors.Score) error

	// Close flushes and releases resources.
	Close() error
}
