// Package features defines the fixed-width integer feature record scored by the detectors.
package features

import (
	"github.com/hed1ad/syscallguard/pkg/errors"
)

// Vector is an immutable frequency profile of one observed entity, typically a process.
// The ground-truth label is carried for evaluation only and is never read by detectors.
type Vector struct {
	id       string
	values   []int
	label    bool
	hasLabel bool
}

// New creates an unlabelled vector. values is copied.
func New(id string, values []int) Vector {
	v := Vector{id: id, values: make([]int, len(values))}
	copy(v.values, values)
	return v
}

// NewLabeled creates a vector with a ground-truth anomaly tag. values is copied.
func NewLabeled(id string, values []int, anomaly bool) Vector {
	v := New(id, values)
	v.label = anomaly
	v.hasLabel = true
	return v
}

// ID returns the opaque identifier.
func (v Vector) ID() string { return v.id }

// Len returns the number of feature dimensions.
func (v Vector) Len() int { return len(v.values) }

// At returns the value of dimension i.
func (v Vector) At(i int) int { return v.values[i] }

// Values returns a copy of the feature values.
func (v Vector) Values() []int {
	out := make([]int, len(v.values))
	copy(out, v.values)
	return out
}

// Total returns the sum of all feature values, e.g. the total number of system calls.
func (v Vector) Total() int {
	total := 0
	for _, x := range v.values {
		total += x
	}
	return total
}

// Label returns the ground-truth tag and whether one was set.
func (v Vector) Label() (anomaly bool, ok bool) {
	return v.label, v.hasLabel
}

// CheckDimensions returns an error marked ErrInvalidInput if the set is empty or any
// vector does not have exactly d dimensions.
func CheckDimensions(op string, data []Vector, d int) error {
	if d <= 0 {
		return errors.InvalidInput(op, "dimensionality must be positive, got %d", d)
	}
	if len(data) == 0 {
		return errors.InvalidInput(op, "empty data set")
	}
	for _, v := range data {
		if v.Len() != d {
			return errors.NewDimensionError(op, d, v.Len())
		}
	}
	return nil
}

// Width returns the dimensionality of the first vector, or 0 for an empty set.
func Width(data []Vector) int {
	if len(data) == 0 {
		return 0
	}
	return data[0].Len()
}
