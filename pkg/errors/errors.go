// Package errors defines the error taxonomy shared by detectors, readers and the CLI.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidInput marks malformed data: empty training sets, wrong dimensionality,
	// negative depth bounds.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration marks parameters outside their accepted range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotTrained is returned when scoring is attempted before Fit.
	ErrNotTrained = errors.New("model not trained")
)

// InvalidInput returns an error for op marked with ErrInvalidInput.
func InvalidInput(op, format string, args ...any) error {
	err := errors.Newf("%s: %s", op, fmt.Sprintf(format, args...))
	return errors.Mark(err, ErrInvalidInput)
}

// ConfigError describes a configuration parameter that failed validation.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (got %v): %s", e.Param, e.Value, e.Reason)
}

// MarshalZerologObject adds the structured fields to a log event.
func (e *ConfigError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Interface("value", e.Value).
		Str("reason", e.Reason)
}

// InvalidConfiguration returns a ConfigError marked with ErrInvalidConfiguration.
func InvalidConfiguration(param string, value any, reason string) error {
	err := errors.WithStack(&ConfigError{Param: param, Value: value, Reason: reason})
	return errors.Mark(err, ErrInvalidConfiguration)
}

// DimensionError is returned when a feature vector does not have the width the model
// was trained with.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch, expected %d features, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured fields to a log event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("op", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got)
}

// NewDimensionError returns a DimensionError marked with ErrInvalidInput.
func NewDimensionError(op string, expected, got int) error {
	err := errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got})
	return errors.Mark(err, ErrInvalidInput)
}

// NotTrained returns ErrNotTrained annotated with the calling operation.
func NotTrained(op string) error {
	return errors.Wrap(ErrNotTrained, op)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message. It returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return errors.Newf(format, args...)
}
