// Package csv reads labelled frequency tables and writes detection results as CSV.
//
// Input rows are "name[,label],f0,...,fD-1". The label column is recognised by a
// header named "label" in the second position, or forced with WithLabels.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

const labelColumn = "label"

// Reader reads feature vectors from CSV files.
type Reader struct {
	closer    io.Closer
	reader    *csv.Reader
	hasHeader bool
	hasLabel  *bool
	headers   []string
	skipped   atomic.Int64
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// WithLabels states whether the second column is a ground-truth label,
// overriding header detection.
func WithLabels(has bool) Option {
	return func(r *Reader) {
		r.hasLabel = &has
	}
}

// NewReader opens filename for reading.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}

	r, err := NewReaderFrom(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file

	return r, nil
}

// NewReaderFrom reads CSV data from src.
func NewReaderFrom(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		reader:    csv.NewReader(src),
		hasHeader: true,
	}
	r.reader.FieldsPerRecord = -1
	r.reader.TrimLeadingSpace = true

	for _, opt := range opts {
		opt(r)
	}

	// Read header if present
	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			return nil, errors.Wrap(err, "read csv header")
		}
		r.headers = headers
	}

	if r.hasLabel == nil {
		detected := len(r.headers) > 1 && strings.EqualFold(strings.TrimSpace(r.headers[1]), labelColumn)
		r.hasLabel = &detected
	}

	return r, nil
}

// Headers returns the column headers.
func (r *Reader) Headers() []string {
	return r.headers
}

// FeatureNames returns the headers of the feature columns, or nil without a header.
func (r *Reader) FeatureNames() []string {
	if len(r.headers) == 0 {
		return nil
	}
	return r.headers[r.firstFeature():]
}

// Skipped returns the number of malformed rows dropped so far. While Stream is
// running the count is still growing; it is final once the channel is drained.
func (r *Reader) Skipped() int {
	return int(r.skipped.Load())
}

// Read returns all well-formed rows.
func (r *Reader) Read() ([]features.Vector, error) {
	var data []features.Vector

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv")
		}

		v, err := r.parseRow(record)
		if err != nil {
			r.skipped.Add(1)
			continue // Skip malformed rows
		}
		data = append(data, v)
	}

	return data, nil
}

// Stream returns a channel of vectors for real-time processing. The channel is
// closed at end of input, on a read error or when ctx is done.
func (r *Reader) Stream(ctx context.Context) (<-chan features.Vector, error) {
	out := make(chan features.Vector, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				record, err := r.reader.Read()
				if err != nil {
					// A malformed line can be skipped; any other failure ends the stream.
					var parseErr *csv.ParseError
					if errors.As(err, &parseErr) {
						r.skipped.Add(1)
						continue
					}
					return
				}

				v, err := r.parseRow(record)
				if err != nil {
					r.skipped.Add(1)
					continue
				}

				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Reader) firstFeature() int {
	if *r.hasLabel {
		return 2
	}
	return 1
}

// parseRow converts a record to a vector.
func (r *Reader) parseRow(record []string) (features.Vector, error) {
	first := r.firstFeature()
	if len(record) <= first {
		return features.Vector{}, errors.InvalidInput("parse row", "expected more than %d columns, got %d", first, len(record))
	}

	values := make([]int, len(record)-first)
	for i, field := range record[first:] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return features.Vector{}, errors.Wrapf(err, "column %d", first+i)
		}
		values[i] = n
	}

	name := strings.TrimSpace(record[0])
	if !*r.hasLabel {
		return features.New(name, values), nil
	}

	anomaly, err := parseLabel(record[1])
	if err != nil {
		return features.Vector{}, err
	}
	return features.NewLabeled(name, values, anomaly), nil
}

func parseLabel(field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "1", "true", "anomaly", "attack":
		return true, nil
	case "0", "false", "normal", "":
		return false, nil
	default:
		return false, errors.InvalidInput("parse label", "unknown label %q", field)
	}
}
