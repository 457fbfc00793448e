package csv

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/errors"
)

var resultHeader = []string{"id", "score", "verdict", "ground_truth"}

// Writer writes detection results as "id,score,verdict,ground_truth" rows.
type Writer struct {
	closer      io.Closer
	writer      *csv.Writer
	wroteHeader bool
}

// NewWriter creates filename and writes results to it.
func NewWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", filename)
	}

	w := NewWriterTo(file)
	w.closer = file
	return w, nil
}

// NewWriterTo writes results to dst.
func NewWriterTo(dst io.Writer) *Writer {
	return &Writer{writer: csv.NewWriter(dst)}
}

// Write outputs a single result.
func (w *Writer) Write(result detectors.Score) error {
	if !w.wroteHeader {
		if err := w.writer.Write(resultHeader); err != nil {
			return errors.Wrap(err, "write csv header")
		}
		w.wroteHeader = true
	}

	truth := ""
	if result.GroundTruth != nil {
		truth = strconv.FormatBool(*result.GroundTruth)
	}

	record := []string{
		result.ID,
		strconv.FormatFloat(result.Value, 'f', 6, 64),
		result.Verdict.String(),
		truth,
	}
	return errors.Wrap(w.writer.Write(record), "write csv row")
}

// WriteAll outputs multiple results and flushes.
func (w *Writer) WriteAll(results []detectors.Score) error {
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes buffered rows and releases resources.
func (w *Writer) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
