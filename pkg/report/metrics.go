// Package report evaluates detection results against ground truth and renders them.
package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/hed1ad/syscallguard/pkg/detectors"
)

// ConfusionMatrix counts verdicts against ground truth. Anomaly is the positive class.
type ConfusionMatrix struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// Total returns the number of labelled results counted.
func (m ConfusionMatrix) Total() int {
	return m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
}

// Accuracy returns the fraction of correct verdicts, or 0 for an empty matrix.
func (m ConfusionMatrix) Accuracy() float64 {
	if m.Total() == 0 {
		return 0
	}
	return float64(m.TruePositives+m.TrueNegatives) / float64(m.Total())
}

// Precision returns TP/(TP+FP). ok is false when nothing was flagged.
func (m ConfusionMatrix) Precision() (precision float64, ok bool) {
	flagged := m.TruePositives + m.FalsePositives
	if flagged == 0 {
		return 0, false
	}
	return float64(m.TruePositives) / float64(flagged), true
}

// Recall returns TP/(TP+FN). ok is false when there were no actual anomalies.
func (m ConfusionMatrix) Recall() (recall float64, ok bool) {
	actual := m.TruePositives + m.FalseNegatives
	if actual == 0 {
		return 0, false
	}
	return float64(m.TruePositives) / float64(actual), true
}

// Summary aggregates a batch of scores.
type Summary struct {
	Matrix ConfusionMatrix
	// Unlabeled counts results without ground truth; they are not in Matrix.
	Unlabeled int
	// Flagged counts Anomaly verdicts, labelled or not.
	Flagged int

	MeanScore          float64
	MeanAnomalousScore float64
	MeanNormalScore    float64
}

// Evaluate builds a Summary from scores.
func Evaluate(scores []detectors.Score) Summary {
	var (
		s                      Summary
		all, anomalous, benign []float64
	)

	for _, sc := range scores {
		all = append(all, sc.Value)
		if sc.IsAnomaly() {
			s.Flagged++
		}

		if sc.GroundTruth == nil {
			s.Unlabeled++
			continue
		}

		actual := *sc.GroundTruth
		if actual {
			anomalous = append(anomalous, sc.Value)
		} else {
			benign = append(benign, sc.Value)
		}

		switch {
		case sc.IsAnomaly() && actual:
			s.Matrix.TruePositives++
		case !sc.IsAnomaly() && !actual:
			s.Matrix.TrueNegatives++
		case sc.IsAnomaly() && !actual:
			s.Matrix.FalsePositives++
		default:
			s.Matrix.FalseNegatives++
		}
	}

	s.MeanScore = mean(all)
	s.MeanAnomalousScore = mean(anomalous)
	s.MeanNormalScore = mean(benign)

	return s
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}
