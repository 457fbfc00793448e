package detectors

// Verdict is the binary classification derived from a score.
type Verdict int

const (
	Normal Verdict = iota
	Anomaly
)

func (v Verdict) String() string {
	switch v {
	case Normal:
		return "NORMAL"
	case Anomaly:
		return "ANOMALY"
	default:
		return "UNKNOWN"
	}
}

// Classify returns Anomaly iff score >= threshold.
func Classify(score, threshold float64) Verdict {
	if score >= threshold {
		return Anomaly
	}
	return Normal
}
