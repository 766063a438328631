// Package quality scores extraction output: five weighted assessment
// metrics, per-field grading and rule-based improvement recommendations.
package quality

// Metric names.
const (
	MetricOCRQuality   = "ocr_quality"
	MetricCompleteness = "data_completeness"
	MetricConsistency  = "data_consistency"
	MetricAccuracy     = "content_accuracy"
	MetricReliability  = "extraction_reliability"
)

// Metric weights used in the overall score. They sum to exactly 1.0.
var metricWeights = map[string]float64{
	MetricOCRQuality:   0.25,
	MetricCompleteness: 0.25,
	MetricConsistency:  0.20,
	MetricAccuracy:     0.20,
	MetricReliability:  0.10,
}

// MetricWeights returns a copy of the weight table.
func MetricWeights() map[string]float64 {
	out := make(map[string]float64, len(metricWeights))
	for k, v := range metricWeights {
		out[k] = v
	}
	return out
}

// Metric is one weighted dimension of assessment.
type Metric struct {
	Name            string         `json:"name"`
	Score           float64        `json:"score"`      // 0-1
	Confidence      float64        `json:"confidence"` // confidence in the score itself, 0-1
	Details         map[string]any `json:"details,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// Grade bands for scores on a 0-1 scale.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeFair      = "fair"
	GradePoor      = "poor"

	thresholdExcellent = 0.90
	thresholdGood      = 0.75
	thresholdFair      = 0.60
)

// GradeForScore maps a 0-1 score onto the fixed grade thresholds.
func GradeForScore(score float64) string {
	switch {
	case score >= thresholdExcellent:
		return GradeExcellent
	case score >= thresholdGood:
		return GradeGood
	case score >= thresholdFair:
		return GradeFair
	default:
		return GradePoor
	}
}

// WeightedOverall combines metrics by their fixed weights. Metrics without
// a registered weight are ignored.
func WeightedOverall(metrics []Metric) float64 {
	var sum, weightTotal float64
	for _, m := range metrics {
		w, ok := metricWeights[m.Name]
		if !ok {
			continue
		}
		sum += m.Score * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return sum / weightTotal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
