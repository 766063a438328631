package quality

import (
	"math"
	"sort"
)

// confidenceDistribution summarizes field confidences (0-1 scale).
func confidenceDistribution(confidences []float64) ConfidenceDistribution {
	if len(confidences) == 0 {
		return ConfidenceDistribution{Grade: GradePoor}
	}
	sorted := make([]float64, len(confidences))
	copy(sorted, confidences)
	sort.Float64s(sorted)

	dist := ConfidenceDistribution{
		Mean:   mean(sorted),
		Median: percentile(sorted, 0.5),
		StdDev: stdDev(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     percentile(sorted, 0.25),
		Q3:     percentile(sorted, 0.75),
	}
	dist.Grade = GradeForScore(dist.Mean)

	bands := map[string]float64{"high": 0, "medium": 0, "low": 0}
	for _, c := range sorted {
		switch {
		case c >= 0.8:
			bands["high"]++
		case c >= 0.5:
			bands["medium"]++
		default:
			bands["low"]++
		}
	}
	n := float64(len(sorted))
	for k := range bands {
		bands[k] /= n
	}
	dist.BandRatios = bands
	return dist
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// percentile computes the p-th percentile of a sorted slice via linear
// interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func minFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out
}
