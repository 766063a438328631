package ocr

// WeightedConfidence computes the extraction confidence on a 0-100 scale,
// weighting each word's confidence by its text length so long, confidently
// read words dominate stray single characters. Falls back to the unweighted
// mean of positive-confidence words, and 0 when there are none.
func WeightedConfidence(words []Word) float64 {
	var weightedSum, weightTotal float64
	var plainSum float64
	positive := 0
	for _, w := range words {
		if w.Confidence <= 0 {
			continue
		}
		positive++
		plainSum += w.Confidence
		weight := float64(len(w.Text))
		weightedSum += w.Confidence * weight
		weightTotal += weight
	}
	if positive == 0 {
		return 0
	}
	if weightTotal == 0 {
		return clampConfidence(plainSum / float64(positive))
	}
	return clampConfidence(weightedSum / weightTotal)
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
