package quality

import "fmt"

// buildRecommendations collects the assessor-level suggestions, adds
// score-band advice and deduplicates while preserving first-seen order.
// Critical items (missing required fields) sort to the front.
func buildRecommendations(overall float64, metrics []Metric, analyses []FieldAnalysis) []string {
	var critical, regular []string
	add := func(r string) {
		if len(r) >= 9 && r[:9] == "Critical:" {
			critical = append(critical, r)
		} else {
			regular = append(regular, r)
		}
	}

	for _, m := range metrics {
		for _, r := range m.Recommendations {
			add(r)
		}
	}

	lowFields := 0
	for _, fa := range analyses {
		if fa.QualityGrade == GradePoor {
			lowFields++
		}
	}
	if lowFields > 0 {
		add(fmt.Sprintf("%d fields graded poor; review their field analyses", lowFields))
	}

	switch {
	case overall < thresholdFair:
		add("Overall quality is below acceptable thresholds; manual review of the full document is recommended")
	case overall < thresholdGood:
		add("Overall quality is fair; spot-check low-confidence fields before export")
	case overall >= thresholdExcellent:
		add("Extraction quality is excellent; no action required")
	}

	return dedupeStrings(append(critical, regular...))
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
