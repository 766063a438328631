package quality

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// assessOCRQuality scores the OCR layer: per-field confidence statistics
// blended with a text-quality heuristic, penalizing inconsistent extraction
// (high confidence variance) and very weak minimums.
func assessOCRQuality(data map[string]string, meta Metadata) Metric {
	m := Metric{Name: MetricOCRQuality, Details: map[string]any{}}

	var confidences []float64
	var textScores []float64
	for field, value := range data {
		if ocr, ok := meta.OCRResults[field]; ok {
			confidences = append(confidences, clamp01(ocr.Confidence/100))
		}
		textScores = append(textScores, textQuality(value))
	}
	if len(confidences) == 0 && len(textScores) == 0 {
		m.Confidence = 0.2
		m.Recommendations = append(m.Recommendations, "No OCR data available; re-run extraction")
		return m
	}

	confMean := mean(confidences)
	confMin := minFloat(confidences)
	confStd := stdDev(confidences)
	textMean := mean(textScores)

	score := 0.0
	switch {
	case len(confidences) > 0:
		score = 0.6*confMean + 0.4*textMean
	default:
		score = textMean
	}
	if confStd > 0.25 {
		score *= 0.9
		m.Recommendations = append(m.Recommendations, "OCR confidence varies widely across fields; review low-confidence fields")
	}
	if len(confidences) > 0 && confMin < 0.3 {
		score *= 0.9
		m.Recommendations = append(m.Recommendations, "At least one field has very low OCR confidence; rescan or re-crop it")
	}

	m.Score = clamp01(score)
	m.Confidence = 0.9
	m.Details["mean_confidence"] = confMean
	m.Details["min_confidence"] = confMin
	m.Details["std_confidence"] = confStd
	m.Details["mean_text_quality"] = textMean
	return m
}

// textQuality rates a single extracted string: length, character diversity,
// word-length sanity and special-character noise.
func textQuality(value string) float64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	score := 1.0

	if len(value) < 2 {
		score *= 0.6
	}
	if len(value) > 200 {
		score *= 0.8
	}

	distinct := map[rune]bool{}
	special := 0
	for _, r := range value {
		distinct[r] = true
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) &&
			!strings.ContainsRune("$.,%-/#&'()", r) {
			special++
		}
	}
	if len(distinct) < 3 && len(value) > 4 {
		score *= 0.7
	}
	if noise := float64(special) / float64(len(value)); noise > 0.2 {
		score *= 1 - noise
	}

	words := strings.Fields(value)
	for _, w := range words {
		if len(w) > 25 {
			score *= 0.85
			break
		}
	}
	return clamp01(score)
}

// assessCompleteness scores field coverage against the document template:
// 0.4 for required fields present, 0.4 for required fields non-empty, 0.2
// for optional fields present.
func assessCompleteness(data map[string]string, tmpl *template.Template) Metric {
	m := Metric{Name: MetricCompleteness, Details: map[string]any{}}

	if tmpl.Empty() {
		// Unknown document type: fall back to non-empty ratio.
		if len(data) == 0 {
			m.Confidence = 0.3
			m.Recommendations = append(m.Recommendations, "No fields were extracted; manual review required")
			return m
		}
		nonEmpty := 0
		for _, v := range data {
			if strings.TrimSpace(v) != "" {
				nonEmpty++
			}
		}
		m.Score = clamp01(float64(nonEmpty) / float64(len(data)))
		m.Confidence = 0.5
		m.Details["non_empty_ratio"] = m.Score
		return m
	}

	var missing, empty []string
	present := 0
	nonEmpty := 0
	for _, field := range tmpl.RequiredFields {
		value, ok := data[field]
		if !ok {
			missing = append(missing, field)
			continue
		}
		present++
		if strings.TrimSpace(value) == "" {
			empty = append(empty, field)
		} else {
			nonEmpty++
		}
	}
	optionalPresent := 0
	for _, field := range tmpl.OptionalFields {
		if v, ok := data[field]; ok && strings.TrimSpace(v) != "" {
			optionalPresent++
		}
	}

	required := float64(len(tmpl.RequiredFields))
	optional := float64(len(tmpl.OptionalFields))
	score := 0.0
	if required > 0 {
		score += 0.4*(float64(present)/required) + 0.4*(float64(nonEmpty)/required)
	} else {
		score += 0.8
	}
	if optional > 0 {
		score += 0.2 * (float64(optionalPresent) / optional)
	} else {
		score += 0.2
	}

	if len(missing) > 0 {
		m.Recommendations = append(m.Recommendations,
			fmt.Sprintf("Critical: missing required fields for %s: %s", tmpl.DocumentType, strings.Join(missing, ", ")))
	}
	if len(empty) > 0 {
		m.Recommendations = append(m.Recommendations,
			fmt.Sprintf("Required fields extracted empty: %s", strings.Join(empty, ", ")))
	}

	m.Score = clamp01(score)
	m.Confidence = 0.95
	m.Details["missing_required"] = missing
	m.Details["empty_required"] = empty
	m.Details["optional_present"] = optionalPresent
	return m
}

// assessConsistency runs four sub-checks (pattern match rate, cross-field
// sanity, formatting consistency, type consistency) and averages the ones
// that produced a score.
func assessConsistency(data map[string]string, tmpl *template.Template) Metric {
	m := Metric{Name: MetricConsistency, Details: map[string]any{}}

	var scores []float64
	if s, ok := patternMatchRate(data, tmpl); ok {
		scores = append(scores, s)
		m.Details["pattern_match_rate"] = s
	}
	if s, ok := crossFieldSanity(data); ok {
		scores = append(scores, s)
		m.Details["cross_field_sanity"] = s
		if s < 1 {
			m.Recommendations = append(m.Recommendations, "Rent to square-footage ratio looks implausible; verify rent_amount and sqft")
		}
	}
	if s, ok := formattingConsistency(data); ok {
		scores = append(scores, s)
		m.Details["formatting_consistency"] = s
	}
	if s, ok := typeConsistency(data); ok {
		scores = append(scores, s)
		m.Details["type_consistency"] = s
	}

	if len(scores) == 0 {
		m.Confidence = 0.3
		return m
	}
	m.Score = clamp01(mean(scores))
	m.Confidence = 0.8
	return m
}

func patternMatchRate(data map[string]string, tmpl *template.Template) (float64, bool) {
	checked, matched := 0, 0
	for field, value := range data {
		re := tmpl.Pattern(field)
		if re == nil || strings.TrimSpace(value) == "" {
			continue
		}
		checked++
		if re.MatchString(strings.TrimSpace(value)) {
			matched++
		}
	}
	if checked == 0 {
		return 0, false
	}
	return float64(matched) / float64(checked), true
}

// crossFieldSanity checks rent against square footage: an annualized
// price-per-square-foot outside [0.5, 100] reads as an extraction error.
func crossFieldSanity(data map[string]string) (float64, bool) {
	rent, okRent := parseAmount(firstValue(data, "rent_amount", "monthly_rent"))
	sqft, okSqft := parseAmount(data["sqft"])
	if !okRent || !okSqft || sqft <= 0 {
		return 0, false
	}
	ratio := rent / sqft
	if ratio >= 0.5 && ratio <= 100 {
		return 1, true
	}
	return 0, true
}

// formattingConsistency checks that same-kind fields share one format, e.g.
// all dates use the same separator and all amounts agree on a dollar sign.
func formattingConsistency(data map[string]string) (float64, bool) {
	dateSeps := map[string]bool{}
	dollarStyles := map[bool]bool{}
	checked := 0
	for field, value := range data {
		v := strings.TrimSpace(value)
		if v == "" {
			continue
		}
		if strings.Contains(field, "date") || strings.HasPrefix(field, "lease_") {
			if strings.Contains(v, "/") {
				dateSeps["/"] = true
				checked++
			} else if strings.Contains(v, "-") {
				dateSeps["-"] = true
				checked++
			}
		}
		if strings.Contains(field, "rent") || strings.Contains(field, "price") || strings.Contains(field, "deposit") {
			dollarStyles[strings.HasPrefix(v, "$")] = true
			checked++
		}
	}
	if checked < 2 {
		return 0, false
	}
	score := 1.0
	if len(dateSeps) > 1 {
		score -= 0.5
	}
	if len(dollarStyles) > 1 {
		score -= 0.5
	}
	return clamp01(score), true
}

// typeConsistency verifies amount-like fields parse as numbers.
func typeConsistency(data map[string]string) (float64, bool) {
	checked, ok := 0, 0
	for field, value := range data {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if !isAmountField(field) {
			continue
		}
		checked++
		if _, parsed := parseAmount(value); parsed {
			ok++
		}
	}
	if checked == 0 {
		return 0, false
	}
	return float64(ok) / float64(checked), true
}

// assessAccuracy blends the template pattern-match rate (60%) with a
// per-field heuristic check (40%).
func assessAccuracy(data map[string]string, tmpl *template.Template) Metric {
	m := Metric{Name: MetricAccuracy, Details: map[string]any{}}
	if len(data) == 0 {
		m.Confidence = 0.3
		return m
	}

	patternScore, hasPatterns := patternMatchRate(data, tmpl)

	var heuristics []float64
	for field, value := range data {
		heuristics = append(heuristics, fieldAccuracyHeuristic(field, value))
	}
	heuristicScore := mean(heuristics)

	if hasPatterns {
		m.Score = clamp01(0.6*patternScore + 0.4*heuristicScore)
		m.Details["pattern_match_rate"] = patternScore
	} else {
		m.Score = clamp01(heuristicScore)
	}
	m.Details["heuristic_score"] = heuristicScore
	m.Confidence = 0.75
	if m.Score < 0.6 {
		m.Recommendations = append(m.Recommendations, "Several field values do not match their expected formats; verify against the source document")
	}
	return m
}

var (
	rentValuePattern = regexp.MustCompile(`^\$?[\d,]+(?:\.\d{2})?$`)
	unitValuePattern = regexp.MustCompile(`^[A-Za-z]?\d{1,4}[A-Za-z]?$`)
	sqftValuePattern = regexp.MustCompile(`^[\d,]+$`)
	nameValuePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z\s.,'&-]*$`)
)

// fieldAccuracyHeuristic applies field-name-specific shape checks, falling
// back to generic length sanity.
func fieldAccuracyHeuristic(field, value string) float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0
	}
	switch {
	case strings.Contains(field, "rent") || strings.Contains(field, "price") || strings.Contains(field, "deposit"):
		if rentValuePattern.MatchString(v) {
			if amt, ok := parseAmount(v); ok && amt >= 100 && amt <= 10_000_000 {
				return 1
			}
			return 0.7
		}
		return 0.2
	case strings.Contains(field, "unit"):
		if unitValuePattern.MatchString(v) {
			return 1
		}
		return 0.3
	case field == "sqft":
		if sqftValuePattern.MatchString(v) {
			return 1
		}
		return 0.3
	case strings.Contains(field, "name"):
		if nameValuePattern.MatchString(v) {
			return 1
		}
		return 0.4
	default:
		if len(v) >= 1 && len(v) <= 100 {
			return 0.8
		}
		return 0.4
	}
}

// assessReliability blends extraction volume, processing-error count, OCR
// confidence spread and region success rate over whichever factors have
// data.
func assessReliability(data map[string]string, meta Metadata, tmpl *template.Template) Metric {
	m := Metric{Name: MetricReliability, Details: map[string]any{}}

	var factors []float64

	expected := len(tmpl.Fields)
	if expected == 0 {
		expected = 8
	}
	volume := clamp01(float64(len(data)) / float64(expected))
	factors = append(factors, volume)
	m.Details["volume_score"] = volume

	errScore := 1.0 / (1.0 + float64(len(meta.Errors)))
	factors = append(factors, errScore)
	m.Details["error_score"] = errScore
	if len(meta.Errors) > 0 {
		m.Recommendations = append(m.Recommendations,
			fmt.Sprintf("%d processing errors occurred; inspect the processing log", len(meta.Errors)))
	}

	if len(meta.OCRResults) > 1 {
		var confs []float64
		for _, r := range meta.OCRResults {
			confs = append(confs, clamp01(r.Confidence/100))
		}
		consistency := clamp01(1 - stdDev(confs))
		factors = append(factors, consistency)
		m.Details["confidence_consistency"] = consistency
	}

	if meta.RegionsProcessed > 0 {
		successRate := clamp01(float64(len(data)) / float64(meta.RegionsProcessed))
		factors = append(factors, successRate)
		m.Details["region_success_rate"] = successRate
	}

	m.Score = clamp01(mean(factors))
	m.Confidence = 0.7
	return m
}

func firstValue(data map[string]string, fields ...string) string {
	for _, f := range fields {
		if v, ok := data[f]; ok {
			return v
		}
	}
	return ""
}

func isAmountField(field string) bool {
	for _, marker := range []string{"rent", "price", "deposit", "sqft", "noi", "amount"} {
		if strings.Contains(field, marker) {
			return true
		}
	}
	return false
}

// parseAmount parses a currency-ish string into a float, tolerating dollar
// signs and thousands separators.
func parseAmount(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
