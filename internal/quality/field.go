package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// Per-field composite weights. They sum to exactly 1.0.
const (
	fieldWeightConfidence   = 0.30
	fieldWeightAccuracy     = 0.25
	fieldWeightCompleteness = 0.20
	fieldWeightConsistency  = 0.15
	fieldWeightAnomaly      = 0.10
)

// AnalyzeFieldQuality produces one FieldAnalysis per extracted field, in
// stable field-name order.
func AnalyzeFieldQuality(data map[string]string, meta Metadata, tmpl *template.Template) []FieldAnalysis {
	if len(data) == 0 {
		return nil
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	confMean, confStd := confidenceMoments(names, meta)

	analyses := make([]FieldAnalysis, 0, len(names))
	for _, name := range names {
		analyses = append(analyses, analyzeField(name, data[name], meta, tmpl, confMean, confStd))
	}
	return analyses
}

func analyzeField(name, value string, meta Metadata, tmpl *template.Template, confMean, confStd float64) FieldAnalysis {
	fa := FieldAnalysis{FieldName: name, Value: value}

	conf := 0.5 // neutral when no OCR record exists
	if ocr, ok := meta.OCRResults[name]; ok {
		conf = clamp01(ocr.Confidence / 100)
	}
	fa.OCRConfidence = conf

	nonEmpty := strings.TrimSpace(value) != ""
	if nonEmpty {
		fa.CompletenessScore = 1
	} else {
		fa.Issues = append(fa.Issues, "field value is empty")
	}

	accuracy := fieldAccuracyHeuristic(name, value)
	if re := tmpl.Pattern(name); re != nil && nonEmpty {
		fa.PatternMatch = re.MatchString(strings.TrimSpace(value))
		if fa.PatternMatch {
			accuracy = math.Max(accuracy, 0.9)
		} else {
			accuracy *= 0.5
			fa.Issues = append(fa.Issues, "value does not match the expected format")
			fa.Suggestions = append(fa.Suggestions, fmt.Sprintf("Re-check %s against the source document", name))
		}
	}
	fa.AccuracyScore = accuracy

	consistency := textQuality(value)
	fa.ConsistencyScore = consistency

	fa.AnomalyScore = anomalyScore(conf, confMean, confStd)
	if fa.AnomalyScore > 0.7 {
		fa.Issues = append(fa.Issues, "OCR confidence is an outlier relative to other fields")
	}
	if conf < 0.5 {
		fa.Suggestions = append(fa.Suggestions, fmt.Sprintf("Low OCR confidence for %s; consider re-scanning this region", name))
	}

	composite := fieldWeightConfidence*conf +
		fieldWeightAccuracy*accuracy +
		fieldWeightCompleteness*fa.CompletenessScore +
		fieldWeightConsistency*consistency +
		fieldWeightAnomaly*(1-fa.AnomalyScore)
	fa.QualityGrade = GradeForScore(clamp01(composite))
	return fa
}

func confidenceMoments(names []string, meta Metadata) (float64, float64) {
	var confs []float64
	for _, name := range names {
		if ocr, ok := meta.OCRResults[name]; ok {
			confs = append(confs, clamp01(ocr.Confidence/100))
		}
	}
	if len(confs) == 0 {
		return 0.5, 0
	}
	return mean(confs), stdDev(confs)
}

// anomalyScore maps the z-score of a field confidence to 0-1; fields more
// than three standard deviations out score 1.
func anomalyScore(conf, confMean, confStd float64) float64 {
	if confStd < 1e-9 {
		return 0
	}
	z := math.Abs(conf-confMean) / confStd
	return clamp01(z / 3)
}
