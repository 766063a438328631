package quality

import (
	"fmt"
	"log/slog"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// Scorer computes quality reports. The zero value is not usable; call
// NewScorer.
type Scorer struct {
	logger *slog.Logger
}

func NewScorer(logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{logger: logger}
}

type assessor struct {
	name string
	run  func() Metric
}

// CalculateQualityScore assesses extracted field data against the template
// for the given document type and returns a full report. It never returns
// an error: every assessor is failure-isolated, and if all of them fail the
// report degrades to a minimal poor-grade result flagged for manual review.
func (s *Scorer) CalculateQualityScore(data map[string]string, documentType string, meta Metadata) *Report {
	if meta.DocumentType == "" {
		meta.DocumentType = documentType
	}
	tmpl := template.Lookup(documentType)

	assessors := []assessor{
		{MetricOCRQuality, func() Metric { return assessOCRQuality(data, meta) }},
		{MetricCompleteness, func() Metric { return assessCompleteness(data, tmpl) }},
		{MetricConsistency, func() Metric { return assessConsistency(data, tmpl) }},
		{MetricAccuracy, func() Metric { return assessAccuracy(data, tmpl) }},
		{MetricReliability, func() Metric { return assessReliability(data, meta, tmpl) }},
	}

	metrics := make([]Metric, 0, len(assessors))
	failed := 0
	for _, a := range assessors {
		m, err := s.runAssessor(a)
		if err != nil {
			failed++
			s.logger.Error("quality assessor failed", "metric", a.name, "error", err)
		}
		metrics = append(metrics, m)
	}
	if failed == len(assessors) {
		return s.minimalReport(documentType, len(data))
	}

	analyses := AnalyzeFieldQuality(data, meta, tmpl)

	overall := clamp01(WeightedOverall(metrics))
	report := &Report{
		OverallScore:           overall,
		QualityGrade:           GradeForScore(overall),
		ConfidenceDistribution: confidenceDistribution(fieldConfidences(data, meta)),
		FieldAnalyses:          analyses,
		QualityMetrics:         metrics,
		Recommendations:        buildRecommendations(overall, metrics, analyses),
		StatisticalSummary:     metricSummary(metrics),
		ProcessingMetadata:     newProcessingMetadata(documentType, len(data)),
	}

	s.logger.Info("quality score calculated",
		"document_type", documentType,
		"fields", len(data),
		"overall_score", report.OverallScore,
		"grade", report.QualityGrade)
	return report
}

// runAssessor isolates a single assessor: a panic becomes a zero metric with
// the failure recorded in its details.
func (s *Scorer) runAssessor(a assessor) (m Metric, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assessor %s panicked: %v", a.name, r)
			m = Metric{
				Name:       a.name,
				Score:      0,
				Confidence: 0,
				Details:    map[string]any{"error": fmt.Sprint(r)},
			}
		}
	}()
	return a.run(), nil
}

// minimalReport is the total-failure fallback. Scoring must never abort a
// document run.
func (s *Scorer) minimalReport(documentType string, fieldCount int) *Report {
	s.logger.Error("all quality assessors failed, returning minimal report",
		"document_type", documentType)
	return &Report{
		OverallScore:       0,
		QualityGrade:       GradePoor,
		Recommendations:    []string{"Quality assessment failed; manual review required"},
		ProcessingMetadata: newProcessingMetadata(documentType, fieldCount),
	}
}

func fieldConfidences(data map[string]string, meta Metadata) []float64 {
	confs := make([]float64, 0, len(data))
	for field := range data {
		if ocr, ok := meta.OCRResults[field]; ok {
			confs = append(confs, clamp01(ocr.Confidence/100))
		}
	}
	return confs
}

func metricSummary(metrics []Metric) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		out[m.Name] = m.Score
	}
	return out
}
