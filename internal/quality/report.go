package quality

import (
	"time"

	"github.com/google/uuid"
)

// OCRFieldResult is the per-field OCR outcome handed in through metadata.
type OCRFieldResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Metadata carries optional processing context for scoring. Every key is
// optional; missing data degrades to neutral scores.
type Metadata struct {
	DocumentType     string                    `json:"document_type,omitempty"`
	OCRResults       map[string]OCRFieldResult `json:"ocr_results,omitempty"`
	Errors           []string                  `json:"errors,omitempty"`
	RegionsProcessed int                       `json:"regions_processed,omitempty"`
}

// FieldAnalysis is the per-field quality detail record. Immutable after
// creation.
type FieldAnalysis struct {
	FieldName         string   `json:"field_name"`
	Value             string   `json:"value"`
	OCRConfidence     float64  `json:"ocr_confidence"` // 0-1
	CompletenessScore float64  `json:"completeness_score"`
	ConsistencyScore  float64  `json:"consistency_score"`
	AccuracyScore     float64  `json:"accuracy_score"`
	PatternMatch      bool     `json:"pattern_match"`
	AnomalyScore      float64  `json:"anomaly_score"` // 0-1, higher is more anomalous
	QualityGrade      string   `json:"quality_grade"`
	Issues            []string `json:"issues,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
}

// ConfidenceDistribution is the statistical summary of field confidences.
type ConfidenceDistribution struct {
	Mean       float64            `json:"mean"`
	Median     float64            `json:"median"`
	StdDev     float64            `json:"std_dev"`
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Q1         float64            `json:"q1"`
	Q3         float64            `json:"q3"`
	Grade      string             `json:"grade"`
	BandRatios map[string]float64 `json:"band_ratios,omitempty"` // high/medium/low fractions
}

// ProcessingMetadata stamps one scoring run.
type ProcessingMetadata struct {
	ReportID     string    `json:"report_id"`
	Timestamp    time.Time `json:"timestamp"`
	DocumentType string    `json:"document_type"`
	FieldCount   int       `json:"field_count"`
}

// Report is the terminal artifact of a document-processing run.
type Report struct {
	OverallScore           float64                `json:"overall_score"` // 0-1
	QualityGrade           string                 `json:"quality_grade"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
	FieldAnalyses          []FieldAnalysis        `json:"field_analyses"`
	QualityMetrics         []Metric               `json:"quality_metrics"`
	Recommendations        []string               `json:"recommendations"`
	StatisticalSummary     map[string]float64     `json:"statistical_summary,omitempty"`
	ProcessingMetadata     ProcessingMetadata     `json:"processing_metadata"`
}

func newProcessingMetadata(documentType string, fieldCount int) ProcessingMetadata {
	return ProcessingMetadata{
		ReportID:     uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		DocumentType: documentType,
		FieldCount:   fieldCount,
	}
}

// ReportMap flattens a report into plain maps and slices for downstream
// export and rendering. This is the serialization boundary of the package.
func ReportMap(r *Report) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	metrics := make([]map[string]any, 0, len(r.QualityMetrics))
	for _, m := range r.QualityMetrics {
		metrics = append(metrics, map[string]any{
			"name":            m.Name,
			"score":           m.Score,
			"confidence":      m.Confidence,
			"details":         m.Details,
			"recommendations": m.Recommendations,
		})
	}
	fields := make([]map[string]any, 0, len(r.FieldAnalyses))
	for _, f := range r.FieldAnalyses {
		fields = append(fields, map[string]any{
			"field_name":     f.FieldName,
			"value":          f.Value,
			"ocr_confidence": f.OCRConfidence,
			"quality_grade":  f.QualityGrade,
			"pattern_match":  f.PatternMatch,
			"anomaly_score":  f.AnomalyScore,
			"issues":         f.Issues,
			"suggestions":    f.Suggestions,
		})
	}
	return map[string]any{
		"overall_score":   r.OverallScore,
		"quality_grade":   r.QualityGrade,
		"quality_metrics": metrics,
		"field_analyses":  fields,
		"confidence_distribution": map[string]any{
			"mean":        r.ConfidenceDistribution.Mean,
			"median":      r.ConfidenceDistribution.Median,
			"std_dev":     r.ConfidenceDistribution.StdDev,
			"min":         r.ConfidenceDistribution.Min,
			"max":         r.ConfidenceDistribution.Max,
			"q1":          r.ConfidenceDistribution.Q1,
			"q3":          r.ConfidenceDistribution.Q3,
			"grade":       r.ConfidenceDistribution.Grade,
			"band_ratios": r.ConfidenceDistribution.BandRatios,
		},
		"recommendations":     r.Recommendations,
		"statistical_summary": r.StatisticalSummary,
		"processing_metadata": map[string]any{
			"report_id":     r.ProcessingMetadata.ReportID,
			"timestamp":     r.ProcessingMetadata.Timestamp,
			"document_type": r.ProcessingMetadata.DocumentType,
			"field_count":   r.ProcessingMetadata.FieldCount,
		},
	}
}
