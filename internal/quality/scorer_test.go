package quality

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateQualityScoreRentRoll(t *testing.T) {
	s := NewScorer(slog.Default())
	report := s.CalculateQualityScore(rentRollData(), "rent_roll", rentRollMeta())
	require.NotNil(t, report)

	assert.Greater(t, report.OverallScore, 0.75)
	assert.LessOrEqual(t, report.OverallScore, 1.0)
	assert.Contains(t, []string{GradeGood, GradeExcellent}, report.QualityGrade)

	require.Len(t, report.QualityMetrics, 5)
	wantOrder := []string{MetricOCRQuality, MetricCompleteness, MetricConsistency, MetricAccuracy, MetricReliability}
	for i, m := range report.QualityMetrics {
		assert.Equal(t, wantOrder[i], m.Name)
		assert.GreaterOrEqual(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
	}

	assert.Len(t, report.FieldAnalyses, 6)
	assert.NotEmpty(t, report.ProcessingMetadata.ReportID)
	assert.Equal(t, "rent_roll", report.ProcessingMetadata.DocumentType)
	assert.Equal(t, 6, report.ProcessingMetadata.FieldCount)
	assert.False(t, report.ProcessingMetadata.Timestamp.IsZero())
}

func TestCalculateQualityScoreEmptyData(t *testing.T) {
	s := NewScorer(nil)
	report := s.CalculateQualityScore(map[string]string{}, "rent_roll", Metadata{})
	require.NotNil(t, report)
	assert.Less(t, report.OverallScore, 0.6)
	assert.Equal(t, GradePoor, report.QualityGrade)
	assert.NotEmpty(t, report.Recommendations)
	assert.Empty(t, report.FieldAnalyses)
}

func TestCalculateQualityScoreUnknownDocumentType(t *testing.T) {
	s := NewScorer(nil)
	report := s.CalculateQualityScore(map[string]string{"field_a": "value"}, "never_registered", Metadata{})
	require.NotNil(t, report)
	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
	assert.LessOrEqual(t, report.OverallScore, 1.0)
	assert.NotEmpty(t, report.QualityGrade)
}

func TestCalculateQualityScoreMissingRequiredRecommendation(t *testing.T) {
	s := NewScorer(nil)
	report := s.CalculateQualityScore(map[string]string{"unit_number": "101"}, "rent_roll", Metadata{})
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "Critical:")
}

func TestRunAssessorRecoversPanic(t *testing.T) {
	s := NewScorer(nil)
	m, err := s.runAssessor(assessor{
		name: MetricAccuracy,
		run:  func() Metric { panic("boom") },
	})
	require.Error(t, err)
	assert.Equal(t, MetricAccuracy, m.Name)
	assert.Zero(t, m.Score)
	assert.Zero(t, m.Confidence)
	assert.Contains(t, m.Details["error"], "boom")
}

func TestMinimalReport(t *testing.T) {
	s := NewScorer(nil)
	report := s.minimalReport("rent_roll", 3)
	assert.Zero(t, report.OverallScore)
	assert.Equal(t, GradePoor, report.QualityGrade)
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "manual review")
	assert.Equal(t, 3, report.ProcessingMetadata.FieldCount)
}

func TestCalculateQualityScoreDeterministicForSameInput(t *testing.T) {
	s := NewScorer(nil)
	a := s.CalculateQualityScore(rentRollData(), "rent_roll", rentRollMeta())
	b := s.CalculateQualityScore(rentRollData(), "rent_roll", rentRollMeta())
	assert.Equal(t, a.OverallScore, b.OverallScore)
	assert.Equal(t, a.QualityGrade, b.QualityGrade)
	assert.Equal(t, a.Recommendations, b.Recommendations)
}
