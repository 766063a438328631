package quality

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

func TestFieldWeightsSumToOne(t *testing.T) {
	sum := fieldWeightConfidence + fieldWeightAccuracy + fieldWeightCompleteness +
		fieldWeightConsistency + fieldWeightAnomaly
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAnalyzeFieldQuality(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	analyses := AnalyzeFieldQuality(rentRollData(), rentRollMeta(), tmpl)
	require.Len(t, analyses, 6)

	names := make([]string, len(analyses))
	for i, fa := range analyses {
		names[i] = fa.FieldName
		assert.Contains(t, []string{GradeExcellent, GradeGood, GradeFair, GradePoor}, fa.QualityGrade)
		assert.GreaterOrEqual(t, fa.OCRConfidence, 0.0)
		assert.LessOrEqual(t, fa.OCRConfidence, 1.0)
	}
	assert.True(t, sort.StringsAreSorted(names), "analyses not in field-name order: %v", names)
}

func TestAnalyzeFieldQualityEmpty(t *testing.T) {
	assert.Nil(t, AnalyzeFieldQuality(nil, Metadata{}, template.Lookup("rent_roll")))
}

func TestAnalyzeFieldQualityPatternMismatch(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	data := map[string]string{"unit_number": "@@bad@@"}
	meta := Metadata{OCRResults: map[string]OCRFieldResult{
		"unit_number": {Text: "@@bad@@", Confidence: 70},
	}}
	analyses := AnalyzeFieldQuality(data, meta, tmpl)
	require.Len(t, analyses, 1)
	fa := analyses[0]
	assert.False(t, fa.PatternMatch)
	assert.NotEmpty(t, fa.Issues)
	assert.NotEmpty(t, fa.Suggestions)
}

func TestAnalyzeFieldQualityEmptyValueFlagged(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	analyses := AnalyzeFieldQuality(map[string]string{"tenant_name": "  "}, Metadata{}, tmpl)
	require.Len(t, analyses, 1)
	assert.Zero(t, analyses[0].CompletenessScore)
	assert.Contains(t, analyses[0].Issues, "field value is empty")
}

func TestAnomalyScore(t *testing.T) {
	assert.Zero(t, anomalyScore(0.5, 0.5, 0))
	assert.Zero(t, anomalyScore(0.9, 0.9, 0.1))
	assert.InDelta(t, 1.0, anomalyScore(0.1, 0.9, 0.2), 1e-9) // 4 sigma, clamped
	assert.Greater(t, anomalyScore(0.5, 0.9, 0.2), anomalyScore(0.8, 0.9, 0.2))
}

func TestBuildRecommendationsDedupAndOrder(t *testing.T) {
	metrics := []Metric{
		{Name: MetricOCRQuality, Recommendations: []string{"fix A", "fix B"}},
		{Name: MetricCompleteness, Recommendations: []string{"Critical: missing fields", "fix A"}},
	}
	got := buildRecommendations(0.95, metrics, nil)
	require.NotEmpty(t, got)
	assert.Equal(t, "Critical: missing fields", got[0])

	seen := map[string]int{}
	for _, r := range got {
		seen[r]++
	}
	for r, n := range seen {
		assert.Equal(t, 1, n, "recommendation duplicated: %q", r)
	}
}

func TestBuildRecommendationsScoreBands(t *testing.T) {
	low := buildRecommendations(0.3, nil, nil)
	require.Len(t, low, 1)
	assert.Contains(t, low[0], "manual review")

	fair := buildRecommendations(0.65, nil, nil)
	require.Len(t, fair, 1)
	assert.Contains(t, fair[0], "fair")

	excellent := buildRecommendations(0.95, nil, nil)
	require.Len(t, excellent, 1)
	assert.Contains(t, excellent[0], "excellent")

	good := buildRecommendations(0.8, nil, nil)
	assert.Empty(t, good)
}

func TestBuildRecommendationsPoorFields(t *testing.T) {
	analyses := []FieldAnalysis{
		{FieldName: "a", QualityGrade: GradePoor},
		{FieldName: "b", QualityGrade: GradeGood},
		{FieldName: "c", QualityGrade: GradePoor},
	}
	got := buildRecommendations(0.8, nil, analyses)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "2 fields graded poor")
}
