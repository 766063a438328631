package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

func rentRollData() map[string]string {
	return map[string]string{
		"unit_number": "101",
		"tenant_name": "Acme Corp",
		"rent_amount": "$1,500.00",
		"lease_start": "01/01/2024",
		"lease_end":   "12/31/2024",
		"sqft":        "1,000",
	}
}

func rentRollMeta() Metadata {
	return Metadata{
		DocumentType: "rent_roll",
		OCRResults: map[string]OCRFieldResult{
			"unit_number": {Text: "101", Confidence: 92},
			"tenant_name": {Text: "Acme Corp", Confidence: 88},
			"rent_amount": {Text: "$1,500.00", Confidence: 90},
			"lease_start": {Text: "01/01/2024", Confidence: 85},
			"lease_end":   {Text: "12/31/2024", Confidence: 86},
			"sqft":        {Text: "1,000", Confidence: 89},
		},
	}
}

func TestAssessOCRQuality(t *testing.T) {
	m := assessOCRQuality(rentRollData(), rentRollMeta())
	assert.Equal(t, MetricOCRQuality, m.Name)
	assert.Greater(t, m.Score, 0.7)
	assert.LessOrEqual(t, m.Score, 1.0)
}

func TestAssessOCRQualityNoData(t *testing.T) {
	m := assessOCRQuality(nil, Metadata{})
	assert.Zero(t, m.Score)
	assert.NotEmpty(t, m.Recommendations)
}

func TestAssessOCRQualityLowMinimumPenalized(t *testing.T) {
	meta := rentRollMeta()
	weak := meta.OCRResults["sqft"]
	weak.Confidence = 12
	meta.OCRResults["sqft"] = weak

	strong := assessOCRQuality(rentRollData(), rentRollMeta())
	penalized := assessOCRQuality(rentRollData(), meta)
	assert.Less(t, penalized.Score, strong.Score)
	assert.NotEmpty(t, penalized.Recommendations)
}

func TestAssessCompletenessFull(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	m := assessCompleteness(rentRollData(), tmpl)
	assert.InDelta(t, 1.0, m.Score, 1e-9)
	assert.Empty(t, m.Recommendations)
}

func TestAssessCompletenessFormula(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	data := map[string]string{
		"unit_number": "101",
		"tenant_name": "Acme Corp",
	}
	// 2 of 3 required present and non-empty, no optionals.
	m := assessCompleteness(data, tmpl)
	want := 0.4*(2.0/3.0) + 0.4*(2.0/3.0)
	assert.InDelta(t, want, m.Score, 1e-9)
}

func TestAssessCompletenessMissingRequiredIsCritical(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	m := assessCompleteness(map[string]string{"unit_number": "101"}, tmpl)
	require.NotEmpty(t, m.Recommendations)
	assert.Contains(t, m.Recommendations[0], "Critical:")
	assert.Contains(t, m.Recommendations[0], "tenant_name")
	assert.Contains(t, m.Recommendations[0], "rent_amount")
}

func TestAssessCompletenessEmptyRequiredCountsPresentOnly(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	data := map[string]string{
		"unit_number": "101",
		"tenant_name": "   ",
		"rent_amount": "$1,500",
	}
	// 3 present, 2 non-empty.
	m := assessCompleteness(data, tmpl)
	want := 0.4*1.0 + 0.4*(2.0/3.0)
	assert.InDelta(t, want, m.Score, 1e-9)
}

// Adding a field never lowers completeness.
func TestAssessCompletenessMonotonic(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	data := map[string]string{}
	prev := assessCompleteness(data, tmpl).Score
	for _, field := range []string{"unit_number", "tenant_name", "rent_amount", "lease_start", "lease_end", "sqft"} {
		data[field] = "value"
		score := assessCompleteness(data, tmpl).Score
		assert.GreaterOrEqual(t, score, prev, "adding %s decreased completeness", field)
		prev = score
	}
}

func TestAssessCompletenessUnknownType(t *testing.T) {
	tmpl := template.Lookup("mystery_document")
	m := assessCompleteness(map[string]string{"a": "x", "b": ""}, tmpl)
	assert.InDelta(t, 0.5, m.Score, 1e-9)
}

func TestCrossFieldSanity(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
		want float64
		ok   bool
	}{
		{"plausible ratio", map[string]string{"rent_amount": "$1,500", "sqft": "1,000"}, 1, true},
		{"implausible ratio", map[string]string{"rent_amount": "$1,500,000", "sqft": "100"}, 0, true},
		{"monthly rent alias", map[string]string{"monthly_rent": "$2,000", "sqft": "800"}, 1, true},
		{"missing sqft", map[string]string{"rent_amount": "$1,500"}, 0, false},
		{"unparseable rent", map[string]string{"rent_amount": "N/A", "sqft": "1,000"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := crossFieldSanity(tt.data)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, score)
			}
		})
	}
}

func TestAssessConsistencyCleanData(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	m := assessConsistency(rentRollData(), tmpl)
	assert.Greater(t, m.Score, 0.8)
}

func TestAssessConsistencyMixedFormats(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	data := map[string]string{
		"lease_start": "01/01/2024",
		"lease_end":   "2024-12-31",
		"rent_amount": "$1,500",
	}
	clean := assessConsistency(rentRollData(), tmpl)
	mixed := assessConsistency(data, tmpl)
	assert.Less(t, mixed.Score, clean.Score)
}

func TestAssessAccuracy(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	good := assessAccuracy(rentRollData(), tmpl)
	assert.Greater(t, good.Score, 0.8)

	bad := assessAccuracy(map[string]string{
		"unit_number": "@@@@@@",
		"rent_amount": "not a number",
	}, tmpl)
	assert.Less(t, bad.Score, 0.5)
	assert.NotEmpty(t, bad.Recommendations)
}

func TestFieldAccuracyHeuristic(t *testing.T) {
	tests := []struct {
		field, value string
		min, max     float64
	}{
		{"rent_amount", "$1,500.00", 1, 1},
		{"rent_amount", "garbage", 0, 0.3},
		{"rent_amount", "$5", 0.6, 0.8}, // parses but below plausible range
		{"unit_number", "A101", 1, 1},
		{"unit_number", "not-a-unit-at-all", 0, 0.4},
		{"sqft", "1,200", 1, 1},
		{"tenant_name", "Acme Corp", 1, 1},
		{"tenant_name", "12345", 0, 0.5},
		{"notes", "anything reasonable", 0.7, 0.9},
		{"notes", "", 0, 0},
	}
	for _, tt := range tests {
		got := fieldAccuracyHeuristic(tt.field, tt.value)
		assert.GreaterOrEqual(t, got, tt.min, "%s=%q", tt.field, tt.value)
		assert.LessOrEqual(t, got, tt.max, "%s=%q", tt.field, tt.value)
	}
}

func TestAssessReliability(t *testing.T) {
	tmpl := template.Lookup("rent_roll")
	meta := rentRollMeta()
	meta.RegionsProcessed = 6
	clean := assessReliability(rentRollData(), meta, tmpl)
	assert.Greater(t, clean.Score, 0.8)

	meta.Errors = []string{"region 3 failed", "region 5 failed"}
	withErrors := assessReliability(rentRollData(), meta, tmpl)
	assert.Less(t, withErrors.Score, clean.Score)
	assert.NotEmpty(t, withErrors.Recommendations)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,500.00", 1500, true},
		{"1500", 1500, true},
		{"$2,000", 2000, true},
		{"  $3,250.75 ", 3250.75, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"$", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}

func TestTextQuality(t *testing.T) {
	assert.Zero(t, textQuality("   "))
	assert.Greater(t, textQuality("Acme Corp"), textQuality("@#~@#~@#~@#~"))
	assert.Greater(t, textQuality("Suite 400"), 0.8)
}
