// Package export writes extraction results to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/quality"
)

const (
	sheetFields          = "Fields"
	sheetQuality         = "Quality"
	sheetRecommendations = "Recommendations"
)

// Result is one document's worth of export data.
type Result struct {
	DocumentType string
	SourceName   string
	Fields       map[string]string
	Report       *quality.Report
}

// Workbook builds an xlsx workbook from one or more document results.
func Workbook(results []Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeFieldsSheet(f, results); err != nil {
		return nil, err
	}
	if err := writeQualitySheet(f, results); err != nil {
		return nil, err
	}
	if err := writeRecommendationsSheet(f, results); err != nil {
		return nil, err
	}

	// Drop the default sheet and land the user on Fields.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheetFields)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// WriteFile writes the workbook for results to an xlsx file.
func WriteFile(path string, results []Result) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Write streams the workbook for results to w.
func Write(w io.Writer, results []Result) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeFieldsSheet(f *excelize.File, results []Result) error {
	if _, err := f.NewSheet(sheetFields); err != nil {
		return err
	}
	header := []any{"Source", "Document Type", "Field", "Value", "OCR Confidence", "Grade"}
	if err := setRow(f, sheetFields, 1, header); err != nil {
		return err
	}

	row := 2
	for _, r := range results {
		grades := fieldGrades(r.Report)
		confidences := fieldConfidences(r.Report)
		for _, field := range sortedKeys(r.Fields) {
			values := []any{r.SourceName, r.DocumentType, field, r.Fields[field], confidences[field], grades[field]}
			if err := setRow(f, sheetFields, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeQualitySheet(f *excelize.File, results []Result) error {
	if _, err := f.NewSheet(sheetQuality); err != nil {
		return err
	}
	header := []any{"Source", "Document Type", "Overall Score", "Grade"}
	for _, name := range metricColumns() {
		header = append(header, name)
	}
	if err := setRow(f, sheetQuality, 1, header); err != nil {
		return err
	}

	for i, r := range results {
		values := []any{r.SourceName, r.DocumentType}
		if r.Report != nil {
			values = append(values, r.Report.OverallScore, r.Report.QualityGrade)
			scores := metricScores(r.Report)
			for _, name := range metricColumns() {
				values = append(values, scores[name])
			}
		}
		if err := setRow(f, sheetQuality, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeRecommendationsSheet(f *excelize.File, results []Result) error {
	if _, err := f.NewSheet(sheetRecommendations); err != nil {
		return err
	}
	if err := setRow(f, sheetRecommendations, 1, []any{"Source", "Recommendation"}); err != nil {
		return err
	}

	row := 2
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		for _, rec := range r.Report.Recommendations {
			if err := setRow(f, sheetRecommendations, row, []any{r.SourceName, rec}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// metricColumns fixes the quality-metric column order.
func metricColumns() []string {
	return []string{
		quality.MetricOCRQuality,
		quality.MetricCompleteness,
		quality.MetricConsistency,
		quality.MetricAccuracy,
		quality.MetricReliability,
	}
}

func metricScores(report *quality.Report) map[string]float64 {
	out := make(map[string]float64, len(report.QualityMetrics))
	for _, m := range report.QualityMetrics {
		out[m.Name] = m.Score
	}
	return out
}

func fieldGrades(report *quality.Report) map[string]string {
	out := map[string]string{}
	if report == nil {
		return out
	}
	for _, fa := range report.FieldAnalyses {
		out[fa.FieldName] = fa.QualityGrade
	}
	return out
}

func fieldConfidences(report *quality.Report) map[string]float64 {
	out := map[string]float64{}
	if report == nil {
		return out
	}
	for _, fa := range report.FieldAnalyses {
		out[fa.FieldName] = fa.OCRConfidence
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
