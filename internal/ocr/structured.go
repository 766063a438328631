package ocr

import (
	"regexp"
)

// StructuredData is the output of pattern-based extraction over OCR text.
type StructuredData struct {
	ExtractedFields map[string]string `json:"extracted_fields"`
	Confidence      float64           `json:"confidence"` // 0-100
	Success         bool              `json:"success"`
}

// Fixed battery of real-estate text patterns. Each match adds a small bonus
// to the base OCR confidence, capped below.
var structuredPatterns = map[string]*regexp.Regexp{
	"address":       regexp.MustCompile(`\d+\s+[A-Za-z][\w\s]*(?:Street|Avenue|Boulevard|Drive|Road|Lane|St|Ave|Blvd|Dr|Rd|Ln)\b`),
	"currency":      regexp.MustCompile(`\$\s?[\d,]+(?:\.\d{2})?`),
	"square_feet":   regexp.MustCompile(`[\d,]+\s*(?:sq\.?\s?ft\.?|sf|square\s+feet)`),
	"lease_term":    regexp.MustCompile(`\d{1,3}\s*(?:month|year)s?`),
	"phone":         regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`),
	"email":         regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`),
	"date":          regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	"percentage":    regexp.MustCompile(`\d{1,3}(?:\.\d{1,2})?\s?%`),
	"property_type": regexp.MustCompile(`(?i)\b(?:office|retail|industrial|multifamily|warehouse|mixed.use)\b`),
}

const (
	structuredMatchBonus    = 5.0
	structuredMaxBonus      = 20.0
	structuredMaxConfidence = 100.0
)

// ExtractStructuredFields runs the pattern battery over corrected OCR text.
// Each matched pattern contributes its first match and a confidence bonus on
// top of the base OCR confidence.
func ExtractStructuredFields(text string, baseConfidence float64) StructuredData {
	out := StructuredData{ExtractedFields: make(map[string]string)}
	if text == "" {
		return out
	}

	bonus := 0.0
	for name, pattern := range structuredPatterns {
		if m := pattern.FindString(text); m != "" {
			out.ExtractedFields[name] = m
			bonus += structuredMatchBonus
		}
	}
	if bonus > structuredMaxBonus {
		bonus = structuredMaxBonus
	}

	out.Confidence = baseConfidence + bonus
	if out.Confidence > structuredMaxConfidence {
		out.Confidence = structuredMaxConfidence
	}
	out.Success = len(out.ExtractedFields) > 0
	return out
}
