package ocr

import (
	"strings"
)

// Composite validation weights: confidence, text volume, word volume.
const (
	validateConfidenceWeight = 0.4
	validateLengthWeight     = 0.3
	validateWordsWeight      = 0.3

	validateLengthTarget = 100.0 // characters for a full length score
	validateWordsTarget  = 20.0  // words for a full word score

	validInvalidCutoff = 20.0 // quality below this marks the result invalid
)

// mojibakeMarkers are encoding-damage artifacts that flag a suspect result.
var mojibakeMarkers = []string{"�", "©", "®", "™"}

// ValidateResult computes the embedded quality verdict for one extraction:
// a 0-100 composite of confidence, text length and word count, with issue
// and recommendation pairs for the common failure signatures.
func ValidateResult(r Result) Validation {
	v := Validation{}

	lengthScore := float64(len(r.Text)) / validateLengthTarget
	if lengthScore > 1 {
		lengthScore = 1
	}
	wordScore := float64(len(strings.Fields(r.Text))) / validateWordsTarget
	if wordScore > 1 {
		wordScore = 1
	}
	v.QualityScore = 100 * (validateConfidenceWeight*(r.Confidence/100) +
		validateLengthWeight*lengthScore +
		validateWordsWeight*wordScore)

	if r.Confidence < 50 {
		v.Issues = append(v.Issues, "low OCR confidence")
		v.Recommendations = append(v.Recommendations, "Rescan the document at a higher resolution")
	}
	if len(r.Text) < 10 {
		v.Issues = append(v.Issues, "very little text extracted")
		v.Recommendations = append(v.Recommendations, "Verify the region contains text")
	}
	if len(strings.Fields(r.Text)) == 0 {
		v.Issues = append(v.Issues, "no words recognized")
		v.Recommendations = append(v.Recommendations, "Check image quality and preprocessing level")
	}
	for _, marker := range mojibakeMarkers {
		if strings.Contains(r.Text, marker) {
			v.Issues = append(v.Issues, "possible encoding or recognition artifacts")
			v.Recommendations = append(v.Recommendations, "Review the extracted text manually")
			break
		}
	}

	v.IsValid = v.QualityScore >= validInvalidCutoff
	return v
}
