// Package ocr implements text extraction from page images and regions:
// tiered preprocessing, engine mode selection, confidence weighting,
// deterministic text correction and result validation.
package ocr

// Error codes returned on failed extractions. The vocabulary is fixed and
// generic; messages never disclose filesystem paths.
const (
	CodeFileNotFound     = "file_not_found"
	CodeInvalidImage     = "invalid_image"
	CodeProcessingFailed = "processing_failed"
	CodeInvalidInput     = "invalid_input"
	CodeAccessDenied     = "access_denied"
	CodeFileTooLarge     = "file_too_large"
)

// Word is one recognized word with its box and engine confidence (0-100).
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Validation is the embedded quality verdict of one extraction.
type Validation struct {
	IsValid         bool     `json:"is_valid"`
	QualityScore    float64  `json:"quality_score"` // 0-100
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Result is the output of one extraction attempt on one image or region.
type Result struct {
	Text              string     `json:"text"`
	RawText           string     `json:"raw_text"`
	Confidence        float64    `json:"confidence"` // 0-100, length-weighted
	Words             []Word     `json:"words,omitempty"`
	PreprocessingUsed string     `json:"preprocessing_used,omitempty"`
	EngineMode        string     `json:"engine_mode,omitempty"`
	Success           bool       `json:"success"`
	ErrorCode         string     `json:"error_code,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	Validation        Validation `json:"validation"`
}

// failed builds the generic failure result for an error code.
func failed(code, message string) Result {
	return Result{
		Success:      false,
		Confidence:   0,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// ConfidenceFraction returns the confidence on a 0-1 scale.
func (r Result) ConfidenceFraction() float64 {
	f := r.Confidence / 100.0
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
