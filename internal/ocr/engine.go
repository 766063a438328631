package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Mode selects the recognition layout expectation (PSM under Tesseract).
type Mode string

const (
	ModeSparseText Mode = "sparse_text"
	ModeSingleLine Mode = "single_line"
	ModeSingleWord Mode = "single_word"
	ModeRealEstate Mode = "real_estate" // default block mode tuned for documents
)

// EngineResult carries the raw engine output before correction and scoring.
type EngineResult struct {
	Text  string
	Words []Word
}

// Engine recognizes text from an image. Implementations must be safe for
// sequential reuse; the service serializes calls per extraction.
type Engine interface {
	Name() string
	Recognize(img image.Image, mode Mode) (EngineResult, error)
}

// TesseractEngine backs the Engine interface with gosseract.
type TesseractEngine struct {
	languages []string
	dpi       int
}

// NewTesseractEngine creates a Tesseract-backed engine. Languages default to
// English when empty.
func NewTesseractEngine(languages []string, dpi int) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages, dpi: dpi}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs one OCR pass and returns the plain text plus word boxes
// with per-word confidence. Zero-confidence words are dropped.
func (e *TesseractEngine) Recognize(img image.Image, mode Mode) (EngineResult, error) {
	if img == nil {
		return EngineResult{}, fmt.Errorf("nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return EngineResult{}, fmt.Errorf("encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return EngineResult{}, fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return EngineResult{}, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetPageSegMode(pageSegMode(mode)); err != nil {
		return EngineResult{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if e.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return EngineResult{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return EngineResult{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Word boxes are an enrichment; plain text alone is still usable.
		boxes = nil
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence <= 0 || strings.TrimSpace(b.Word) == "" {
			continue
		}
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
	}

	return EngineResult{Text: strings.TrimSpace(text), Words: words}, nil
}

// pageSegMode maps a recognition mode onto Tesseract's PSM. Character
// whitelists are deliberately not set; only layout mode varies per call.
func pageSegMode(mode Mode) gosseract.PageSegMode {
	switch mode {
	case ModeSparseText:
		return gosseract.PSM_SPARSE_TEXT
	case ModeSingleLine:
		return gosseract.PSM_SINGLE_LINE
	case ModeSingleWord:
		return gosseract.PSM_SINGLE_WORD
	default:
		return gosseract.PSM_SINGLE_BLOCK
	}
}
