package ocr

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/testutil"
)

var errorCodes = []string{
	CodeFileNotFound, CodeInvalidImage, CodeProcessingFailed,
	CodeInvalidInput, CodeAccessDenied, CodeFileTooLarge,
}

// fakeEngine returns canned output, counting calls.
type fakeEngine struct {
	text  string
	words []Word
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(img image.Image, mode Mode) (EngineResult, error) {
	f.calls++
	if f.err != nil {
		return EngineResult{}, f.err
	}
	return EngineResult{Text: f.text, Words: f.words}, nil
}

func wordsWithConfidence(conf float64, texts ...string) []Word {
	out := make([]Word, 0, len(texts))
	for i, txt := range texts {
		out = append(out, Word{Text: txt, Confidence: conf, X: i * 50, Y: 10, Width: 40, Height: 12})
	}
	return out
}

func TestExtractTextFromImage(t *testing.T) {
	engine := &fakeEngine{
		text:  "Tenant: Acme Corp Rent: $1,5OO.00",
		words: wordsWithConfidence(92, "Tenant:", "Acme", "Corp", "Rent:", "$1,5OO.00"),
	}
	svc := NewService(DefaultConfig(), engine)

	res := svc.ExtractTextFromImage(testutil.TextImage(400, 100, "Tenant: Acme Corp"), nil)

	require.True(t, res.Success)
	assert.Empty(t, res.ErrorCode)
	assert.Equal(t, "Tenant: Acme Corp Rent: $1,500.00", res.Text)
	assert.Equal(t, engine.text, res.RawText)
	assert.InDelta(t, 92, res.Confidence, 0.01)
	assert.NotEmpty(t, res.EngineMode)
	assert.True(t, res.Validation.IsValid)
	// High confidence stops after the standard pass.
	assert.Equal(t, 1, engine.calls)
}

func TestExtractTextLowConfidenceRunsBothTiers(t *testing.T) {
	engine := &fakeEngine{text: "blurry", words: wordsWithConfidence(40, "blurry")}
	svc := NewService(DefaultConfig(), engine)

	res := svc.ExtractTextFromImage(testutil.TextImage(400, 100, "blurry"), nil)

	assert.True(t, res.Success)
	assert.Equal(t, 2, engine.calls)
	assert.InDelta(t, 40, res.Confidence, 0.01)
}

func TestExtractTextConfidenceRange(t *testing.T) {
	for _, conf := range []float64{0, 10, 55, 99, 100} {
		engine := &fakeEngine{text: "x", words: wordsWithConfidence(conf, "x")}
		svc := NewService(DefaultConfig(), engine)
		res := svc.ExtractTextFromImage(testutil.TextImage(200, 60, "x"), nil)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 100.0)
		frac := res.ConfidenceFraction()
		assert.GreaterOrEqual(t, frac, 0.0)
		assert.LessOrEqual(t, frac, 1.0)
	}
}

func TestExtractTextNilImage(t *testing.T) {
	svc := NewService(DefaultConfig(), &fakeEngine{})
	res := svc.ExtractTextFromImage(nil, nil)

	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalidInput, res.ErrorCode)
}

func TestExtractTextEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("engine crashed")}
	svc := NewService(DefaultConfig(), engine)

	res := svc.ExtractTextFromImage(testutil.TextImage(200, 60, "x"), nil)

	assert.False(t, res.Success)
	assert.Equal(t, CodeProcessingFailed, res.ErrorCode)
	assert.Contains(t, errorCodes, res.ErrorCode)
	assert.Zero(t, res.Confidence)
	// Both tiers were attempted before giving up.
	assert.Equal(t, 2, engine.calls)
}

func TestExtractTextTinyImage(t *testing.T) {
	engine := &fakeEngine{}
	svc := NewService(DefaultConfig(), engine)

	res := svc.ExtractTextFromImage(testutil.TinyImage(), nil)

	assert.False(t, res.Success)
	assert.Equal(t, CodeProcessingFailed, res.ErrorCode)
	assert.False(t, res.Validation.IsValid)
}

func TestExtractTextRegionClipping(t *testing.T) {
	engine := &fakeEngine{text: "101", words: wordsWithConfidence(90, "101")}
	svc := NewService(DefaultConfig(), engine)
	img := testutil.TextImage(400, 200, "101")

	t.Run("partially outside clips to overlap", func(t *testing.T) {
		r := region.Region{X: -50, Y: -50, Width: 200, Height: 120}
		res := svc.ExtractTextFromImage(img, &r)
		assert.True(t, res.Success)
	})

	t.Run("fully outside is rejected", func(t *testing.T) {
		r := region.Region{X: 1000, Y: 1000, Width: 50, Height: 50}
		res := svc.ExtractTextFromImage(img, &r)
		assert.False(t, res.Success)
		assert.Equal(t, CodeInvalidInput, res.ErrorCode)
	})
}

func TestExtractTextFromRegionRejectsOutsidePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path.AllowedDirs = []string{t.TempDir()}
	svc := NewService(cfg, &fakeEngine{})

	res := svc.ExtractTextFromRegion("/etc/passwd", region.Region{X: 0, Y: 0, Width: 10, Height: 10})

	assert.False(t, res.Success)
	assert.Contains(t, errorCodes, res.ErrorCode)
	assert.Equal(t, CodeAccessDenied, res.ErrorCode)
	assert.NotContains(t, res.ErrorMessage, "passwd")
}

func TestExtractTextFromRegionValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "crop.png")

	cfg := DefaultConfig()
	cfg.Path.AllowedDirs = []string{dir}
	engine := &fakeEngine{text: "ok", words: wordsWithConfidence(85, "ok")}
	svc := NewService(cfg, engine)

	res := svc.ExtractTextFromRegion(path, region.Region{X: 0, Y: 0, Width: 10, Height: 10})

	assert.True(t, res.Success)
	assert.Equal(t, "ok", res.Text)
}

func TestExtractTextCache(t *testing.T) {
	engine := &fakeEngine{text: "cached", words: wordsWithConfidence(95, "cached")}
	cfg := DefaultConfig()
	cfg.EnableCache = true
	svc := NewService(cfg, engine)
	img := testutil.TextImage(300, 80, "cached")

	first := svc.ExtractTextFromImage(img, nil)
	callsAfterFirst := engine.calls
	second := svc.ExtractTextFromImage(img, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, engine.calls)
}

func TestExtractTextContextCancelled(t *testing.T) {
	engine := &fakeEngine{text: "partial", words: wordsWithConfidence(30, "partial")}
	svc := NewService(DefaultConfig(), engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := svc.ExtractTextFromImageContext(ctx, testutil.TextImage(300, 80, "partial"), nil)

	// The standard pass still runs; cancellation skips the aggressive tier.
	assert.True(t, res.Success)
	assert.Equal(t, 1, engine.calls)
}

func TestExtractStructuredData(t *testing.T) {
	engine := &fakeEngine{
		text:  "123 Main Street rents for $1,500.00 across 1,200 sq ft",
		words: wordsWithConfidence(90, "123", "Main", "Street"),
	}
	svc := NewService(DefaultConfig(), engine)

	data := svc.ExtractStructuredData(testutil.TextImage(500, 100, "offer"))

	require.True(t, data.Success)
	assert.Equal(t, "123 Main Street", data.ExtractedFields["address"])
	assert.Equal(t, "$1,500.00", data.ExtractedFields["currency"])
	assert.Contains(t, data.ExtractedFields, "square_feet")
	assert.Greater(t, data.Confidence, 90.0)
	assert.LessOrEqual(t, data.Confidence, 100.0)
}

func TestExtractStructuredDataFailedOCR(t *testing.T) {
	svc := NewService(DefaultConfig(), &fakeEngine{err: errors.New("down")})

	data := svc.ExtractStructuredData(testutil.TextImage(300, 80, "x"))

	assert.False(t, data.Success)
	assert.Empty(t, data.ExtractedFields)
}

func TestWeightedConfidence(t *testing.T) {
	tests := []struct {
		name     string
		words    []Word
		expected float64
	}{
		{"no words", nil, 0},
		{"all zero confidence", []Word{{Text: "a", Confidence: 0}}, 0},
		{"single word", []Word{{Text: "hello", Confidence: 80}}, 80},
		{
			"long words dominate",
			[]Word{{Text: "hello", Confidence: 90}, {Text: "x", Confidence: 10}},
			(90*5 + 10*1) / 6.0,
		},
		{"clamped at 100", []Word{{Text: "a", Confidence: 150}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeightedConfidence(tt.words), 0.001)
		})
	}
}

func TestValidateResult(t *testing.T) {
	good := ValidateResult(Result{
		Text:       "Unit 101 Acme Corp $1,500.00 leased from 01/01/2024 through 12/31/2024 at 1,200 sqft",
		Confidence: 90,
	})
	assert.True(t, good.IsValid)
	assert.Greater(t, good.QualityScore, 50.0)
	assert.Empty(t, good.Issues)

	bad := ValidateResult(Result{Text: "", Confidence: 0})
	assert.False(t, bad.IsValid)
	assert.Contains(t, bad.Issues, "low OCR confidence")
	assert.Contains(t, bad.Issues, "no words recognized")
	assert.NotEmpty(t, bad.Recommendations)

	mojibake := ValidateResult(Result{Text: "Tenant n�me and more text to pass the volume checks here today", Confidence: 85})
	assert.Contains(t, mojibake.Issues, "possible encoding or recognition artifacts")
}

func TestServiceDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"eng"}, cfg.Languages)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 80.0, cfg.EarlyStopConfidence)

	svc := NewService(Config{}, &fakeEngine{})
	require.NotNil(t, svc)
	assert.Equal(t, 80.0, svc.config.EarlyStopConfidence)
}

func TestExtractTextFromRegionMissingFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(DefaultConfig(), &fakeEngine{})

	res := svc.ExtractTextFromRegion(filepath.Join(dir, "gone.png"), region.Region{Width: 10, Height: 10})

	assert.False(t, res.Success)
	assert.Equal(t, CodeFileNotFound, res.ErrorCode)
}
