package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/ocr"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/quality"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/testutil"
)

// fakeEngine recognizes every crop as the same text, without Tesseract.
type fakeEngine struct {
	text string
	conf float64
	err  error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(img image.Image, _ ocr.Mode) (ocr.EngineResult, error) {
	if f.err != nil {
		return ocr.EngineResult{}, f.err
	}
	return ocr.EngineResult{
		Text: f.text,
		Words: []ocr.Word{
			{Text: f.text, Confidence: f.conf, X: 0, Y: 0, Width: 10, Height: 10},
		},
	}, nil
}

func newTestPipeline(t *testing.T, engine ocr.Engine, enhancer Enhancer) *Pipeline {
	t.Helper()
	ocrCfg := ocr.DefaultConfig()
	ocrCfg.EnableCache = false
	service := ocr.NewService(ocrCfg, engine)
	return New(DefaultConfig(), nil, region.NewManager(region.DefaultManagerConfig()), service, enhancer)
}

func TestProcessImageRentRoll(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "Acme Corp", conf: 85}, nil)
	img := testutil.RentRollImage(800, 600, testutil.DefaultRentRollRows())

	result, err := p.ProcessImage(context.Background(), img, "rent_roll")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "rent_roll", result.DocumentType)
	assert.NotEmpty(t, result.Regions, "a rendered table should produce candidate regions")
	require.NotNil(t, result.Report)
	assert.NotEmpty(t, result.Report.QualityGrade)
	assert.GreaterOrEqual(t, result.ProcessingTimeMS, int64(0))
}

func TestProcessImageSuggestsDocumentType(t *testing.T) {
	engine := &fakeEngine{text: "Rent Roll Unit Tenant Rent", conf: 85}
	p := newTestPipeline(t, engine, nil)
	img := testutil.RentRollImage(800, 600, testutil.DefaultRentRollRows())

	result, err := p.ProcessImage(context.Background(), img, "")
	require.NoError(t, err)
	assert.Equal(t, "rent_roll", result.DocumentType)
}

func TestProcessImageUntypedWhenNoSignal(t *testing.T) {
	engine := &fakeEngine{text: "nothing recognizable here", conf: 85}
	p := newTestPipeline(t, engine, nil)
	img := testutil.RentRollImage(800, 600, testutil.DefaultRentRollRows())

	result, err := p.ProcessImage(context.Background(), img, "")
	require.NoError(t, err)
	assert.Empty(t, result.DocumentType)
}

func TestProcessImageNil(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 90}, nil)
	_, err := p.ProcessImage(context.Background(), nil, "rent_roll")
	assert.Error(t, err)
}

func TestProcessImageTinyImageDegradesGracefully(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 90}, nil)

	result, err := p.ProcessImage(context.Background(), testutil.TinyImage(), "rent_roll")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Report)
	assert.Equal(t, quality.GradePoor, result.Report.QualityGrade)
}

func TestProcessImageCancelledContext(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 90}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessImage(ctx, testutil.RentRollImage(400, 300, testutil.DefaultRentRollRows()), "rent_roll")
	assert.ErrorIs(t, err, context.Canceled)
}

type stubEnhancer struct {
	fields map[string]string
	err    error
	called bool
}

func (s *stubEnhancer) Enhance(_ context.Context, _ string, fields map[string]string) (map[string]string, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

func TestProcessImageEnhancerApplied(t *testing.T) {
	enhancer := &stubEnhancer{fields: map[string]string{"unit_number": "101"}}
	p := newTestPipeline(t, &fakeEngine{text: "raw", conf: 80}, enhancer)

	result, err := p.ProcessImage(context.Background(), testutil.TinyImage(), "rent_roll")
	require.NoError(t, err)
	assert.True(t, enhancer.called)
	assert.Equal(t, map[string]string{"unit_number": "101"}, result.Fields)
}

func TestProcessImageEnhancerFailureKeepsFields(t *testing.T) {
	enhancer := &stubEnhancer{err: errors.New("service down")}
	p := newTestPipeline(t, &fakeEngine{text: "raw", conf: 80}, enhancer)

	result, err := p.ProcessImage(context.Background(), testutil.TinyImage(), "rent_roll")
	require.NoError(t, err)
	assert.Contains(t, result.Errors, "enhancement failed")
	require.NotNil(t, result.Report)
}

func TestNoopEnhancer(t *testing.T) {
	fields := map[string]string{"a": "1"}
	out, err := NoopEnhancer{}.Enhance(context.Background(), "rent_roll", fields)
	require.NoError(t, err)
	assert.Equal(t, fields, out)
}

func TestMergeExtractionKeepsHigherConfidence(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{}, nil)
	result := &PageResult{
		Fields:     map[string]string{},
		OCRResults: map[string]quality.OCRFieldResult{},
	}

	p.mergeExtraction(result, regionExtraction{
		region: region.Region{FieldType: "rent_amount"},
		result: ocr.Result{Text: "$1,400", Confidence: 60, Success: true},
	})
	p.mergeExtraction(result, regionExtraction{
		region: region.Region{FieldType: "rent_amount"},
		result: ocr.Result{Text: "$1,500", Confidence: 90, Success: true},
	})
	p.mergeExtraction(result, regionExtraction{
		region: region.Region{FieldType: "rent_amount"},
		result: ocr.Result{Text: "$1,450", Confidence: 70, Success: true},
	})

	assert.Equal(t, "$1,500", result.Fields["rent_amount"])
	assert.Equal(t, float64(90), result.OCRResults["rent_amount"].Confidence)
}

func TestMergeExtractionSkipsUnlabeledAndEmpty(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{}, nil)
	result := &PageResult{
		Fields:     map[string]string{},
		OCRResults: map[string]quality.OCRFieldResult{},
	}

	p.mergeExtraction(result, regionExtraction{
		region: region.Region{FieldType: ""},
		result: ocr.Result{Text: "orphan", Confidence: 95, Success: true},
	})
	p.mergeExtraction(result, regionExtraction{
		region: region.Region{FieldType: "tenant_name"},
		result: ocr.Result{Text: "", Confidence: 95, Success: true},
	})
	assert.Empty(t, result.Fields)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, "ok", statusFor(&PageResult{Fields: map[string]string{"a": "1"}}))
	assert.Equal(t, "partial", statusFor(&PageResult{
		Fields: map[string]string{"a": "1"},
		Errors: []string{"region failed"},
	}))
	assert.Equal(t, "failed", statusFor(&PageResult{
		Fields: map[string]string{},
		Errors: []string{"region failed"},
	}))
}

func TestProcessImagesParallelOrdering(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 85}, nil)
	images := []image.Image{
		testutil.TextImage(200, 100, "Page one"),
		testutil.TextImage(200, 100, "Page two"),
		testutil.TextImage(200, 100, "Page three"),
	}

	results, err := p.ProcessImagesParallel(context.Background(), images, "rent_roll")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NotNil(t, r, "page %d missing", i+1)
		assert.Equal(t, i+1, r.PageNumber)
	}
}

func TestProcessImagesParallelContinueOnError(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 85}, nil)
	images := []image.Image{
		testutil.TextImage(200, 100, "Page one"),
		nil, // unreadable page
		testutil.TextImage(200, 100, "Page three"),
	}

	results, err := p.ProcessImagesParallel(context.Background(), images, "rent_roll")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
}

func TestProcessImagesParallelAbortsWithoutContinue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContinueOnError = false
	ocrCfg := ocr.DefaultConfig()
	ocrCfg.EnableCache = false
	service := ocr.NewService(ocrCfg, &fakeEngine{text: "x", conf: 85})
	p := New(cfg, nil, region.NewManager(region.DefaultManagerConfig()), service, nil)

	results, err := p.ProcessImagesParallel(context.Background(),
		[]image.Image{testutil.TextImage(200, 100, "ok"), nil}, "rent_roll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Nil(t, results)
}

func TestProcessImagesParallelEmpty(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 85}, nil)
	_, err := p.ProcessImagesParallel(context.Background(), nil, "rent_roll")
	assert.Error(t, err)
}

func TestProcessImagesParallelCancelled(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 85}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessImagesParallel(ctx, []image.Image{testutil.TinyImage(), testutil.TinyImage()}, "rent_roll")
	assert.Error(t, err)
}

func TestProcessPDFMissingFile(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{text: "x", conf: 85}, nil)
	_, err := p.ProcessPDF(context.Background(), "/nonexistent/file.pdf", "rent_roll")
	assert.Error(t, err)
}
