// Package pipeline orchestrates document processing: region detection, OCR
// over a bounded worker pool, optional field enhancement and quality
// scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/ocr"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/quality"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// Config holds pipeline orchestration settings.
type Config struct {
	Workers            int     // per-page OCR workers (default 3)
	PageRange          string  // PDF page selection, empty means all
	ContinueOnError    bool    // keep processing pages after a page fails
	TextLayerThreshold float64 // embedded-text score above which OCR is skipped
}

// DefaultConfig returns pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            3,
		ContinueOnError:    true,
		TextLayerThreshold: 0.7,
	}
}

// Pipeline wires the region manager, OCR service, enhancer and quality
// scorer into one document processor.
type Pipeline struct {
	config   Config
	logger   *slog.Logger
	regions  *region.Manager
	ocr      *ocr.Service
	scorer   *quality.Scorer
	enhancer Enhancer
}

// New builds a pipeline. Nil collaborators fall back to defaults; a nil
// enhancer disables enhancement.
func New(config Config, logger *slog.Logger, regions *region.Manager, ocrService *ocr.Service, enhancer Enhancer) *Pipeline {
	if config.Workers < 1 {
		config.Workers = 3
	}
	if config.TextLayerThreshold <= 0 {
		config.TextLayerThreshold = 0.7
	}
	if logger == nil {
		logger = slog.Default()
	}
	if regions == nil {
		regions = region.NewManager(region.DefaultManagerConfig())
	}
	if ocrService == nil {
		ocrService = ocr.NewService(ocr.DefaultConfig(), nil)
	}
	if enhancer == nil {
		enhancer = NoopEnhancer{}
	}
	return &Pipeline{
		config:   config,
		logger:   logger,
		regions:  regions,
		ocr:      ocrService,
		scorer:   quality.NewScorer(logger),
		enhancer: enhancer,
	}
}

// PageResult is the outcome of processing one page image.
type PageResult struct {
	PageNumber       int                                `json:"page_number"`
	DocumentType     string                             `json:"document_type"`
	Fields           map[string]string                  `json:"fields"`
	OCRResults       map[string]quality.OCRFieldResult  `json:"ocr_results,omitempty"`
	Regions          []region.Region                    `json:"regions,omitempty"`
	Report           *quality.Report                    `json:"report,omitempty"`
	Errors           []string                           `json:"errors,omitempty"`
	UsedTextLayer    bool                               `json:"used_text_layer,omitempty"`
	ProcessingTimeMS int64                              `json:"processing_time_ms"`
}

// ProcessImage runs the full pipeline for one page image.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image, documentType string) (*PageResult, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	start := time.Now()

	if documentType == "" {
		documentType = p.suggestDocumentType(ctx, img)
	}

	result := &PageResult{
		PageNumber:   1,
		DocumentType: documentType,
		Fields:       map[string]string{},
		OCRResults:   map[string]quality.OCRFieldResult{},
	}

	regions := p.regions.SuggestRegions(documentType, img)
	result.Regions = regions
	observeRegions(documentType, len(regions))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractions := p.extractRegions(ctx, img, regions)
	for _, ex := range extractions {
		if ex.err != nil {
			result.Errors = append(result.Errors, ex.err.Error())
			continue
		}
		p.mergeExtraction(result, ex)
	}

	enhanced, err := p.enhancer.Enhance(ctx, documentType, result.Fields)
	if err != nil {
		p.logger.Warn("field enhancement failed", "document_type", documentType, "error", err)
		result.Errors = append(result.Errors, "enhancement failed")
	} else if enhanced != nil {
		result.Fields = enhanced
	}

	result.Report = p.scorer.CalculateQualityScore(result.Fields, documentType, quality.Metadata{
		DocumentType:     documentType,
		OCRResults:       result.OCRResults,
		Errors:           result.Errors,
		RegionsProcessed: len(regions),
	})
	result.ProcessingTimeMS = time.Since(start).Milliseconds()

	observePage(documentType, statusFor(result), time.Since(start), len(result.Fields))
	p.logger.Info("page processed",
		"document_type", documentType,
		"regions", len(regions),
		"fields", len(result.Fields),
		"grade", result.Report.QualityGrade,
		"duration_ms", result.ProcessingTimeMS)
	return result, nil
}

// suggestDocumentType guesses the type from a full-page OCR pass when the
// caller didn't tag the document. An unreadable page stays untyped; region
// suggestion then runs without template fallbacks.
func (p *Pipeline) suggestDocumentType(ctx context.Context, img image.Image) string {
	probe := p.ocr.ExtractTextFromImageContext(ctx, img, nil)
	if !probe.Success {
		return ""
	}
	suggested, score := template.SuggestType(probe.Text)
	if suggested != "" {
		p.logger.Info("document type suggested", "document_type", suggested, "score", score)
	}
	return suggested
}

// regionExtraction pairs a region with its OCR outcome.
type regionExtraction struct {
	region region.Region
	result ocr.Result
	err    error
}

// extractRegions runs OCR over the regions with a bounded worker pool and
// returns outcomes in region order.
func (p *Pipeline) extractRegions(ctx context.Context, img image.Image, regions []region.Region) []regionExtraction {
	if len(regions) == 0 {
		return nil
	}

	workers := p.config.Workers
	if workers > len(regions) {
		workers = len(regions)
	}

	jobs := make(chan int, len(regions))
	out := make([]regionExtraction, len(regions))
	done := make(chan struct{}, len(regions))

	for w := 0; w < workers; w++ {
		go func() {
			for {
				select {
				case i, ok := <-jobs:
					if !ok {
						return
					}
					out[i] = p.extractOne(ctx, img, regions[i])
					done <- struct{}{}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for i := range regions {
		jobs <- i
	}
	close(jobs)

	for range regions {
		select {
		case <-done:
		case <-ctx.Done():
			return out
		}
	}
	return out
}

func (p *Pipeline) extractOne(ctx context.Context, img image.Image, r region.Region) regionExtraction {
	res := p.ocr.ExtractTextFromImageContext(ctx, img, &r)
	ex := regionExtraction{region: r, result: res}
	if !res.Success {
		ex.err = fmt.Errorf("region %s: %s", r.FieldType, res.ErrorCode)
	}
	return ex
}

// mergeExtraction folds one successful region extraction into the page
// result. When several regions claim the same field, the higher-confidence
// text wins.
func (p *Pipeline) mergeExtraction(result *PageResult, ex regionExtraction) {
	field := ex.region.FieldType
	if field == "" || ex.result.Text == "" {
		return
	}
	if prev, ok := result.OCRResults[field]; ok && prev.Confidence >= ex.result.Confidence {
		return
	}
	result.Fields[field] = ex.result.Text
	result.OCRResults[field] = quality.OCRFieldResult{
		Text:       ex.result.Text,
		Confidence: ex.result.Confidence,
	}
}

func statusFor(result *PageResult) string {
	if len(result.Errors) > 0 && len(result.Fields) == 0 {
		return "failed"
	}
	if len(result.Errors) > 0 {
		return "partial"
	}
	return "ok"
}
