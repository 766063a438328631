package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/ocr"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/pdf"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/quality"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// DocumentResult is the outcome of processing a whole PDF.
type DocumentResult struct {
	Source       string        `json:"source"`
	DocumentType string        `json:"document_type"`
	PageCount    int           `json:"page_count"`
	Pages        []*PageResult `json:"pages"`
}

// ProcessPDF processes every selected page of a PDF. Pages with a usable
// embedded text layer skip OCR; scanned pages go through region detection
// and recognition. A PDF with no extractable pages yields an empty result,
// not an error.
func (p *Pipeline) ProcessPDF(ctx context.Context, path string, documentType string) (*DocumentResult, error) {
	pageCount, err := pdf.PageCount(path)
	if err != nil {
		return nil, err
	}

	result := &DocumentResult{
		Source:       path,
		DocumentType: documentType,
		PageCount:    pageCount,
	}

	textPages := p.probeTextLayer(path)

	pages, err := pdf.ExtractPageImages(path, p.config.PageRange)
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if pt, ok := textPages[page.Number]; ok && pt.Score >= p.config.TextLayerThreshold {
			result.Pages = append(result.Pages, p.processTextPage(page.Number, documentType, pt))
			continue
		}

		pageResult, err := p.processScannedPage(ctx, page, documentType)
		if err != nil {
			if !p.config.ContinueOnError {
				return nil, fmt.Errorf("page %d: %w", page.Number, err)
			}
			p.logger.Warn("page processing failed", "page", page.Number, "error", err)
			continue
		}
		result.Pages = append(result.Pages, pageResult)
	}
	return result, nil
}

func (p *Pipeline) probeTextLayer(path string) map[int]pdf.PageText {
	probe := pdf.NewTextLayerProbe(p.config.TextLayerThreshold)
	textPages, err := probe.Probe(path, p.config.PageRange)
	if err != nil {
		p.logger.Debug("text layer probe failed, treating all pages as scanned", "error", err)
		return nil
	}
	return textPages
}

// processTextPage extracts fields from an embedded text layer without OCR.
func (p *Pipeline) processTextPage(pageNumber int, documentType string, pt pdf.PageText) *PageResult {
	start := time.Now()

	if documentType == "" {
		if suggested, score := template.SuggestType(pt.Text); suggested != "" {
			documentType = suggested
			p.logger.Info("document type suggested", "page", pageNumber, "document_type", suggested, "score", score)
		}
	}

	structured := ocr.ExtractStructuredFields(pt.Text, pt.Score*100)
	result := &PageResult{
		PageNumber:    pageNumber,
		DocumentType:  documentType,
		Fields:        structured.ExtractedFields,
		OCRResults:    map[string]quality.OCRFieldResult{},
		UsedTextLayer: true,
	}
	for field, value := range result.Fields {
		result.OCRResults[field] = quality.OCRFieldResult{Text: value, Confidence: structured.Confidence}
	}

	result.Report = p.scorer.CalculateQualityScore(result.Fields, documentType, quality.Metadata{
		DocumentType: documentType,
		OCRResults:   result.OCRResults,
	})
	result.ProcessingTimeMS = time.Since(start).Milliseconds()

	observePage(documentType, "text_layer", time.Since(start), len(result.Fields))
	return result
}

func (p *Pipeline) processScannedPage(ctx context.Context, page pdf.Page, documentType string) (*PageResult, error) {
	if len(page.Images) == 0 {
		return &PageResult{
			PageNumber:   page.Number,
			DocumentType: documentType,
			Fields:       map[string]string{},
			Errors:       []string{"no page image"},
		}, nil
	}

	// A scanned page normally embeds exactly one image; extra images are
	// logos or stamps, the first is the page scan.
	result, err := p.ProcessImage(ctx, page.Images[0], documentType)
	if err != nil {
		return nil, err
	}
	result.PageNumber = page.Number
	return result, nil
}
