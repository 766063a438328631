package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/config"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/export"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/ocr"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/pipeline"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Extract fields from document images or PDFs",
	Long: `Process one or more scanned documents (PDF, JPEG, PNG, BMP, TIFF)
and extract structured fields with quality scores.

Examples:
  extractor process rentroll.pdf --type rent_roll
  extractor process page1.png page2.png --type lease_agreement
  extractor process deal.pdf --type offering_memo --format xlsx --output deal.xlsx`,
	Args: cobra.ArbitraryArgs,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("type", "", "document type (rent_roll, offering_memo, lease_agreement, comparable_sales); auto-detected when omitted")
	processCmd.Flags().String("format", "", "output format: json or xlsx (overrides config)")
	processCmd.Flags().StringP("output", "o", "", "output file (defaults to stdout for json)")
	processCmd.Flags().String("pages", "", "PDF page range, e.g. 1-5 or 1,3,7")
	processCmd.Flags().Int("workers", 0, "OCR worker count (overrides config)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}
	cfg := GetConfig()

	docType, _ := cmd.Flags().GetString("type")
	if docType != "" && template.Lookup(docType).Empty() {
		return fmt.Errorf("unknown document type %q (known types: %s)", docType, strings.Join(template.Known(), ", "))
	}

	format := cfg.Export.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	outFile := cfg.Export.File
	if o, _ := cmd.Flags().GetString("output"); o != "" {
		outFile = o
	}
	if format == "xlsx" && outFile == "" {
		return errors.New("xlsx output requires --output")
	}

	p := buildPipeline(cmd, cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var results []export.Result
	for _, path := range args {
		res, err := processFile(ctx, p, path, docType)
		if err != nil {
			if !cfg.Pipeline.ContinueOnError {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", filepath.Base(path), err)
			continue
		}
		results = append(results, res...)
	}
	if len(results) == 0 {
		return errors.New("no documents processed successfully")
	}

	return writeResults(cmd, results, format, outFile)
}

func processFile(ctx context.Context, p *pipeline.Pipeline, path, docType string) ([]export.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		doc, err := p.ProcessPDF(ctx, path, docType)
		if err != nil {
			return nil, err
		}
		results := make([]export.Result, 0, len(doc.Pages))
		for _, page := range doc.Pages {
			results = append(results, export.Result{
				DocumentType: page.DocumentType,
				SourceName:   fmt.Sprintf("%s#page%d", filepath.Base(path), page.PageNumber),
				Fields:       page.Fields,
				Report:       page.Report,
			})
		}
		return results, nil
	}

	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	page, err := p.ProcessImage(ctx, img, docType)
	if err != nil {
		return nil, err
	}
	return []export.Result{{
		DocumentType: page.DocumentType,
		SourceName:   filepath.Base(path),
		Fields:       page.Fields,
		Report:       page.Report,
	}}, nil
}

func writeResults(cmd *cobra.Command, results []export.Result, format, outFile string) error {
	switch format {
	case "xlsx":
		return export.WriteFile(outFile, results)
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		if outFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		return os.WriteFile(outFile, append(data, '\n'), 0o600)
	default:
		return fmt.Errorf("invalid output format: %s (must be json or xlsx)", format)
	}
}

// buildPipeline wires config into the processing pipeline.
func buildPipeline(cmd *cobra.Command, cfg *config.Config) *pipeline.Pipeline {
	managerCfg := region.DefaultManagerConfig()
	managerCfg.Detector.EASTModelPath = cfg.Detection.EASTModelPath
	managerCfg.Detector.EASTScoreThreshold = cfg.Detection.EASTScoreThreshold
	managerCfg.Detector.EASTNMSThreshold = cfg.Detection.EASTNMSThreshold
	managerCfg.Detector.MinRegionArea = cfg.Detection.MinRegionArea
	managerCfg.Detector.MaxRegionArea = cfg.Detection.MaxRegionArea
	managerCfg.Detector.OverlapThreshold = cfg.Detection.OverlapThreshold
	managerCfg.MergeIoUThreshold = cfg.Detection.MergeIoUThreshold
	managerCfg.ConfidenceThreshold = cfg.Detection.ConfidenceThreshold

	ocrCfg := ocr.DefaultConfig()
	ocrCfg.Languages = cfg.OCR.Languages
	ocrCfg.DPI = cfg.OCR.DPI
	ocrCfg.EarlyStopConfidence = cfg.OCR.EarlyStopConfidence
	ocrCfg.EnableCache = cfg.OCR.EnableCache
	ocrCfg.Path.AllowedDirs = cfg.Security.AllowedDirs
	ocrCfg.Path.MaxFileSize = cfg.MaxFileBytes()

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.Workers = cfg.Pipeline.Workers
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		pipelineCfg.Workers = w
	}
	pipelineCfg.PageRange = cfg.Pipeline.PageRange
	if pages, _ := cmd.Flags().GetString("pages"); pages != "" {
		pipelineCfg.PageRange = pages
	}
	pipelineCfg.ContinueOnError = cfg.Pipeline.ContinueOnError

	return pipeline.New(pipelineCfg, nil,
		region.NewManager(managerCfg),
		ocr.NewService(ocrCfg, nil),
		nil)
}
