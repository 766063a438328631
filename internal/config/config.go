// Package config loads application settings from files, environment
// variables and defaults.
package config

import (
	"fmt"
	"strings"
)

// Config is the complete application configuration for the extractor CLI
// and pipeline. It loads from configuration files, environment variables
// and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`
	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export" json:"export"`
	Security  SecurityConfig  `mapstructure:"security" yaml:"security" json:"security"`

	// TemplateFile optionally overrides the built-in document templates.
	TemplateFile string `mapstructure:"template_file" yaml:"template_file" json:"template_file"`
}

// DetectionConfig controls region detection.
type DetectionConfig struct {
	EASTModelPath       string  `mapstructure:"east_model_path" yaml:"east_model_path" json:"east_model_path"`
	EASTScoreThreshold  float64 `mapstructure:"east_score_threshold" yaml:"east_score_threshold" json:"east_score_threshold"`
	EASTNMSThreshold    float64 `mapstructure:"east_nms_threshold" yaml:"east_nms_threshold" json:"east_nms_threshold"`
	MinRegionArea       int     `mapstructure:"min_region_area" yaml:"min_region_area" json:"min_region_area"`
	MaxRegionArea       int     `mapstructure:"max_region_area" yaml:"max_region_area" json:"max_region_area"`
	OverlapThreshold    float64 `mapstructure:"overlap_threshold" yaml:"overlap_threshold" json:"overlap_threshold"`
	MergeIoUThreshold   float64 `mapstructure:"merge_iou_threshold" yaml:"merge_iou_threshold" json:"merge_iou_threshold"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
}

// OCRConfig controls text recognition.
type OCRConfig struct {
	Languages           []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	DPI                 int      `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	EarlyStopConfidence float64  `mapstructure:"early_stop_confidence" yaml:"early_stop_confidence" json:"early_stop_confidence"`
	EnableCache         bool     `mapstructure:"enable_cache" yaml:"enable_cache" json:"enable_cache"`
}

// PipelineConfig controls document orchestration.
type PipelineConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	PageRange       string `mapstructure:"page_range" yaml:"page_range" json:"page_range"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// ExportConfig controls spreadsheet output.
type ExportConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // json or xlsx
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// SecurityConfig controls filesystem input validation.
type SecurityConfig struct {
	AllowedDirs []string `mapstructure:"allowed_dirs" yaml:"allowed_dirs" json:"allowed_dirs"`
	MaxFileMB   int      `mapstructure:"max_file_mb" yaml:"max_file_mb" json:"max_file_mb"`
}

// DefaultConfig returns the configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Detection: DetectionConfig{
			EASTScoreThreshold:  0.5,
			EASTNMSThreshold:    0.4,
			MinRegionArea:       100,
			MaxRegionArea:       50000,
			OverlapThreshold:    0.3,
			MergeIoUThreshold:   0.5,
			ConfidenceThreshold: 0.6,
		},
		OCR: OCRConfig{
			Languages:           []string{"eng"},
			DPI:                 300,
			EarlyStopConfidence: 80,
			EnableCache:         true,
		},
		Pipeline: PipelineConfig{
			Workers:         3,
			ContinueOnError: true,
		},
		Export: ExportConfig{
			Format: "json",
		},
		Security: SecurityConfig{
			MaxFileMB: 50,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	d := c.Detection
	if d.MinRegionArea < 0 || d.MaxRegionArea < 0 || d.MinRegionArea > d.MaxRegionArea {
		return fmt.Errorf("invalid region area bounds [%d, %d]", d.MinRegionArea, d.MaxRegionArea)
	}
	for name, v := range map[string]float64{
		"east_score_threshold": d.EASTScoreThreshold,
		"east_nms_threshold":   d.EASTNMSThreshold,
		"overlap_threshold":    d.OverlapThreshold,
		"merge_iou_threshold":  d.MergeIoUThreshold,
		"confidence_threshold": d.ConfidenceThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("detection.%s must be in [0, 1], got %v", name, v)
		}
	}

	if c.OCR.DPI < 70 || c.OCR.DPI > 2400 {
		return fmt.Errorf("ocr.dpi must be in [70, 2400], got %d", c.OCR.DPI)
	}
	if c.OCR.EarlyStopConfidence < 0 || c.OCR.EarlyStopConfidence > 100 {
		return fmt.Errorf("ocr.early_stop_confidence must be in [0, 100], got %v", c.OCR.EarlyStopConfidence)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("ocr.languages must not be empty")
	}

	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 64 {
		return fmt.Errorf("pipeline.workers must be in [1, 64], got %d", c.Pipeline.Workers)
	}

	switch c.Export.Format {
	case "json", "xlsx":
	default:
		return fmt.Errorf("export.format must be json or xlsx, got %q", c.Export.Format)
	}

	if c.Security.MaxFileMB < 1 {
		return fmt.Errorf("security.max_file_mb must be positive, got %d", c.Security.MaxFileMB)
	}
	return nil
}

// MaxFileBytes returns the security size cap in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.Security.MaxFileMB) << 20
}
