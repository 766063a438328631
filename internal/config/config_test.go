package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, false},
		{"negative min area", func(c *Config) { c.Detection.MinRegionArea = -1 }, false},
		{"min area above max", func(c *Config) { c.Detection.MinRegionArea = 60000 }, false},
		{"threshold above one", func(c *Config) { c.Detection.MergeIoUThreshold = 1.5 }, false},
		{"dpi too low", func(c *Config) { c.OCR.DPI = 10 }, false},
		{"no languages", func(c *Config) { c.OCR.Languages = nil }, false},
		{"early stop out of range", func(c *Config) { c.OCR.EarlyStopConfidence = 150 }, false},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, false},
		{"xlsx format", func(c *Config) { c.Export.Format = "xlsx" }, true},
		{"csv format", func(c *Config) { c.Export.Format = "csv" }, false},
		{"zero file cap", func(c *Config) { c.Security.MaxFileMB = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMaxFileBytes(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(50<<20), cfg.MaxFileBytes())
	cfg.Security.MaxFileMB = 1
	assert.Equal(t, int64(1<<20), cfg.MaxFileBytes())
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extractor.yaml")
	content := []byte("log_level: debug\nocr:\n  dpi: 600\npipeline:\n  workers: 5\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 600, cfg.OCR.DPI)
	assert.Equal(t, 5, cfg.Pipeline.Workers)
	// Untouched keys keep defaults.
	assert.Equal(t, 0.5, cfg.Detection.MergeIoUThreshold)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := NewLoader().LoadWithFile("/nonexistent/extractor.yaml")
	assert.Error(t, err)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extractor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  dpi: 5\n"), 0o600))

	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extractor.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}
