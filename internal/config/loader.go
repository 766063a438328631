package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without
	// extension).
	ConfigFileName = "extractor"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "EXTRACTOR"
)

// Loader resolves configuration from files, environment variables and
// defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings are honored.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load resolves configuration from the search paths, environment and
// defaults, then validates it. A missing config file is fine; everything
// then comes from defaults and the environment.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return l.unmarshalAndValidate()
}

// LoadWithFile resolves configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configFile, err)
	}
	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Set overrides a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// ConfigFileUsed returns the path of the config file that was read.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/extractor")
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(configDir, "extractor"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "extractor"))
	}
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)
	l.v.SetDefault("template_file", defaults.TemplateFile)

	l.v.SetDefault("detection.east_model_path", defaults.Detection.EASTModelPath)
	l.v.SetDefault("detection.east_score_threshold", defaults.Detection.EASTScoreThreshold)
	l.v.SetDefault("detection.east_nms_threshold", defaults.Detection.EASTNMSThreshold)
	l.v.SetDefault("detection.min_region_area", defaults.Detection.MinRegionArea)
	l.v.SetDefault("detection.max_region_area", defaults.Detection.MaxRegionArea)
	l.v.SetDefault("detection.overlap_threshold", defaults.Detection.OverlapThreshold)
	l.v.SetDefault("detection.merge_iou_threshold", defaults.Detection.MergeIoUThreshold)
	l.v.SetDefault("detection.confidence_threshold", defaults.Detection.ConfidenceThreshold)

	l.v.SetDefault("ocr.languages", defaults.OCR.Languages)
	l.v.SetDefault("ocr.dpi", defaults.OCR.DPI)
	l.v.SetDefault("ocr.early_stop_confidence", defaults.OCR.EarlyStopConfidence)
	l.v.SetDefault("ocr.enable_cache", defaults.OCR.EnableCache)

	l.v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	l.v.SetDefault("pipeline.page_range", defaults.Pipeline.PageRange)
	l.v.SetDefault("pipeline.continue_on_error", defaults.Pipeline.ContinueOnError)

	l.v.SetDefault("export.format", defaults.Export.Format)
	l.v.SetDefault("export.file", defaults.Export.File)

	l.v.SetDefault("security.allowed_dirs", defaults.Security.AllowedDirs)
	l.v.SetDefault("security.max_file_mb", defaults.Security.MaxFileMB)
}

// GenerateDefaultConfigFile writes a config file populated with defaults.
func GenerateDefaultConfigFile(filename string) error {
	loader := &Loader{v: viper.New()}
	loader.setDefaults()
	if filename == "" {
		filename = "extractor.yaml"
	}
	return loader.v.WriteConfigAs(filename)
}
