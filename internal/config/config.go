// Package config loads the chart digitizer configuration from YAML files
// and the environment, filling in defaults for anything left unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "CHART_MCP_CONFIG"
	EnvLogLevel   = "CHART_MCP_LOG_LEVEL"
	EnvTessdata   = "CHART_MCP_TESSDATA"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Pipeline holds the digitization constants.
	Pipeline struct {
		Threshold          int     `yaml:"threshold"`
		RowRunThreshold    int     `yaml:"rowRunThreshold"`
		ColumnRunThreshold int     `yaml:"columnRunThreshold"`
		MergeDistance      int     `yaml:"mergeDistance"`
		NoiseFloor         int     `yaml:"noiseFloor"`
		WindowRatio        float64 `yaml:"windowRatio"`
		Tolerance          float64 `yaml:"tolerance"`

		// Invert treats dark pixels as foreground (dark bars on white).
		Invert bool `yaml:"invert"`

		// ColorDistance is the Lab distance a pixel may sit from the bar
		// color and still count as a bar when a bar color is given.
		ColorDistance float64 `yaml:"colorDistance"`
	} `yaml:"pipeline"`

	// OCR configures the Tesseract recognizer used for axis labels.
	OCR struct {
		Language string `yaml:"language"`

		// TessdataPrefix points Tesseract at its language data. Empty uses
		// the system default.
		TessdataPrefix string `yaml:"tessdataPrefix"`

		// MinConfidence drops tokens below this confidence (0.0 to 1.0).
		MinConfidence float64 `yaml:"minConfidence"`
	} `yaml:"ocr"`

	// View configures zoomed QA renders.
	View struct {
		Zoom float64 `yaml:"zoom"`

		// OutputSize is the side of the rendered square in pixels.
		OutputSize int `yaml:"outputSize"`

		// Smooth selects Lanczos resampling instead of nearest neighbor.
		Smooth bool `yaml:"smooth"`
	} `yaml:"view"`

	// Output controls logging and overlays.
	Output struct {
		// LogLevel is "info" or "debug".
		LogLevel string `yaml:"logLevel"`

		// OverlayColor is the hex color used to draw detected lines.
		OverlayColor string `yaml:"overlayColor"`

		// PointColor is the hex color used to mark digitized points.
		PointColor string `yaml:"pointColor"`

		// CacheSize is the number of decoded images kept in memory.
		CacheSize int `yaml:"cacheSize"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	p := chart.DefaultParams()
	cfg.Pipeline.Threshold = int(p.Threshold)
	cfg.Pipeline.RowRunThreshold = p.RowRunThreshold
	cfg.Pipeline.ColumnRunThreshold = p.ColumnRunThreshold
	cfg.Pipeline.MergeDistance = p.MergeDistance
	cfg.Pipeline.NoiseFloor = p.NoiseFloor
	cfg.Pipeline.WindowRatio = p.WindowRatio
	cfg.Pipeline.Tolerance = p.Tolerance
	cfg.Pipeline.ColorDistance = 0.25

	cfg.OCR.Language = "eng"
	cfg.OCR.MinConfidence = 0.5

	cfg.View.Zoom = 4
	cfg.View.OutputSize = 512

	cfg.Output.LogLevel = "info"
	cfg.Output.OverlayColor = "#ff0000"
	cfg.Output.PointColor = "#00a0ff"
	cfg.Output.CacheSize = 10

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// FromEnv loads a .env file from the working directory if present, then
// the YAML file named by CHART_MCP_CONFIG. CHART_MCP_LOG_LEVEL and
// CHART_MCP_TESSDATA override the file.
func FromEnv() (*Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	cfg, err := LoadConfig(os.Getenv(EnvConfigPath))
	if err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Output.LogLevel = v
	}
	if v := os.Getenv(EnvTessdata); v != "" {
		cfg.OCR.TessdataPrefix = v
	}
	return cfg, cfg.Validate()
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Output.LogLevel, "debug")
}

// Params converts the pipeline section to chart parameters.
func (c *Config) Params() chart.Params {
	return chart.Params{
		Threshold:          uint8(c.Pipeline.Threshold),
		RowRunThreshold:    c.Pipeline.RowRunThreshold,
		ColumnRunThreshold: c.Pipeline.ColumnRunThreshold,
		MergeDistance:      c.Pipeline.MergeDistance,
		NoiseFloor:         c.Pipeline.NoiseFloor,
		WindowRatio:        c.Pipeline.WindowRatio,
		Tolerance:          c.Pipeline.Tolerance,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Pipeline.Threshold < 0 || c.Pipeline.Threshold > 255 {
		return fmt.Errorf("pipeline.threshold %d outside 0-255", c.Pipeline.Threshold)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Pipeline.ColorDistance <= 0 {
		return fmt.Errorf("pipeline.colorDistance %g must be positive", c.Pipeline.ColorDistance)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("ocr.minConfidence %g outside 0-1", c.OCR.MinConfidence)
	}
	if c.View.Zoom < 1 {
		return fmt.Errorf("view.zoom %g must be at least 1", c.View.Zoom)
	}
	if c.View.OutputSize <= 0 {
		return fmt.Errorf("view.outputSize %d must be positive", c.View.OutputSize)
	}
	switch strings.ToLower(c.Output.LogLevel) {
	case "info", "debug":
	default:
		return fmt.Errorf("output.logLevel %q must be info or debug", c.Output.LogLevel)
	}
	if c.Output.CacheSize <= 0 {
		return fmt.Errorf("output.cacheSize %d must be positive", c.Output.CacheSize)
	}
	return nil
}
