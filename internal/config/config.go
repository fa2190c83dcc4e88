// Package config provides configuration management for tidyframe verbs and pipelines
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for tidyframe operations
type Config struct {
	// Verb Configuration
	PreviewRows        int    `json:"preview_rows" yaml:"preview_rows"`                 // Rows rendered by Preview when n <= 0
	SampleSeed         int64  `json:"sample_seed" yaml:"sample_seed"`                   // Seed for SampleN (0 = unseeded)
	LeftSuffix         string `json:"left_suffix" yaml:"left_suffix"`                   // Suffix for overlapping left columns in MergeWith
	RightSuffix        string `json:"right_suffix" yaml:"right_suffix"`                 // Suffix for overlapping right columns in MergeWith
	MaxExpressionDepth int    `json:"max_expression_depth" yaml:"max_expression_depth"` // Nesting limit for expression strings

	// I/O Configuration
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter"` // Field delimiter for ReadCSV/WriteCSV

	// Debugging Configuration
	VerboseLogging  bool `json:"verbose_logging" yaml:"verbose_logging"`   // Log each pipeline step through slog.Default at info level
	TraceOperations bool `json:"trace_operations" yaml:"trace_operations"` // Record per-verb traces in pipelines
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultPreviewRows        = 10
	DefaultLeftSuffix         = "_x"
	DefaultRightSuffix        = "_y"
	DefaultMaxExpressionDepth = 64
	DefaultCSVDelimiter       = ","

	// EnvPrefix prefixes every environment variable read by LoadFromEnv
	EnvPrefix = "TIDYFRAME_"
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		PreviewRows:        DefaultPreviewRows,
		SampleSeed:         0, // Unseeded
		LeftSuffix:         DefaultLeftSuffix,
		RightSuffix:        DefaultRightSuffix,
		MaxExpressionDepth: DefaultMaxExpressionDepth,
		CSVDelimiter:       DefaultCSVDelimiter,

		// Debugging defaults (disabled)
		VerboseLogging:  false,
		TraceOperations: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.PreviewRows <= 0 {
		return fmt.Errorf("PreviewRows must be positive, got %d", c.PreviewRows)
	}

	if c.MaxExpressionDepth <= 0 {
		return fmt.Errorf("MaxExpressionDepth must be positive, got %d", c.MaxExpressionDepth)
	}

	if c.LeftSuffix == c.RightSuffix {
		return fmt.Errorf("LeftSuffix and RightSuffix must differ, both are %q", c.LeftSuffix)
	}

	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("CSVDelimiter must be a single character, got %q", c.CSVDelimiter)
	}

	switch r, _ := utf8.DecodeRuneInString(c.CSVDelimiter); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("CSVDelimiter %q is not allowed", c.CSVDelimiter)
	}

	return nil
}

// Delimiter returns CSVDelimiter as a rune
func (c Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	// Apply defaults for zero values
	if c.PreviewRows == 0 {
		c.PreviewRows = defaults.PreviewRows
	}
	if c.LeftSuffix == "" {
		c.LeftSuffix = defaults.LeftSuffix
	}
	if c.RightSuffix == "" {
		c.RightSuffix = defaults.RightSuffix
	}
	if c.MaxExpressionDepth == 0 {
		c.MaxExpressionDepth = defaults.MaxExpressionDepth
	}
	if c.CSVDelimiter == "" {
		c.CSVDelimiter = defaults.CSVDelimiter
	}

	// Note: SampleSeed and the boolean fields keep their zero values,
	// which are also their defaults

	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from TIDYFRAME_* environment variables on
// top of the defaults. Unparseable values are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	envInt("PREVIEW_ROWS", func(v int64) { config.PreviewRows = int(v) })
	envInt("SAMPLE_SEED", func(v int64) { config.SampleSeed = v })
	envInt("MAX_EXPRESSION_DEPTH", func(v int64) { config.MaxExpressionDepth = int(v) })
	envString("LEFT_SUFFIX", func(v string) { config.LeftSuffix = v })
	envString("RIGHT_SUFFIX", func(v string) { config.RightSuffix = v })
	envString("CSV_DELIMITER", func(v string) { config.CSVDelimiter = v })
	envBool("VERBOSE_LOGGING", func(v bool) { config.VerboseLogging = v })
	envBool("TRACE_OPERATIONS", func(v bool) { config.TraceOperations = v })

	return config
}

func envString(name string, set func(string)) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		set(val)
	}
}

func envInt(name string, set func(int64)) {
	envString(name, func(val string) {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			set(parsed)
		}
	})
}

func envBool(name string, set func(bool)) {
	envString(name, func(val string) {
		if parsed, err := strconv.ParseBool(val); err == nil {
			set(parsed)
		}
	})
}
