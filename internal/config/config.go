package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey indicates the MISTRAL_API_KEY environment variable is unset.
var ErrMissingAPIKey = fmt.Errorf("MISTRAL_API_KEY environment variable not set")

// Config represents the application configuration
type Config struct {
	InputDir    string    `yaml:"input_dir"`
	OutputDir   string    `yaml:"output_dir"`
	Records     string    `yaml:"records"`
	LogFile     string    `yaml:"log_file"`
	LogLevel    string    `yaml:"log_level"`
	MetricsAddr string    `yaml:"metrics_addr"`
	OCR         OCR       `yaml:"ocr"`
	Retry       Retry     `yaml:"retry"`
	Converter   Converter `yaml:"converter"`
}

// OCR represents extraction service configuration
type OCR struct {
	APIKey     string `yaml:"-" env:"MISTRAL_API_KEY"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the OCR request timeout as a duration.
func (o OCR) Timeout() time.Duration {
	return time.Duration(o.TimeoutSec) * time.Second
}

// Retry represents the retry loop configuration
type Retry struct {
	MaxAttempts    int `yaml:"max_attempts"`
	BackoffMs      int `yaml:"backoff_ms"`
	SuccessPauseMs int `yaml:"success_pause_ms"`
}

// Backoff returns the initial inter-attempt delay as a duration.
func (r Retry) Backoff() time.Duration {
	return time.Duration(r.BackoffMs) * time.Millisecond
}

// SuccessPause returns the post-success pause as a duration.
func (r Retry) SuccessPause() time.Duration {
	return time.Duration(r.SuccessPauseMs) * time.Millisecond
}

// Converter represents secondary conversion configuration
type Converter struct {
	Enabled bool   `yaml:"enabled"`
	Pandoc  string `yaml:"pandoc"`
}

// Load loads configuration from file, command line flags and environment
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		InputDir:  "docs_import",
		OutputDir: "docs_exports",
		Records:   "processed_files.csv",
		LogFile:   "conversion.log",
		LogLevel:  "info",
		OCR: OCR{
			Endpoint:   "https://api.mistral.ai",
			Model:      "mistral-ocr-latest",
			TimeoutSec: 300,
		},
		Retry: Retry{
			MaxAttempts:    5,
			BackoffMs:      1000,
			SuccessPauseMs: 3000,
		},
		Converter: Converter{
			Enabled: true,
			Pandoc:  "pandoc",
		},
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with command line flags
	if err := loadFromFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	// The credential is read from the process environment only, never from
	// the config file or flags
	if err := env.Parse(&cfg.OCR); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	if flags.Changed("input-dir") {
		cfg.InputDir, _ = flags.GetString("input-dir")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("records") {
		cfg.Records, _ = flags.GetString("records")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("endpoint") {
		cfg.OCR.Endpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("model") {
		cfg.OCR.Model, _ = flags.GetString("model")
	}
	if flags.Changed("ocr-timeout-sec") {
		cfg.OCR.TimeoutSec, _ = flags.GetInt("ocr-timeout-sec")
	}
	if flags.Changed("retries") {
		cfg.Retry.MaxAttempts, _ = flags.GetInt("retries")
	}
	if flags.Changed("retry-backoff-ms") {
		cfg.Retry.BackoffMs, _ = flags.GetInt("retry-backoff-ms")
	}
	if flags.Changed("success-pause-ms") {
		cfg.Retry.SuccessPauseMs, _ = flags.GetInt("success-pause-ms")
	}
	if flags.Changed("docx") {
		cfg.Converter.Enabled, _ = flags.GetBool("docx")
	}
	if flags.Changed("pandoc") {
		cfg.Converter.Pandoc, _ = flags.GetString("pandoc")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	return nil
}

// Validate checks the configuration. A missing API key is reported as
// ErrMissingAPIKey so the caller can exit with a distinguished status before
// any file is touched.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OCR.APIKey) == "" {
		return ErrMissingAPIKey
	}

	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Records == "" {
		return fmt.Errorf("records path is required")
	}
	if c.OCR.Model == "" {
		return fmt.Errorf("OCR model is required")
	}

	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retries must be positive")
	}
	if c.Retry.BackoffMs <= 0 {
		return fmt.Errorf("retry backoff must be positive")
	}

	return nil
}
