// Package config defines the pipeline configuration and how it is loaded.
//
// Conventions:
// - New(ctx) builds a Config with defaults; Load layers file and env on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Blob driver names accepted by BlobDriver. Empty disables publishing.
var blobDrivers = map[string]struct{}{"": {}, "fs": {}, "s3": {}, "memory": {}}

var logLevels = map[string]struct{}{"": {}, "debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RawFile is the wide-format CSV export to prepare.
	RawFile string `koanf:"raw_file"`

	// PreparedDir is the root under which each recipe writes <dir>/<name>/.
	PreparedDir string `koanf:"prepared_dir"`

	// Recipes names the recipes to run, in order.
	Recipes []string `koanf:"recipes"`

	// ContinueOnError keeps running the remaining recipes after a failure.
	ContinueOnError bool `koanf:"continue_on_error"`

	// TimeDecimals > 0 rounds raw times before joining; 0 joins exactly.
	TimeDecimals int `koanf:"time_decimals"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// BlobDriver selects where prepared directories are published: fs, s3, memory.
	BlobDriver string `koanf:"blob_driver"`
	BlobRoot   string `koanf:"blob_root"`

	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3PathStyle bool   `koanf:"s3_path_style"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		RawFile:     "data/raw/hooman.csv",
		PreparedDir: "data/prepared",
		Recipes:     []string{"hooman"},
		BlobRoot:    "data/published",
		S3Region:    "us-east-1",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.RawFile) == "":
		return fmt.Errorf("%w: raw_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.PreparedDir) == "":
		return fmt.Errorf("%w: prepared_dir must not be empty", ErrInvalidConfig)
	case len(c.Recipes) == 0:
		return fmt.Errorf("%w: at least one recipe is required", ErrInvalidConfig)
	case c.TimeDecimals < 0:
		return fmt.Errorf("%w: time_decimals must be >= 0, got %d", ErrInvalidConfig, c.TimeDecimals)
	}
	for _, r := range c.Recipes {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: empty recipe name", ErrInvalidConfig)
		}
	}
	if _, ok := blobDrivers[c.BlobDriver]; !ok {
		return fmt.Errorf("%w: unknown blob_driver %q", ErrInvalidConfig, c.BlobDriver)
	}
	if c.BlobDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("%w: s3_bucket is required for the s3 driver", ErrInvalidConfig)
	}
	if _, ok := logLevels[strings.ToLower(strings.TrimSpace(c.LogLevel))]; !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
