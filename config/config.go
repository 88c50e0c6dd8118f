package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-seq/algorithms/blocking"
	"github.com/RyanBlaney/sonido-seq/algorithms/sequence"
	"github.com/RyanBlaney/sonido-seq/algorithms/stats"
	"github.com/RyanBlaney/sonido-seq/export"
	"github.com/RyanBlaney/sonido-seq/logging"
)

// Export backends
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Config is the complete pipeline configuration
type Config struct {
	AudioDir string `json:"audio_dir" yaml:"audio_dir"`

	// Blocking and sequencing
	BlockSize int `json:"block_size" yaml:"block_size"`
	SeqLen    int `json:"seq_len" yaml:"seq_len"`

	// TargetSampleRate resamples every file when non-zero
	TargetSampleRate int `json:"target_sample_rate" yaml:"target_sample_rate"`

	// StdFloor is the minimum per-coefficient standard deviation
	StdFloor float64 `json:"std_floor" yaml:"std_floor"`

	Export  ExportConfig  `json:"export" yaml:"export"`
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ExportConfig selects where the four dataset artifacts are written
type ExportConfig struct {
	Label   string   `json:"label" yaml:"label"`
	Backend string   `json:"backend" yaml:"backend"` // "local", "s3"
	Dir     string   `json:"dir" yaml:"dir"`
	S3      S3Config `json:"s3" yaml:"s3"`
}

// S3Config addresses an S3-compatible bucket. Credentials come from the
// standard AWS_* environment variables.
type S3Config struct {
	Bucket       string `json:"bucket" yaml:"bucket"`
	Prefix       string `json:"prefix" yaml:"prefix"`
	Region       string `json:"region" yaml:"region"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint"`
	UsePathStyle bool   `json:"use_path_style" yaml:"use_path_style"`
}

// InspectConfig controls the optional per-file diagnostic plots
type InspectConfig struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	PadLength int  `json:"pad_length" yaml:"pad_length"` // zeros appended for the padded spectrum
	Width     int  `json:"width" yaml:"width"`
	Decibels  bool `json:"decibels" yaml:"decibels"` // draw spectra in dB
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	Color bool   `json:"color" yaml:"color"`
}

// DefaultConfig returns the reference pipeline settings
func DefaultConfig() *Config {
	return &Config{
		AudioDir:         "./Sample Audio/",
		BlockSize:        blocking.DefaultBlockSize,
		SeqLen:           sequence.DefaultSeqLen,
		TargetSampleRate: 0, // keep native rate
		StdFloor:         stats.DefaultStdFloor,
		Export: ExportConfig{
			Label:   export.DefaultLabel,
			Backend: BackendLocal,
			Dir:     ".",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Inspect: InspectConfig{
			Enabled:   false,
			PadLength: 1000000,
			Width:     72,
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.SeqLen <= 0 {
		return fmt.Errorf("seq_len must be positive, got %d", c.SeqLen)
	}
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("target_sample_rate must not be negative, got %d", c.TargetSampleRate)
	}
	if c.StdFloor <= 0 {
		return fmt.Errorf("std_floor must be positive, got %g", c.StdFloor)
	}
	if c.Export.Label == "" {
		return fmt.Errorf("export.label must not be empty")
	}

	switch c.Export.Backend {
	case BackendLocal:
		if c.Export.Dir == "" {
			return fmt.Errorf("export.dir must be set for the local backend")
		}
	case BackendS3:
		if c.Export.S3.Bucket == "" {
			return fmt.Errorf("export.s3.bucket must be set for the s3 backend")
		}
		if c.Export.S3.Region == "" {
			return fmt.Errorf("export.s3.region must be set for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown export.backend %q (want %q or %q)", c.Export.Backend, BackendLocal, BackendS3)
	}

	if c.Inspect.PadLength < 0 {
		return fmt.Errorf("inspect.pad_length must not be negative, got %d", c.Inspect.PadLength)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}
