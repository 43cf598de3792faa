package config

import (
	"fmt"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/logger"
)

// Config is the root configuration for the adjudication service.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	Council       CouncilConfig       `yaml:"council" mapstructure:"council"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	Signer        SignerConfig        `yaml:"signer" mapstructure:"signer"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// JudgeConfig identifies one judge model on the council.
type JudgeConfig struct {
	// Name is the judge's display name (e.g. "claude", "gpt-4o").
	Name string `yaml:"name" mapstructure:"name"`
	// Model is the provider model ID used for the evaluation call.
	Model string `yaml:"model" mapstructure:"model"`
	// Temperature overrides the provider default when non-zero.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// CouncilConfig configures the judge council.
type CouncilConfig struct {
	Judges []JudgeConfig `yaml:"judges" mapstructure:"judges"`
	// MaxRetries is the per-judge retry budget.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// BaseDelay is the per-judge retry base delay.
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
}

// ApplyDefaults applies the council retry defaults. Judge calls are
// the most expensive and the most valuable to save.
func (c *CouncilConfig) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = 2 * time.Second
	}
}

// Validate validates council configuration.
func (c *CouncilConfig) Validate() error {
	if len(c.Judges) < 2 {
		return fmt.Errorf("council.judges requires at least 2 judges (got: %d)", len(c.Judges))
	}
	seen := make(map[string]bool, len(c.Judges))
	for i, j := range c.Judges {
		if j.Name == "" {
			return fmt.Errorf("council.judges[%d].name is required", i)
		}
		if j.Model == "" {
			return fmt.Errorf("council.judges[%d].model is required", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("council.judges[%d].name %q is duplicated", i, j.Name)
		}
		seen[j.Name] = true
	}
	return nil
}

// TranscriptionConfig configures audio transcription.
type TranscriptionConfig struct {
	// Provider selects the transcription backend by name.
	Provider string `yaml:"provider" mapstructure:"provider"`
	// MaxRetries is the per-chunk retry budget.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// BaseDelay is the per-chunk retry base delay.
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	// Concurrency caps in-flight chunk calls.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ApplyDefaults applies default values to transcription configuration.
func (c *TranscriptionConfig) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = time.Second
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
}

// Validate validates transcription configuration.
func (c *TranscriptionConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("transcription.concurrency must be at least 1 (got: %d)", c.Concurrency)
	}
	return nil
}

// SignerConfig configures verdict signing.
type SignerConfig struct {
	// Secret seeds the process signing key. Never logged, never persisted.
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// Validate validates signer configuration.
func (c *SignerConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("signer.secret is required")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("signer.secret must be at least 16 characters")
	}
	return nil
}

// StorageConfig configures verdict persistence.
type StorageConfig struct {
	// BasePath is the root directory for the local record store.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// ApplyDefaults applies default values to storage configuration.
func (c *StorageConfig) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = "./data/verdicts"
	}
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults applies default values to observability configuration.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
}

// ApplyDefaults applies default values to the whole configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "debate-judge"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Council.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Council.Validate(); err != nil {
		return err
	}
	if err := c.Transcription.Validate(); err != nil {
		return err
	}
	if err := c.Signer.Validate(); err != nil {
		return err
	}
	return nil
}
