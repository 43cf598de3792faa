package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOptions controls where configuration is loaded from.
type LoaderOptions struct {
	// ConfigFile is an explicit path to a YAML config file. When empty,
	// standard locations are searched.
	ConfigFile string
	// EnvFile is an explicit path to a .env file. When empty, ./.env is
	// loaded if it exists.
	EnvFile string
	// EnvPrefix namespaces environment overrides (default "JUDGE").
	EnvPrefix string
}

// Load reads configuration from a YAML file and the environment,
// applies defaults, and validates the result.
//
// Environment variables override file values using the prefix and
// underscore-separated paths, e.g. JUDGE_SIGNER_SECRET overrides
// signer.secret.
func Load(opts LoaderOptions) (*Config, error) {
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "JUDGE"
	}

	loadEnvFile(opts.EnvFile)

	v := viper.New()
	v.SetEnvPrefix(opts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	// Bind the keys env overrides must reach even without a config file.
	for _, key := range []string{"signer.secret", "transcription.provider", "logging.level"} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// loadEnvFile loads a .env file if present. Missing files are not an error.
func loadEnvFile(path string) {
	if path != "" {
		_ = godotenv.Load(path)
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// findConfigFile searches standard locations for config.yml.
func findConfigFile() string {
	searchPaths := []string{
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
