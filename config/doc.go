// Package config loads and validates adjudicator configuration from
// YAML files and environment variables (viper + godotenv).
//
// Every config struct follows the ApplyDefaults/Validate convention:
// defaults are filled before validation, and validation returns a
// descriptive error naming the offending key.
package config
