// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel       = "MUSTACHE_LOG_LEVEL"
	EnvLogFormat      = "MUSTACHE_LOG_FORMAT"
	EnvContentType    = "MUSTACHE_CONTENT_TYPE"
	EnvTemplateDir    = "MUSTACHE_TEMPLATE_DIR"
	EnvMetricsAddress = "MUSTACHE_METRICS_ADDR"
	EnvMaxDepth       = "MUSTACHE_MAX_DEPTH"
)

// LoadConfig parses YAML configuration and applies default values.
// This is the recommended function for loading configuration.
//
// It performs two operations atomically:
//  1. Parses YAML into Config struct
//  2. Applies default values to unset fields
//
// Example:
//
//	cfg, err := config.LoadConfig(yamlString)
//	if err != nil {
//	    return err
//	}
//	// cfg now has defaults applied and is ready for validation
func LoadConfig(configYAML string) (*Config, error) {
	cfg, err := parseConfig(configYAML)
	if err != nil {
		return nil, err
	}

	setDefaults(cfg)

	return cfg, nil
}

// LoadFile reads a YAML configuration file, applies environment overrides
// and then defaults. An empty path yields a default configuration.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		cfg, err = parseConfig(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	setDefaults(cfg)

	return cfg, nil
}

// parseConfig parses YAML configuration into a Config struct.
// This is a pure function that only parses YAML - it does not apply
// defaults, read the environment, or perform validation.
//
// Most callers should use LoadConfig() instead. This function is primarily
// useful for testing parse behavior independently from default application.
func parseConfig(configYAML string) (*Config, error) {
	if configYAML == "" {
		return nil, fmt.Errorf("config YAML is empty")
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(configYAML), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &cfg, nil
}

// applyEnv overrides fields from the environment. lookup has the signature
// of os.LookupEnv so tests can supply their own.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := lookup(EnvContentType); ok && v != "" {
		cfg.ContentType = v
	}
	if v, ok := lookup(EnvTemplateDir); ok && v != "" {
		cfg.Templates.Directory = v
	}
	if v, ok := lookup(EnvMetricsAddress); ok && v != "" {
		cfg.Metrics.Address = v
		cfg.Metrics.Enabled = true
	}
	if v, ok := lookup(EnvMaxDepth); ok && v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvMaxDepth, v)
		}
		cfg.MaxDepth = depth
	}
	return nil
}
