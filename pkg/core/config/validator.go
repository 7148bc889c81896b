package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// ValidateStructure performs basic structural validation on the configuration.
// Validates required fields, value ranges, and known enumerations.
// Does NOT validate template syntax.
func ValidateStructure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateContentType(cfg.ContentType); err != nil {
		return fmt.Errorf("content_type: %w", err)
	}

	if err := validateDelimiters(&cfg.Delimiters); err != nil {
		return fmt.Errorf("delimiters: %w", err)
	}

	if cfg.MaxDepth < 1 {
		return fmt.Errorf("max_depth: must be at least 1, got %d", cfg.MaxDepth)
	}

	if err := validateTemplatesConfig(&cfg.Templates); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	for i := range cfg.PostProcessors {
		if err := validatePostProcessor(&cfg.PostProcessors[i]); err != nil {
			return fmt.Errorf("post_processors[%d]: %w", i, err)
		}
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if err := validateMetricsConfig(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	return nil
}

func validateContentType(ct string) error {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "html", "text":
		return nil
	default:
		return fmt.Errorf("must be html or text, got %q", ct)
	}
}

// validateDelimiters validates a custom delimiter pair.
func validateDelimiters(d *Delimiters) error {
	if d.Start == "" && d.End == "" {
		return nil
	}
	if d.Start == "" || d.End == "" {
		return fmt.Errorf("start and end must be set together")
	}
	if strings.ContainsAny(d.Start+d.End, " \t\r\n=") {
		return fmt.Errorf("delimiters cannot contain whitespace or '='")
	}
	return nil
}

// validateTemplatesConfig validates template sources.
func validateTemplatesConfig(tc *TemplatesConfig) error {
	if tc.Directory == "" && len(tc.Inline) == 0 {
		return fmt.Errorf("either directory or inline templates must be configured")
	}

	for name := range tc.Inline {
		if name == "" {
			return fmt.Errorf("inline template name cannot be empty")
		}
	}

	if strings.ContainsAny(tc.Extension, "/\\") {
		return fmt.Errorf("extension cannot contain path separators, got %q", tc.Extension)
	}

	return nil
}

// validatePostProcessor validates a single post-processor entry.
func validatePostProcessor(pp *PostProcessor) error {
	switch pp.Type {
	case "regex_replace":
		pattern, ok := pp.Params["pattern"]
		if !ok {
			return fmt.Errorf("regex_replace requires 'pattern' parameter")
		}
		if _, ok := pp.Params["replace"]; !ok {
			return fmt.Errorf("regex_replace requires 'replace' parameter")
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	case "trim_trailing_space", "collapse_blank_lines":
	case "":
		return fmt.Errorf("type cannot be empty")
	default:
		return fmt.Errorf("unknown type %q", pp.Type)
	}
	return nil
}

// validateLoggingConfig validates the logging configuration.
func validateLoggingConfig(lc *LoggingConfig) error {
	switch strings.ToUpper(strings.TrimSpace(lc.Level)) {
	case "ERROR", "WARNING", "WARN", "INFO", "DEBUG":
	default:
		return fmt.Errorf("level must be ERROR, WARNING, INFO or DEBUG, got %q", lc.Level)
	}

	switch lc.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", lc.Format)
	}

	return nil
}

// validateMetricsConfig validates the metrics configuration.
func validateMetricsConfig(mc *MetricsConfig) error {
	if !mc.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(mc.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", mc.Address, err)
	}
	return nil
}
