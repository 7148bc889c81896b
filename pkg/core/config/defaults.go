package config

// Default values for configuration fields.
const (
	// DefaultContentType is the content type of templates without a pragma.
	DefaultContentType = "html"

	// DefaultTemplateExtension is appended to partial names in template directories.
	DefaultTemplateExtension = "mustache"

	// DefaultMaxDepth is the default partial nesting limit.
	DefaultMaxDepth = 256

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "INFO"

	// DefaultLogFormat is the default log output format.
	DefaultLogFormat = "text"

	// DefaultMetricsAddress is the default listen address for Prometheus metrics.
	DefaultMetricsAddress = ":9090"
)

// setDefaults applies default values to unset configuration fields.
// This modifies the config in-place and should be called after parsing
// the configuration and before validation.
//
// Most callers should use LoadConfig() instead. This function is primarily
// useful for testing default application independently from YAML parsing.
func setDefaults(cfg *Config) {
	if cfg.ContentType == "" {
		cfg.ContentType = DefaultContentType
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	// Templates defaults
	if cfg.Templates.Extension == "" {
		cfg.Templates.Extension = DefaultTemplateExtension
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	// Note: Enabled defaults to false (zero value) which is correct
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}
}
