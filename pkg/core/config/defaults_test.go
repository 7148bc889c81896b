package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaults_AllUnset(t *testing.T) {
	cfg := &Config{}

	setDefaults(cfg)

	assert.Equal(t, DefaultContentType, cfg.ContentType)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultTemplateExtension, cfg.Templates.Extension)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, DefaultMetricsAddress, cfg.Metrics.Address)
}

func TestSetDefaults_AllSet(t *testing.T) {
	cfg := &Config{
		ContentType: "text",
		MaxDepth:    8,
		Templates:   TemplatesConfig{Extension: "html"},
		Logging:     LoggingConfig{Level: "DEBUG", Format: "json"},
		Metrics:     MetricsConfig{Address: ":9100"},
	}

	setDefaults(cfg)

	// Verify existing values are not overwritten
	assert.Equal(t, "text", cfg.ContentType)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "html", cfg.Templates.Extension)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
}

func TestSetDefaults_PartiallySet(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level: "ERROR", // Set
			// Format: "" (unset)
		},
	}

	setDefaults(cfg)

	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

func TestUseStandardLibrary(t *testing.T) {
	enabled, disabled := true, false

	assert.True(t, (&Config{}).UseStandardLibrary())
	assert.True(t, (&Config{StandardLibrary: &enabled}).UseStandardLibrary())
	assert.False(t, (&Config{StandardLibrary: &disabled}).UseStandardLibrary())

	cfg, err := LoadConfig("standard_library: false\n")
	assert.NoError(t, err)
	assert.False(t, cfg.UseStandardLibrary())
}
