package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Success(t *testing.T) {
	yamlConfig := `
content_type: text
delimiters:
  start: "<%"
  end: "%>"
max_depth: 16

templates:
  directory: ./templates
  extension: html
  inline:
    greeting: "Hello {{name}}"

globals:
  site_name: Example

post_processors:
  - type: regex_replace
    params:
      pattern: "^[ ]+"
      replace: ""
  - type: trim_trailing_space

logging:
  level: DEBUG
  format: json

metrics:
  enabled: true
  address: "127.0.0.1:9100"
`

	cfg, err := parseConfig(yamlConfig)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "text", cfg.ContentType)
	assert.Equal(t, Delimiters{Start: "<%", End: "%>"}, cfg.Delimiters)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, "./templates", cfg.Templates.Directory)
	assert.Equal(t, "html", cfg.Templates.Extension)
	assert.Equal(t, "Hello {{name}}", cfg.Templates.Inline["greeting"])
	assert.Equal(t, "Example", cfg.Globals["site_name"])
	require.Len(t, cfg.PostProcessors, 2)
	assert.Equal(t, "regex_replace", cfg.PostProcessors[0].Type)
	assert.Equal(t, "^[ ]+", cfg.PostProcessors[0].Params["pattern"])
	assert.Equal(t, "trim_trailing_space", cfg.PostProcessors[1].Type)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Address)
}

func TestParseConfig_EmptyString(t *testing.T) {
	cfg, err := parseConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config YAML is empty")
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	cfg, err := parseConfig("templates: [unclosed")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")
}

func TestParseConfig_WrongType(t *testing.T) {
	_, err := parseConfig("max_depth: deep")
	assert.Error(t, err)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig("templates:\n  inline:\n    a: x\n")
	require.NoError(t, err)

	assert.Equal(t, DefaultContentType, cfg.ContentType)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultTemplateExtension, cfg.Templates.Extension)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, DefaultMetricsAddress, cfg.Metrics.Address)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.UseStandardLibrary())

	assert.NoError(t, ValidateStructure(cfg))
}

func TestLoadConfig_Error(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mustache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content_type: text\ntemplates:\n  directory: /srv\n"), 0o600))

	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTemplateDir, "/override")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.ContentType)
	assert.Equal(t, "/override", cfg.Templates.Directory, "environment wins over the file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DefaultTemplateExtension, cfg.Templates.Extension)
}

func TestLoadFile_NoPath(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultContentType, cfg.ContentType)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = LoadFile(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config YAML is empty")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:       "WARNING",
		EnvLogFormat:      "json",
		EnvContentType:    "text",
		EnvTemplateDir:    "/tpl",
		EnvMetricsAddress: ":9200",
		EnvMaxDepth:       "12",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := &Config{}
	require.NoError(t, applyEnv(cfg, lookup))

	assert.Equal(t, "WARNING", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "text", cfg.ContentType)
	assert.Equal(t, "/tpl", cfg.Templates.Directory)
	assert.Equal(t, ":9200", cfg.Metrics.Address)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 12, cfg.MaxDepth)
}

func TestApplyEnv_InvalidMaxDepth(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == EnvMaxDepth {
			return "many", true
		}
		return "", false
	}

	err := applyEnv(&Config{}, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxDepth)
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	lookup := func(string) (string, bool) { return "", true }

	cfg := &Config{ContentType: "text"}
	require.NoError(t, applyEnv(cfg, lookup))
	assert.Equal(t, "text", cfg.ContentType)
	assert.False(t, cfg.Metrics.Enabled)
}
