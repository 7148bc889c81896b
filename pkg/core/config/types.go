// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides data models for the renderer configuration.
//
// These models represent the structure of the YAML configuration file
// passed to the mustache command.
package config

// Config is the root configuration structure.
type Config struct {
	// ContentType selects how templates are escaped unless they carry a
	// CONTENT_TYPE pragma. Either "html" or "text".
	ContentType string `yaml:"content_type"`

	// Delimiters replaces the default {{ }} tag delimiters.
	Delimiters Delimiters `yaml:"delimiters"`

	// MaxDepth bounds partial nesting during rendering.
	MaxDepth int `yaml:"max_depth"`

	// StandardLibrary exposes the built-in helpers (HTMLEscape, each,
	// zip, ...) to every template.
	StandardLibrary *bool `yaml:"standard_library"`

	// LogTags logs every rendered tag at debug level.
	LogTags bool `yaml:"log_tags"`

	// Templates configures where templates are loaded from.
	Templates TemplatesConfig `yaml:"templates"`

	// Globals are values visible to every template.
	//
	// Example:
	//   site_name: Example
	Globals map[string]interface{} `yaml:"globals"`

	// PostProcessors run on every rendered output, in order.
	//
	// Example:
	//   - type: regex_replace
	//     params:
	//       pattern: "^[ ]+"
	//       replace: ""
	PostProcessors []PostProcessor `yaml:"post_processors"`

	// Logging configures logging behavior.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// Delimiters holds a custom tag delimiter pair.
type Delimiters struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// TemplatesConfig configures template sources.
type TemplatesConfig struct {
	// Directory is scanned for template files. Partial names resolve
	// relative to the including template.
	Directory string `yaml:"directory"`

	// Extension is appended to partial names when looking them up in
	// Directory.
	//
	// Default: mustache
	Extension string `yaml:"extension"`

	// Inline maps template names to template strings. Inline templates
	// take precedence over files with the same name.
	Inline map[string]string `yaml:"inline"`
}

// PostProcessor configures a single output post-processor.
type PostProcessor struct {
	// Type is one of regex_replace, trim_trailing_space or
	// collapse_blank_lines.
	Type string `yaml:"type"`

	// Params holds type-specific settings.
	Params map[string]string `yaml:"params"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is one of ERROR, WARNING, INFO, DEBUG.
	//
	// Default: INFO
	Level string `yaml:"level"`

	// Format is "text" (logfmt) or "json".
	//
	// Default: text
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled starts the metrics server while rendering.
	Enabled bool `yaml:"enabled"`

	// Address is the listen address of the metrics server.
	//
	// Default: :9090
	Address string `yaml:"address"`
}

// UseStandardLibrary reports whether the standard helpers are enabled.
// They are on unless explicitly disabled.
func (c *Config) UseStandardLibrary() bool {
	return c.StandardLibrary == nil || *c.StandardLibrary
}
