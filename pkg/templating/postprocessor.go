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

package templating

import (
	"fmt"
	"strings"
)

// PostProcessor processes rendered template output before it is returned.
//
// Post-processors are applied in sequence after template rendering completes.
// Each processor receives the output of the previous processor (or the
// rendered template for the first processor).
type PostProcessor interface {
	// Process applies transformation to the input string.
	// Returns the transformed output or an error if processing fails.
	Process(input string) (string, error)
}

// PostProcessorType identifies the type of post-processor.
type PostProcessorType string

const (
	// PostProcessorTypeRegexReplace applies regex-based find/replace on each line.
	PostProcessorTypeRegexReplace PostProcessorType = "regex_replace"

	// PostProcessorTypeTrimTrailingSpace removes spaces and tabs at the end of lines.
	PostProcessorTypeTrimTrailingSpace PostProcessorType = "trim_trailing_space"

	// PostProcessorTypeCollapseBlankLines replaces runs of blank lines with
	// a single blank line. Section tags alone on their line leave blank
	// lines behind, since standalone lines are not stripped.
	PostProcessorTypeCollapseBlankLines PostProcessorType = "collapse_blank_lines"
)

// PostProcessorConfig defines configuration for a post-processor.
// The Type field determines which processor implementation to use,
// and Params contains type-specific configuration.
type PostProcessorConfig struct {
	// Type specifies which post-processor to use.
	Type PostProcessorType `yaml:"type" json:"type"`

	// Params contains type-specific configuration as key-value pairs.
	// For regex_replace:
	//   - pattern: Regular expression pattern to match (required)
	//   - replace: Replacement string (required)
	Params map[string]string `yaml:"params" json:"params"`
}

// NewPostProcessor creates a post-processor instance from configuration.
//
// Returns an error if:
//   - The processor type is unknown
//   - Required parameters are missing
//   - Parameters are invalid (e.g., invalid regex pattern)
func NewPostProcessor(config PostProcessorConfig) (PostProcessor, error) {
	switch config.Type {
	case PostProcessorTypeRegexReplace:
		pattern, ok := config.Params["pattern"]
		if !ok {
			return nil, fmt.Errorf("regex_replace processor requires 'pattern' parameter")
		}

		replace, ok := config.Params["replace"]
		if !ok {
			return nil, fmt.Errorf("regex_replace processor requires 'replace' parameter")
		}

		return NewRegexReplaceProcessor(pattern, replace)

	case PostProcessorTypeTrimTrailingSpace:
		return NewRegexReplaceProcessor(`[ \t]+$`, "")

	case PostProcessorTypeCollapseBlankLines:
		return &CollapseBlankLinesProcessor{}, nil

	default:
		return nil, fmt.Errorf("unknown post-processor type: %s", config.Type)
	}
}

// NewPostProcessors creates post-processors from a list of configurations.
func NewPostProcessors(configs []PostProcessorConfig) ([]PostProcessor, error) {
	processors := make([]PostProcessor, 0, len(configs))
	for i, config := range configs {
		processor, err := NewPostProcessor(config)
		if err != nil {
			return nil, fmt.Errorf("post_processors[%d]: %w", i, err)
		}
		processors = append(processors, processor)
	}
	return processors, nil
}

// CollapseBlankLinesProcessor replaces runs of blank lines with a single
// blank line. Lines holding only spaces and tabs count as blank.
type CollapseBlankLinesProcessor struct{}

// Process implements PostProcessor.
func (p *CollapseBlankLinesProcessor) Process(input string) (string, error) {
	lines := strings.Split(input, "\n")
	out := lines[:0]
	previousBlank := false
	for i, line := range lines {
		blank := strings.TrimLeft(line, " \t") == ""
		// The last element is what follows the final newline.
		if blank && previousBlank && i < len(lines)-1 {
			continue
		}
		out = append(out, line)
		previousBlank = blank
	}
	return strings.Join(out, "\n"), nil
}
