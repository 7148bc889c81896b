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
	"regexp"
	"strings"
)

// RegexReplaceProcessor applies regex-based find/replace to template output.
//
// The processor operates line by line, so line-anchored patterns like
// ^[ ]+ match at the start of every line. A carriage return ending a line
// is not seen by the pattern and is kept.
//
// Example usage for indentation normalization:
//
//	processor, err := NewRegexReplaceProcessor("^[ ]+", "  ")
//	normalized, err := processor.Process(rendered)
type RegexReplaceProcessor struct {
	pattern *regexp.Regexp
	replace string
}

// NewRegexReplaceProcessor creates a new regex replace processor.
// replace may reference submatches with $1 or ${name}.
//
// Returns an error if the regex pattern is invalid.
func NewRegexReplaceProcessor(pattern, replace string) (*RegexReplaceProcessor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	return &RegexReplaceProcessor{
		pattern: re,
		replace: replace,
	}, nil
}

// Process applies the regex replacement to each line of the input.
func (p *RegexReplaceProcessor) Process(input string) (string, error) {
	if input == "" {
		return input, nil
	}

	lines := strings.Split(input, "\n")
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		body = p.pattern.ReplaceAllString(body, p.replace)
		if cr {
			body += "\r"
		}
		lines[i] = body
	}

	return strings.Join(lines, "\n"), nil
}
