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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mustache-engine/pkg/templating"
)

var validateOutputFormat string

// validateCmd compiles every template and reports all failures.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every template compiles",
	Long: `Compile every configured template and report each one that fails, with
the failing line and hints. Referenced partials and parents must exist.

Example usage:
  mustache validate --dir ./templates
  mustache validate --config mustache.yaml --output json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutputFormat, "output", "o", "summary", "Output format: summary, json")
}

// validationReport is the JSON form of a validation run.
type validationReport struct {
	Valid  bool              `json:"valid"`
	Errors []validationEntry `json:"errors"`
}

type validationEntry struct {
	Template string `json:"template"`
	Error    string `json:"error"`
	Summary  string `json:"summary"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateOutputFormat != "summary" && validateOutputFormat != "json" {
		return fmt.Errorf("unknown output format %q (expected summary or json)", validateOutputFormat)
	}

	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts, err := engineOptions(cfg, logger, nil)
	if err != nil {
		return err
	}

	issues, err := templating.ValidateTemplates(cfg.Templates.Inline, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if validateOutputFormat == "json" {
		report := validationReport{Valid: len(issues) == 0, Errors: []validationEntry{}}
		for _, issue := range issues {
			report.Errors = append(report.Errors, validationEntry{
				Template: issue.TemplateName,
				Error:    issue.Err.Error(),
				Summary:  templating.FormatRenderErrorShort(issue.Err, issue.TemplateName),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, issue := range issues {
			fmt.Fprintln(out, templating.FormatRenderError(issue.Err, issue.TemplateName, issue.Source))
		}
		if len(issues) == 0 {
			fmt.Fprintln(out, "All templates are valid")
		}
	}

	if len(issues) > 0 {
		return fmt.Errorf("validation failed: %d template(s) with errors", len(issues))
	}
	return nil
}
