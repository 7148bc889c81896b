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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var (
	renderDataFile string
	renderOutDir   string
	renderOutExt   string
)

// renderCmd renders templates once.
var renderCmd = &cobra.Command{
	Use:   "render [template...]",
	Short: "Render templates to stdout or a directory",
	Long: `Render one or more templates with data loaded from a JSON, YAML or HCL file.

Without template arguments every template is rendered. A single template is
written to stdout unless --out is given; several templates require --out.
Templates render concurrently.

Example usage:
  mustache render page --dir ./templates --data site.yaml
  mustache render --dir ./templates --data site.hcl --out ./public --out-ext .html`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderDataFile, "data", "d", "", "Data file (.json, .yaml, .yml, .hcl), http(s) URL, or - for JSON on stdin")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "Output directory")
	renderCmd.Flags().StringVar(&renderOutExt, "out-ext", "", "Extension appended to output file names")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	source, err := openData(renderDataFile, logger)
	if err != nil {
		return err
	}
	data, err := source.Get(cmd.Context())
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = engine.TemplateNames()
	}
	if len(names) == 0 {
		return fmt.Errorf("no templates to render")
	}
	if renderOutDir == "" && len(names) > 1 {
		return fmt.Errorf("rendering %d templates requires --out", len(names))
	}

	results, err := engine.RenderAll(cmd.Context(), names, data)
	if err != nil {
		return describeTemplateError(err, templateSource(cfg))
	}

	if renderOutDir == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), results[names[0]])
		return err
	}

	written := make([]string, 0, len(results))
	for name, output := range results {
		path := filepath.Join(renderOutDir, filepath.FromSlash(name)+renderOutExt)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)

	logger.Info("Templates rendered", "count", len(written), "out", renderOutDir)
	for _, path := range written {
		logger.Debug("Wrote file", "path", path)
	}

	return nil
}
