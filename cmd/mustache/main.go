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

// Package main provides the CLI entrypoint for the mustache renderer.
//
// Settings are resolved in this order, highest priority first:
//
//   - command-line flags
//   - environment variables (MUSTACHE_LOG_LEVEL, MUSTACHE_TEMPLATE_DIR, ...)
//   - the YAML file given with --config
//   - defaults
//
// The serve command runs until receiving SIGTERM or SIGINT, at which point it
// performs graceful shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/spf13/cobra"
)

var (
	rootConfigFile  string
	rootLogLevel    string
	rootLogFormat   string
	rootTemplateDir string
	rootExtension   string
	rootContentType string
	rootMaxDepth    int
)

// rootCmd is the base command; it only carries the shared flags.
var rootCmd = &cobra.Command{
	Use:   "mustache",
	Short: "Render Mustache templates",
	Long: `Render Mustache templates with partials, template inheritance, filters
and HTML/text content types.

Templates come from a directory (--dir) and from the inline section of the
configuration file. Inline templates shadow files with the same name.

Example usage:
  # Render one template to stdout
  mustache render page --dir ./templates --data data.yaml

  # Render every template into ./out
  mustache render --config mustache.yaml --data data.json --out ./out

  # Check every template compiles
  mustache validate --dir ./templates

  # Serve templates over HTTP
  mustache serve --dir ./templates --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootConfigFile, "config", "c", "", "Path to YAML configuration file")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level: ERROR, WARNING, INFO, DEBUG (env: MUSTACHE_LOG_LEVEL)")
	flags.StringVar(&rootLogFormat, "log-format", "", "Log format: text or json (env: MUSTACHE_LOG_FORMAT)")
	flags.StringVarP(&rootTemplateDir, "dir", "t", "", "Template directory (env: MUSTACHE_TEMPLATE_DIR)")
	flags.StringVar(&rootExtension, "ext", "", "Template file extension (default \"mustache\")")
	flags.StringVar(&rootContentType, "content-type", "", "Default content type: html or text (env: MUSTACHE_CONTENT_TYPE)")
	flags.IntVar(&rootMaxDepth, "max-depth", 0, "Maximum partial nesting depth (env: MUSTACHE_MAX_DEPTH)")

	rootCmd.AddCommand(renderCmd, validateCmd, serveCmd)
}

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel() called explicitly before exit
	}
}
