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
	"math"
	"runtime"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mustache-engine/pkg/metrics"
	"mustache-engine/pkg/renderserver"
)

// DefaultServeAddress is the default listen address of the render server.
const DefaultServeAddress = ":8080"

var (
	serveAddr        string
	serveDataFile    string
	serveMetricsAddr string
)

// serveCmd serves rendered templates over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered templates over HTTP",
	Long: `Compile the configured templates and serve them over HTTP.

GET /render/{name} renders with the --data file or URL, POST /render/{name}
renders with the JSON request body. Remote data is revalidated with
conditional requests and the last valid document keeps being served when the
source fails. GET /templates lists the templates.

Prometheus metrics are served on a separate address when metrics are enabled
in the configuration or --metrics-addr is given.

Example usage:
  mustache serve --dir ./templates --data defaults.yaml --addr :8080 --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", DefaultServeAddress, "Render server listen address")
	serveCmd.Flags().StringVarP(&serveDataFile, "data", "d", "", "Data for GET requests: a file (.json, .yaml, .yml, .hcl) or an http(s) URL, revalidated on every request")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Metrics listen address (env: MUSTACHE_METRICS_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = serveMetricsAddr
	}

	var gomemlimit string
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		gomemlimit = fmt.Sprintf("%d bytes (%.2f MiB)", limit, float64(limit)/(1024*1024))
	} else {
		gomemlimit = "unlimited"
	}

	logger.Info("Mustache server starting",
		"addr", serveAddr,
		"metrics_enabled", cfg.Metrics.Enabled,
		"content_type", cfg.ContentType,
		"gomaxprocs", runtime.GOMAXPROCS(0),
		"gomemlimit", gomemlimit)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	engine, err := newEngine(cfg, logger, m)
	if err != nil {
		return err
	}

	source, err := openData(serveDataFile, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(cmd.Context())

	server := renderserver.NewServer(serveAddr, engine, source.Get, logger)
	g.Go(func() error {
		return server.Start(gctx)
	})

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Address, registry, logger)
		g.Go(func() error {
			return metricsServer.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Mustache server shutdown complete")
	return nil
}
