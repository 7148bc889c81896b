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

// Package metrics provides Prometheus metrics for the template engine and
// an HTTP server exposing them.
//
// Every constructor takes the registry to register with. Pass an instance
// registry (prometheus.NewRegistry()), never prometheus.DefaultRegisterer,
// so that metrics live exactly as long as the engine that records them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewCounter creates and registers a counter metric.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	compiled := metrics.NewCounter(registry, "templates_compiled_total", "Compiled templates")
//	compiled.Inc()
func NewCounter(registry prometheus.Registerer, name, help string) prometheus.Counter {
	return promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

// NewCounterVec creates and registers a counter vector with labels.
//
// Example:
//
//	renders := metrics.NewCounterVec(registry, "renders_total", "Renders", []string{"template", "status"})
//	renders.WithLabelValues("index", "success").Inc()
func NewCounterVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// NewGauge creates and registers a gauge metric.
func NewGauge(registry prometheus.Registerer, name, help string) prometheus.Gauge {
	return promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}

// NewHistogramWithBuckets creates and registers a histogram with custom buckets.
func NewHistogramWithBuckets(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	})
}

// NewHistogramVecWithBuckets creates and registers a histogram vector with
// custom buckets.
//
// Example:
//
//	duration := metrics.NewHistogramVecWithBuckets(
//	    registry,
//	    "render_duration_seconds",
//	    "Render duration by template",
//	    []string{"template"},
//	    metrics.RenderDurationBuckets(),
//	)
//	duration.WithLabelValues("index").Observe(0.002)
func NewHistogramVecWithBuckets(registry prometheus.Registerer, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// RenderDurationBuckets returns histogram buckets for template compile and
// render durations in seconds, from 100µs to 2.5s.
//
// Buckets: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5]
func RenderDurationBuckets() []float64 {
	return []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5}
}
