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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the template engine metrics.
//
// Create one instance per engine. When the engine is discarded, its
// registry and metrics are garbage collected with it.
type Metrics struct {
	// Compilation metrics
	CompileDuration   prometheus.Histogram
	TemplatesCompiled prometheus.Counter
	CompileErrors     prometheus.Counter
	TemplatesLoaded   prometheus.Gauge

	// Rendering metrics
	RenderDuration *prometheus.HistogramVec
	Renders        *prometheus.CounterVec
	RenderedBytes  prometheus.Counter
}

// New creates all engine metrics and registers them with registry.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	m := metrics.New(registry)
//	engine, err := templating.NewWithOptions(templates, templating.Options{Metrics: m})
func New(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		CompileDuration: NewHistogramWithBuckets(
			registry,
			"mustache_compile_duration_seconds",
			"Time spent compiling templates",
			RenderDurationBuckets(),
		),
		TemplatesCompiled: NewCounter(
			registry,
			"mustache_templates_compiled_total",
			"Total number of successfully compiled templates",
		),
		CompileErrors: NewCounter(
			registry,
			"mustache_compile_errors_total",
			"Total number of failed template compilations",
		),
		TemplatesLoaded: NewGauge(
			registry,
			"mustache_templates_loaded",
			"Number of named templates held by the engine",
		),

		RenderDuration: NewHistogramVecWithBuckets(
			registry,
			"mustache_render_duration_seconds",
			"Time spent rendering templates",
			[]string{"template"},
			RenderDurationBuckets(),
		),
		Renders: NewCounterVec(
			registry,
			"mustache_renders_total",
			"Total number of renders by template and outcome",
			[]string{"template", "status"},
		),
		RenderedBytes: NewCounter(
			registry,
			"mustache_rendered_bytes_total",
			"Total number of bytes produced by successful renders",
		),
	}
}

// RecordCompile records a template compilation.
func (m *Metrics) RecordCompile(durationSeconds float64, success bool) {
	m.CompileDuration.Observe(durationSeconds)
	if success {
		m.TemplatesCompiled.Inc()
	} else {
		m.CompileErrors.Inc()
	}
}

// RecordRender records a render of the named template. err is the render
// error, nil on success.
func (m *Metrics) RecordRender(template string, durationSeconds float64, err error) {
	m.RenderDuration.WithLabelValues(template).Observe(durationSeconds)

	status := "success"
	if err != nil {
		status = "error"
	}
	m.Renders.WithLabelValues(template, status).Inc()
}

// RecordOutput adds the size of a rendered output.
func (m *Metrics) RecordOutput(bytes int) {
	m.RenderedBytes.Add(float64(bytes))
}

// SetTemplatesLoaded sets the number of templates held by the engine.
func (m *Metrics) SetTemplatesLoaded(count int) {
	m.TemplatesLoaded.Set(float64(count))
}
