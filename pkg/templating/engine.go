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
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mustache-engine/pkg/metrics"
	"mustache-engine/pkg/mustache"
)

// TemplateEngine provides template compilation and rendering capabilities.
// It pre-compiles all templates at initialization for early detection of
// syntax errors and missing partials.
//
// A TemplateEngine is safe for concurrent use.
type TemplateEngine struct {
	// contentType is the default content type of the templates
	contentType mustache.ContentType

	// repository compiles templates and resolves partials
	repository *mustache.Repository

	// rawTemplates stores the original template strings by name
	rawTemplates map[string]string

	// compiledTemplates stores pre-compiled templates by name
	compiledTemplates map[string]*mustache.Template

	postProcessors []PostProcessor
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// New creates a new TemplateEngine rendering HTML from the given templates.
// All templates are compiled during initialization. Templates can include
// each other with {{> name }} and extend each other with {{< name }}.
//
// Example:
//
//	templates := map[string]string{
//	    "greeting": "Hello {{ name }}!",
//	    "page":     "{{> greeting }} Welcome.",
//	}
//	engine, err := templating.New(templates)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(templates map[string]string) (*TemplateEngine, error) {
	return NewWithOptions(templates, Options{})
}

// NewWithFilters creates a new TemplateEngine with custom filters.
//
// Example:
//
//	filters := map[string]templating.FilterFunc{
//	    "b64decode": templating.B64Decode,
//	}
//	engine, err := templating.NewWithFilters(templates, filters)
func NewWithFilters(templates map[string]string, customFilters map[string]FilterFunc) (*TemplateEngine, error) {
	return NewWithOptions(templates, Options{Filters: customFilters})
}

// NewWithFiltersAndFunctions creates a new TemplateEngine with custom filters and global functions.
func NewWithFiltersAndFunctions(templates map[string]string, customFilters map[string]FilterFunc, customFunctions map[string]GlobalFunc) (*TemplateEngine, error) {
	return NewWithOptions(templates, Options{Filters: customFilters, Functions: customFunctions})
}

// NewWithOptions creates a new TemplateEngine from in-memory templates and,
// when opts.TemplateDir is set, the template files of a directory.
// In-memory templates shadow files with the same name.
func NewWithOptions(templates map[string]string, opts Options) (*TemplateEngine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "templating")

	repository, loader := newRepository(templates, opts, logger)

	names, err := loader.Names()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	engine := &TemplateEngine{
		contentType:       opts.ContentType,
		repository:        repository,
		rawTemplates:      make(map[string]string, len(names)),
		compiledTemplates: make(map[string]*mustache.Template, len(names)),
		postProcessors:    opts.PostProcessors,
		logger:            logger,
		metrics:           opts.Metrics,
	}

	for _, name := range names {
		id, ok := loader.TemplateID(name, "")
		if !ok {
			return nil, NewTemplateNotFoundError(name, names)
		}
		content, err := loader.TemplateString(id)
		if err != nil {
			return nil, NewCompilationError(name, "", err)
		}
		engine.rawTemplates[name] = content

		start := time.Now()
		compiled, err := repository.TemplateNamed(name)
		if engine.metrics != nil {
			engine.metrics.RecordCompile(time.Since(start).Seconds(), err == nil)
		}
		if err != nil {
			return nil, NewCompilationError(name, content, err)
		}

		engine.compiledTemplates[name] = compiled
	}

	if engine.metrics != nil {
		engine.metrics.SetTemplatesLoaded(len(engine.compiledTemplates))
	}
	logger.Debug("template engine initialized",
		"templates", len(engine.compiledTemplates),
		"content_type", opts.ContentType.String())

	return engine, nil
}

// newRepository builds a configured repository over the in-memory
// templates layered above opts.TemplateDir.
func newRepository(templates map[string]string, opts Options, logger *slog.Logger) (*mustache.Repository, *LayeredLoader) {
	var dirLayer mustache.DataSource
	if opts.TemplateDir != "" {
		dirLayer = mustache.NewDirectoryDataSource(opts.TemplateDir, opts.TemplateExtension)
	}
	loader := NewLayeredLoader(mustache.NewDictionaryDataSource(templates), dirLayer)

	repository := mustache.NewRepository(loader)
	configure(repository.Configure(), opts, logger)

	return repository, loader
}

// configure applies opts to the configuration of a repository.
func configure(b *mustache.ConfigurationBuilder, opts Options, logger *slog.Logger) {
	b.ContentType(opts.ContentType).Logger(logger)

	if opts.StartDelimiter != "" && opts.EndDelimiter != "" {
		b.Delimiters(opts.StartDelimiter, opts.EndDelimiter)
	}
	if opts.MaxDepth > 0 {
		b.MaxDepth(opts.MaxDepth)
	}
	if opts.StandardLibrary {
		b.ExtendBaseContext(mustache.StandardLibrary())
	}
	if opts.LogTags {
		b.ExtendBaseContext(mustache.NewRenderLogger(logger))
	}

	for name, value := range opts.Globals {
		b.RegisterInBaseContext(name, value)
	}
	for name, fn := range opts.Functions {
		b.RegisterInBaseContext(name, wrapGlobalFunction(fn))
	}
	for name, filter := range opts.Filters {
		b.RegisterInBaseContext(name, wrapCustomFilter(filter))
	}
}

// Render executes the named template with the provided data and returns
// the rendered output, after post-processing. Returns an error if the
// template does not exist or if rendering fails.
//
// Example:
//
//	output, err := engine.Render("greeting", map[string]interface{}{
//	    "name": "World",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(output) // Output: Hello World!
func (e *TemplateEngine) Render(templateName string, data interface{}) (string, error) {
	return e.render(e.logger.With("render_id", uuid.NewString()), templateName, data)
}

// RenderAll renders the named templates concurrently with the same data.
// It returns the outputs by template name, or the first error. Remaining
// renders are skipped once ctx is cancelled or a render fails.
func (e *TemplateEngine) RenderAll(ctx context.Context, templateNames []string, data interface{}) (map[string]string, error) {
	logger := e.logger.With("render_id", uuid.NewString())

	var mu sync.Mutex
	outputs := make(map[string]string, len(templateNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, name := range templateNames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			output, err := e.render(logger, name, data)
			if err != nil {
				return err
			}

			mu.Lock()
			outputs[name] = output
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (e *TemplateEngine) render(logger *slog.Logger, templateName string, data interface{}) (string, error) {
	template, exists := e.compiledTemplates[templateName]
	if !exists {
		return "", NewTemplateNotFoundError(templateName, e.TemplateNames())
	}

	start := time.Now()
	output, err := template.Render(data)
	if err != nil {
		err = NewRenderError(templateName, err)
	} else {
		output, err = e.postProcess(templateName, output)
	}
	duration := time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordRender(templateName, duration.Seconds(), err)
	}
	if err != nil {
		logger.Debug("template render failed",
			"template", templateName,
			"error", err)
		return "", err
	}

	if e.metrics != nil {
		e.metrics.RecordOutput(len(output))
	}
	logger.Debug("template rendered",
		"template", templateName,
		"bytes", len(output),
		"duration_ms", duration.Milliseconds())
	return output, nil
}

func (e *TemplateEngine) postProcess(templateName, output string) (string, error) {
	for i, processor := range e.postProcessors {
		processed, err := processor.Process(output)
		if err != nil {
			return "", NewPostProcessorError(templateName, i, err)
		}
		output = processed
	}
	return output, nil
}

// ContentType returns the default content type of the engine's templates.
func (e *TemplateEngine) ContentType() mustache.ContentType {
	return e.contentType
}

// Repository returns the repository the engine compiles templates with.
func (e *TemplateEngine) Repository() *mustache.Repository {
	return e.repository
}

// TemplateNames returns the sorted names of all available templates.
func (e *TemplateEngine) TemplateNames() []string {
	names := make([]string, 0, len(e.rawTemplates))
	for name := range e.rawTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTemplate returns true if a template with the given name exists.
func (e *TemplateEngine) HasTemplate(templateName string) bool {
	_, exists := e.compiledTemplates[templateName]
	return exists
}

// GetRawTemplate returns the original (uncompiled) template string for the given name.
// Returns an error if the template does not exist.
func (e *TemplateEngine) GetRawTemplate(templateName string) (string, error) {
	template, exists := e.rawTemplates[templateName]
	if !exists {
		return "", NewTemplateNotFoundError(templateName, e.TemplateNames())
	}
	return template, nil
}

// TemplateCount returns the number of templates in this engine.
func (e *TemplateEngine) TemplateCount() int {
	return len(e.compiledTemplates)
}

// String returns a string representation of the engine for debugging.
func (e *TemplateEngine) String() string {
	return fmt.Sprintf("TemplateEngine{content_type=%s, templates=%d}", e.contentType, e.TemplateCount())
}

// wrapCustomFilter wraps a FilterFunc into a mustache filter. The first
// argument of the filter call becomes the input, the others the arguments.
func wrapCustomFilter(customFilter FilterFunc) mustache.FilterFunc {
	return mustache.VariadicFilter(func(boxes []*mustache.Box) (any, error) {
		args := boxValues(boxes[1:])
		return customFilter(boxes[0].Value(), args...)
	})
}

// wrapGlobalFunction wraps a GlobalFunc into a box that is both a filter,
// for {{ fn(a, b) }}, and a render function, for {{ fn }}.
func wrapGlobalFunction(customFunc GlobalFunc) *mustache.Box {
	return mustache.NewBox(
		mustache.WithFilter(mustache.VariadicFilter(func(boxes []*mustache.Box) (any, error) {
			return customFunc(boxValues(boxes)...)
		})),
		mustache.WithRender(func(info mustache.RenderingInfo) (mustache.Rendering, error) {
			result, err := customFunc()
			if err != nil {
				return mustache.Rendering{}, err
			}
			return mustache.BoxValue(result).Render(info)
		}),
	)
}

func boxValues(boxes []*mustache.Box) []interface{} {
	values := make([]interface{}, len(boxes))
	for i, b := range boxes {
		values[i] = b.Value()
	}
	return values
}
