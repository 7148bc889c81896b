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

package mustache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"mustache-engine/pkg/mustache/parser"
)

// Repository compiles templates and caches the templates loaded from its
// data source, so that partials are compiled once.
//
// The configuration is frozen the first time the repository compiles a
// template: later changes made through Configure are ignored.
//
// A Repository is safe for concurrent use. Compilation is serialized;
// rendering is not.
type Repository struct {
	dataSource DataSource
	builder    *ConfigurationBuilder

	configOnce sync.Once
	config     Configuration

	mu    sync.Mutex
	cache map[string]*TemplateAST

	// pending lists the ids cached since the outermost templateAST call
	// started. They are all evicted if it fails.
	pending []string
}

// NewRepository returns a repository loading partials from dataSource.
// A nil dataSource is allowed: such a repository only compiles strings,
// and partial tags fail with a TemplateNotFound error.
func NewRepository(dataSource DataSource) *Repository {
	return &Repository{
		dataSource: dataSource,
		builder:    NewConfigurationBuilder(),
		cache:      make(map[string]*TemplateAST),
	}
}

// NewRepositoryWithTemplates returns a repository over a map of template
// names to sources.
func NewRepositoryWithTemplates(templates map[string]string) *Repository {
	return NewRepository(NewDictionaryDataSource(templates))
}

// NewRepositoryWithDirectory returns a repository over the templates of
// dir. extension is appended to template names; "mustache" is the usual
// choice.
func NewRepositoryWithDirectory(dir, extension string) *Repository {
	return NewRepository(NewDirectoryDataSource(dir, extension))
}

// DataSource returns the data source of the repository.
func (r *Repository) DataSource() DataSource {
	return r.dataSource
}

// Configure returns the builder of the configuration. It has no effect
// once the repository has compiled a template.
func (r *Repository) Configure() *ConfigurationBuilder {
	return r.builder
}

// Configuration returns the configuration, freezing it.
func (r *Repository) Configuration() Configuration {
	r.configOnce.Do(func() {
		r.config = r.builder.Build()
	})
	return r.config
}

// Template compiles a template string. Partial tags load templates from
// the data source; partial names are resolved as top-level names.
func (r *Repository) Template(src string) (*Template, error) {
	config := r.Configuration()

	r.mu.Lock()
	defer r.mu.Unlock()

	ast, err := r.compile(src, "", config.delimiters, config.contentType)
	if err != nil {
		return nil, err
	}
	return newTemplate(r, ast, config.baseContext), nil
}

// TemplateNamed loads and compiles the template named name.
func (r *Repository) TemplateNamed(name string) (*Template, error) {
	config := r.Configuration()

	r.mu.Lock()
	defer r.mu.Unlock()

	ast, err := r.templateAST(name, "")
	if err != nil {
		return nil, err
	}
	return newTemplate(r, ast, config.baseContext), nil
}

// Reload empties the cache: templates will be loaded again from the data
// source. Templates already compiled are not affected.
func (r *Repository) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*TemplateAST)
}

// templateAST returns the cached AST of a named template, compiling it if
// needed. The caller holds r.mu.
//
// A placeholder enters the cache before compilation, so a template that
// includes itself, directly or through other partials, gets the
// placeholder. The placeholder is filled in place once compiled. On
// failure it is removed along with every partial cached while compiling
// it, since those may point at the unfilled placeholder.
func (r *Repository) templateAST(name, relativeTo string) (*TemplateAST, error) {
	if r.dataSource == nil {
		return nil, &Error{Kind: TemplateNotFound, Message: "Missing dataSource", TemplateID: relativeTo}
	}

	id, ok := r.dataSource.TemplateID(name, relativeTo)
	if !ok {
		if relativeTo != "" {
			return nil, &Error{
				Kind:       TemplateNotFound,
				Message:    fmt.Sprintf("Template not found: %q from %s", name, relativeTo),
				TemplateID: relativeTo,
			}
		}
		return nil, newTemplateNotFoundError(fmt.Sprintf("Template not found: %q", name))
	}

	if ast, ok := r.cache[id]; ok {
		return ast, nil
	}

	src, err := r.dataSource.TemplateString(id)
	if err != nil {
		var mErr *Error
		if errors.As(err, &mErr) {
			return nil, err
		}
		return nil, &Error{Kind: TemplateNotFound, Message: "Could not load template", TemplateID: id, Cause: err}
	}

	placeholder := newPlaceholderAST()
	r.cache[id] = placeholder
	mark := len(r.pending)
	r.pending = append(r.pending, id)

	config := r.Configuration()
	compiled, err := r.compile(src, id, config.delimiters, config.contentType)
	if err != nil {
		for _, pendingID := range r.pending[mark:] {
			delete(r.cache, pendingID)
		}
		r.pending = r.pending[:mark]
		return nil, err
	}
	placeholder.fill(compiled)
	if mark == 0 {
		r.pending = r.pending[:0]
	}
	return placeholder, nil
}

// compile turns a template string into an AST. The caller holds r.mu.
func (r *Repository) compile(src, templateID string, delimiters Delimiters, contentType ContentType) (*TemplateAST, error) {
	start := time.Now()
	c := newCompiler(r, templateID, contentType)
	parser.Tokenize(src, templateID, delimiters, c)
	ast, err := c.templateAST()

	logger := r.Configuration().logger
	if err != nil {
		logger.Debug("template compilation failed",
			"template_id", templateID,
			"error", err)
		return nil, err
	}
	logger.Debug("template compiled",
		"template_id", templateID,
		"content_type", ast.contentType.String(),
		"duration_ms", time.Since(start).Milliseconds())
	return ast, nil
}

// compileDynamic compiles a string produced while rendering, such as the
// result of a lambda. Partial tags resolve relative to baseTemplateID.
// The result is not cached.
func (r *Repository) compileDynamic(src, baseTemplateID string, delimiters Delimiters, contentType ContentType) (*TemplateAST, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compile(src, baseTemplateID, delimiters, contentType)
}
