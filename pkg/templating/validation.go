package templating

import (
	"fmt"
	"log/slog"

	"mustache-engine/pkg/mustache"
)

// ValidationIssue is a template that failed to compile.
type ValidationIssue struct {
	TemplateName string
	Source       string
	Err          error
}

// ValidateTemplate validates template syntax without executing it.
//
// Partial and parent tags are accepted whatever the name they reference:
// only the syntax of templateStr itself is checked. Use
// TemplateEngine.ValidateTemplate to also check that referenced templates
// exist.
//
// Example:
//
//	err := templating.ValidateTemplate(templateStr, mustache.HTML)
//	if err != nil {
//	    log.Printf("Invalid template: %v", err)
//	}
func ValidateTemplate(templateStr string, contentType mustache.ContentType) error {
	repository := mustache.NewRepository(syntaxOnlyDataSource{})
	repository.Configure().ContentType(contentType)

	if _, err := repository.Template(templateStr); err != nil {
		return NewCompilationError("template", templateStr, err)
	}
	return nil
}

// ValidateTemplate compiles templateStr against the engine's templates:
// referenced partials and parents must exist. The template is not kept.
func (e *TemplateEngine) ValidateTemplate(templateStr string) error {
	if _, err := e.repository.Template(templateStr); err != nil {
		return NewCompilationError("template", templateStr, err)
	}
	return nil
}

// ValidateTemplates compiles every template visible through templates and
// opts.TemplateDir, and reports each one that fails. Unlike NewWithOptions
// it does not stop at the first error. The returned error is only set when
// the templates cannot be listed.
func ValidateTemplates(templates map[string]string, opts Options) ([]ValidationIssue, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repository, loader := newRepository(templates, opts, logger.With("component", "templating"))

	names, err := loader.Names()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var issues []ValidationIssue
	for _, name := range names {
		var source string
		if id, ok := loader.TemplateID(name, ""); ok {
			source, _ = loader.TemplateString(id)
		}

		if _, err := repository.TemplateNamed(name); err != nil {
			issues = append(issues, ValidationIssue{
				TemplateName: name,
				Source:       source,
				Err:          NewCompilationError(name, source, err),
			})
		}
	}

	return issues, nil
}

// syntaxOnlyDataSource resolves every name to an empty template.
type syntaxOnlyDataSource struct{}

func (syntaxOnlyDataSource) TemplateID(name, _ string) (string, bool) {
	return name, true
}

func (syntaxOnlyDataSource) TemplateString(string) (string, error) {
	return "", nil
}
