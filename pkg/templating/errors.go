package templating

import (
	"fmt"
	"strings"
)

// CompilationError represents a template compilation failure.
// This error occurs during engine initialization when a template
// has invalid syntax or references a missing partial.
type CompilationError struct {
	// TemplateName is the name of the template that failed to compile
	TemplateName string

	// TemplateSnippet contains the first 200 characters of the template
	TemplateSnippet string

	// Cause is the underlying *mustache.Error
	Cause error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// RenderError represents a template rendering failure.
// This error occurs when a compiled template fails during execution,
// for example because of a missing filter or a failing user function.
type RenderError struct {
	// TemplateName is the name of the template that failed to render
	TemplateName string

	// Cause is the underlying rendering error
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// TemplateNotFoundError represents a request for a non-existent template.
type TemplateNotFoundError struct {
	// TemplateName is the name of the requested template
	TemplateName string

	// AvailableTemplates lists all available template names
	AvailableTemplates []string
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	if len(e.AvailableTemplates) == 0 {
		return fmt.Sprintf("template '%s' not found", e.TemplateName)
	}
	return fmt.Sprintf("template '%s' not found (available: %s)",
		e.TemplateName, strings.Join(e.AvailableTemplates, ", "))
}

// PostProcessorError represents a post-processor failure on a rendered template.
type PostProcessorError struct {
	// TemplateName is the name of the rendered template
	TemplateName string

	// Index is the position of the failing post-processor
	Index int

	// Cause is the error returned by the post-processor
	Cause error
}

// Error implements the error interface.
func (e *PostProcessorError) Error() string {
	return fmt.Sprintf("post-processor %d failed on template '%s': %v", e.Index, e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *PostProcessorError) Unwrap() error {
	return e.Cause
}

// Helper functions for creating errors with actionable context

// NewCompilationError creates a CompilationError for a template compilation failure.
func NewCompilationError(templateName, templateContent string, cause error) *CompilationError {
	snippet := templateContent
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}

	return &CompilationError{
		TemplateName:    templateName,
		TemplateSnippet: snippet,
		Cause:           cause,
	}
}

// NewRenderError creates a RenderError for a template rendering failure.
func NewRenderError(templateName string, cause error) *RenderError {
	return &RenderError{
		TemplateName: templateName,
		Cause:        cause,
	}
}

// NewTemplateNotFoundError creates a TemplateNotFoundError with the list of available templates.
func NewTemplateNotFoundError(templateName string, availableTemplates []string) *TemplateNotFoundError {
	return &TemplateNotFoundError{
		TemplateName:       templateName,
		AvailableTemplates: availableTemplates,
	}
}

// NewPostProcessorError creates a PostProcessorError for the post-processor at index.
func NewPostProcessorError(templateName string, index int, cause error) *PostProcessorError {
	return &PostProcessorError{
		TemplateName: templateName,
		Index:        index,
		Cause:        cause,
	}
}
