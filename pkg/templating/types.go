// Package templating provides a named-template engine on top of the
// mustache package.
//
// A TemplateEngine pre-compiles every named template at initialization, so
// syntax errors and missing partials are reported before the first render.
// Templates can be given as an in-memory map, loaded from a directory, or
// both; in-memory templates shadow files with the same name.
package templating

import (
	"log/slog"

	"mustache-engine/pkg/metrics"
	"mustache-engine/pkg/mustache"
)

// FilterFunc is a custom filter function that can be registered with the template engine.
// It receives the input value and optional arguments, and returns the filtered value or an error.
//
// In templates, {{ name(x) }} calls the filter with in=x and {{ name(x, y) }}
// with in=x and args=[y].
//
// Example:
//
//	func uppercase(in interface{}, args ...interface{}) (interface{}, error) {
//	    str, ok := in.(string)
//	    if !ok {
//	        return nil, fmt.Errorf("uppercase: expected string, got %T", in)
//	    }
//	    return strings.ToUpper(str), nil
//	}
type FilterFunc func(in interface{}, args ...interface{}) (interface{}, error)

// GlobalFunc is a custom global function that can be called from templates.
// {{ name }} calls it without arguments and renders the result;
// {{ name(a, b) }} calls it with the values of a and b.
type GlobalFunc func(args ...interface{}) (interface{}, error)

// Options configures a TemplateEngine. The zero value renders HTML with
// {{ }} delimiters from in-memory templates only.
type Options struct {
	// ContentType of templates that carry no CONTENT_TYPE pragma.
	ContentType mustache.ContentType

	// StartDelimiter and EndDelimiter replace {{ and }} when both are set.
	StartDelimiter string
	EndDelimiter   string

	// MaxDepth bounds partial nesting during rendering; 0 keeps the
	// mustache default.
	MaxDepth int

	// TemplateDir, when set, is a directory of template files. Every file
	// with TemplateExtension becomes a named template.
	TemplateDir       string
	TemplateExtension string

	// Filters and Functions are registered in the base context of every
	// template, under their map key.
	Filters   map[string]FilterFunc
	Functions map[string]GlobalFunc

	// Globals are registered in the base context as plain values.
	Globals map[string]interface{}

	// StandardLibrary adds HTMLEscape, URLEscape, JavascriptEscape, each
	// and zip to the base context.
	StandardLibrary bool

	// LogTags logs every tag rendering at debug level.
	LogTags bool

	// PostProcessors run on every rendered output, in order.
	PostProcessors []PostProcessor

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics
}
