package mustache

import (
	"log/slog"
)

// Configuration controls how a Repository compiles and renders templates.
//
// A Configuration is immutable. Build one with a ConfigurationBuilder.
type Configuration struct {
	contentType ContentType
	delimiters  Delimiters
	baseContext *Context
	maxDepth    int
	logger      *slog.Logger
}

// DefaultConfiguration returns an HTML configuration with {{ }} delimiters,
// an empty base context and DefaultMaxDepth.
func DefaultConfiguration() Configuration {
	return NewConfigurationBuilder().Build()
}

// ContentType is the content type of templates that have no pragma.
func (c Configuration) ContentType() ContentType {
	return c.contentType
}

// Delimiters is the initial delimiter pair of templates.
func (c Configuration) Delimiters() Delimiters {
	return c.delimiters
}

// BaseContext is the context every template starts rendering with.
func (c Configuration) BaseContext() *Context {
	return c.baseContext
}

// MaxDepth bounds the nesting of partials while rendering.
func (c Configuration) MaxDepth() int {
	return c.maxDepth
}

// Logger receives compile and render events.
func (c Configuration) Logger() *slog.Logger {
	return c.logger
}

// ConfigurationBuilder assembles a Configuration.
type ConfigurationBuilder struct {
	contentType ContentType
	delimiters  Delimiters
	baseContext *Context
	maxDepth    int
	logger      *slog.Logger
}

// NewConfigurationBuilder returns a builder holding the defaults.
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		contentType: HTML,
		delimiters:  DefaultDelimiters(),
		baseContext: NewContext(),
		maxDepth:    DefaultMaxDepth,
	}
}

// ContentType sets the content type of templates that have no pragma.
func (b *ConfigurationBuilder) ContentType(ct ContentType) *ConfigurationBuilder {
	b.contentType = ct
	return b
}

// Delimiters sets the initial delimiter pair.
func (b *ConfigurationBuilder) Delimiters(start, end string) *ConfigurationBuilder {
	b.delimiters = Delimiters{Start: start, End: end}
	return b
}

// BaseContext replaces the base context.
func (b *ConfigurationBuilder) BaseContext(ctx *Context) *ConfigurationBuilder {
	b.baseContext = ctx
	return b
}

// ExtendBaseContext pushes value on top of the base context.
func (b *ConfigurationBuilder) ExtendBaseContext(value any) *ConfigurationBuilder {
	b.baseContext = b.baseContext.Extend(value)
	return b
}

// RegisterInBaseContext makes key resolve to value in every template,
// whatever the rendered data.
func (b *ConfigurationBuilder) RegisterInBaseContext(key string, value any) *ConfigurationBuilder {
	b.baseContext = b.baseContext.WithRegisteredKey(key, value)
	return b
}

// MaxDepth bounds the nesting of partials. Zero or less means
// DefaultMaxDepth.
func (b *ConfigurationBuilder) MaxDepth(depth int) *ConfigurationBuilder {
	b.maxDepth = depth
	return b
}

// Logger sets the logger for compile and render events.
func (b *ConfigurationBuilder) Logger(logger *slog.Logger) *ConfigurationBuilder {
	b.logger = logger
	return b
}

// Build returns the immutable configuration.
func (b *ConfigurationBuilder) Build() Configuration {
	maxDepth := b.maxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	baseContext := b.baseContext
	if baseContext == nil {
		baseContext = NewContext()
	}
	return Configuration{
		contentType: b.contentType,
		delimiters:  b.delimiters,
		baseContext: baseContext.withMaxDepth(maxDepth),
		maxDepth:    maxDepth,
		logger:      logger,
	}
}
