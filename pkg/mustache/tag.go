package mustache

import (
	"fmt"

	"mustache-engine/pkg/mustache/parser"
)

// Delimiters is the pair of strings that open and close a tag.
type Delimiters = parser.Delimiters

// DefaultDelimiters returns {{ }}.
func DefaultDelimiters() Delimiters {
	return parser.DefaultDelimiters()
}

// TagType tells variable tags from section tags.
type TagType int

const (
	// VariableTag is {{name}}, {{{name}}} or {{&name}}.
	VariableTag TagType = iota

	// SectionTag is {{#name}}...{{/name}} or {{^name}}...{{/name}}.
	SectionTag
)

// String returns the string representation of the tag type.
func (t TagType) String() string {
	if t == SectionTag {
		return "section"
	}
	return "variable"
}

// Tag is a variable or section tag, as seen by render functions and hooks.
type Tag struct {
	// Type is VariableTag or SectionTag.
	Type TagType

	// InnerTemplateString is the raw source between the opening and closing
	// tags of a section. Empty for variable tags.
	InnerTemplateString string

	// Delimiters is the delimiter pair in effect at the opening tag.
	Delimiters Delimiters

	token       parser.Token
	ast         *TemplateAST
	contentType ContentType
	repository  *Repository
}

// TemplateID identifies the template containing the tag.
func (t *Tag) TemplateID() string {
	return t.token.TemplateID
}

// Line is the 1-based line of the opening tag.
func (t *Tag) Line() int {
	return t.token.Line
}

// Render renders the content of a section tag in ctx. Variable tags have
// no content and render the empty string.
func (t *Tag) Render(ctx *Context) (Rendering, error) {
	if t.Type == VariableTag || t.ast == nil {
		return Rendering{ContentType: t.contentType}, nil
	}
	return renderAST(t.ast, ctx)
}

// String describes the tag for error messages, e.g. "{{name}} at line 3".
func (t *Tag) String() string {
	return fmt.Sprintf("%s at %s", t.token.Substring(), t.token.Location())
}

// RenderingInfo is handed to render functions.
type RenderingInfo struct {
	// Tag is the tag being rendered.
	Tag *Tag

	// Context is the context stack at the tag.
	Context *Context

	// EnumerationItem is true when the box is an item of a collection being
	// rendered, false when it is the value of the tag itself.
	EnumerationItem bool
}
