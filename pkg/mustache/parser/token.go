// Package parser splits Mustache template strings into tokens.
//
// The tokenizer is a single left-to-right scan that hands every token to a
// Consumer as soon as it is recognized. It knows nothing about sections,
// partials or expressions: turning tokens into a tree is the compiler's job.
package parser

import "fmt"

// TokenType identifies the kind of a template token.
type TokenType int

const (
	// TokenText is raw text between tags.
	TokenText TokenType = iota

	// TokenComment is a {{! comment }} tag.
	TokenComment

	// TokenSection opens a {{#section}}.
	TokenSection

	// TokenInvertedSection opens a {{^inverted}} section.
	TokenInvertedSection

	// TokenClose is a {{/close}} tag.
	TokenClose

	// TokenPartial is a {{>partial}} tag.
	TokenPartial

	// TokenInheritedPartial opens a {{<parent}} partial override.
	TokenInheritedPartial

	// TokenInheritableSection opens a {{$block}}.
	TokenInheritableSection

	// TokenEscapedVariable is a {{variable}} tag.
	TokenEscapedVariable

	// TokenUnescapedVariable is a {{{variable}}} or {{&variable}} tag.
	TokenUnescapedVariable

	// TokenSetDelimiters is a {{=<% %>=}} tag.
	TokenSetDelimiters

	// TokenPragma is a {{%PRAGMA}} tag.
	TokenPragma
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenComment:
		return "comment"
	case TokenSection:
		return "section"
	case TokenInvertedSection:
		return "inverted_section"
	case TokenClose:
		return "close"
	case TokenPartial:
		return "partial"
	case TokenInheritedPartial:
		return "inherited_partial"
	case TokenInheritableSection:
		return "inheritable_section"
	case TokenEscapedVariable:
		return "escaped_variable"
	case TokenUnescapedVariable:
		return "unescaped_variable"
	case TokenSetDelimiters:
		return "set_delimiters"
	case TokenPragma:
		return "pragma"
	default:
		return "unknown"
	}
}

// Delimiters is the pair of strings that open and close a tag.
type Delimiters struct {
	Start string
	End   string
}

// DefaultDelimiters returns the standard {{ }} delimiter pair.
func DefaultDelimiters() Delimiters {
	return Delimiters{Start: "{{", End: "}}"}
}

// IsDefault reports whether the pair is exactly {{ }}.
func (d Delimiters) IsDefault() bool {
	return d.Start == "{{" && d.End == "}}"
}

// Token is one lexical element of a template.
type Token struct {
	// Type is the token kind.
	Type TokenType

	// Content is the tag content without delimiters and sigil, or the raw
	// text for TokenText.
	Content string

	// Start and End are byte offsets of the whole token in the template string.
	Start int
	End   int

	// Line is the 1-based line number where the token starts.
	Line int

	// TemplateID identifies the template the token belongs to. Empty for
	// templates compiled from a plain string.
	TemplateID string

	// Delimiters is the pair in effect when the token was read. Lambdas need
	// it to re-parse section bodies with the same delimiters.
	Delimiters Delimiters

	// Source is the full template string the token was read from.
	Source string
}

// Substring returns the exact template text covered by the token.
func (t Token) Substring() string {
	return t.Source[t.Start:t.End]
}

// Location returns a human-readable location such as "line 3 of template page".
func (t Token) Location() string {
	if t.TemplateID == "" {
		return fmt.Sprintf("line %d", t.Line)
	}
	return fmt.Sprintf("line %d of template %s", t.Line, t.TemplateID)
}
