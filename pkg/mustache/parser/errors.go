package parser

import "fmt"

// SyntaxError reports a malformed tag found while scanning a template.
type SyntaxError struct {
	// Message describes the problem, e.g. "Unclosed Mustache tag".
	Message string

	// TemplateID identifies the template, empty for string templates.
	TemplateID string

	// Line is the 1-based line where the offending tag starts.
	Line int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.TemplateID == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d of template %s: %s", e.Line, e.TemplateID, e.Message)
}

func newSyntaxError(message, templateID string, line int) *SyntaxError {
	return &SyntaxError{
		Message:    message,
		TemplateID: templateID,
		Line:       line,
	}
}
