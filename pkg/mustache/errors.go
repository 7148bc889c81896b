package mustache

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error.
type ErrorKind int

const (
	// TemplateNotFound means a data source could not resolve a template name.
	TemplateNotFound ErrorKind = iota

	// ParseError means a template string is malformed.
	ParseError

	// RenderError means rendering failed, e.g. a filter was missing.
	RenderError
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case TemplateNotFound:
		return "template_not_found"
	case ParseError:
		return "parse_error"
	case RenderError:
		return "render_error"
	default:
		return "unknown"
	}
}

// Error is returned by compilation and rendering.
//
// Errors produced by user functions (filters, render functions) are not
// wrapped in an Error: they propagate unchanged so callers can match them
// with errors.Is.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message describes the failure, e.g. "Unmatched closing tag".
	Message string

	// TemplateID identifies the template, empty when unknown or when the
	// template was compiled from a plain string.
	TemplateID string

	// Line is the 1-based line of the failure, 0 when unknown.
	Line int

	// Cause is the underlying error, if any.
	Cause error

	// sentinel is matched by errors.Is without appearing in the message.
	sentinel error
}

// location returns "line N of template ID", or a shorter form when parts
// are unknown.
func (e *Error) location() string {
	switch {
	case e.TemplateID != "" && e.Line > 0:
		return fmt.Sprintf("line %d of template %s", e.Line, e.TemplateID)
	case e.TemplateID != "":
		return "template " + e.TemplateID
	case e.Line > 0:
		return fmt.Sprintf("line %d", e.Line)
	default:
		return ""
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var description string
	switch e.Kind {
	case ParseError:
		description = "Parse error"
	case RenderError:
		description = "Rendering error"
	}
	if loc := e.location(); loc != "" && description != "" {
		description += " at " + loc
	}

	if e.Message != "" {
		if description != "" {
			description += ": " + e.Message
		} else {
			description = e.Message
		}
	}

	if e.Cause != nil {
		description += " (" + e.Cause.Error() + ")"
	}
	return description
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel error classifying e, such as
// ErrMissingFilter.
func (e *Error) Is(target error) bool {
	return e.sentinel != nil && target == e.sentinel
}

// withLocation returns a copy of e located at templateID and line. Empty
// values keep the current ones.
func (e *Error) withLocation(message, templateID string, line int) *Error {
	c := *e
	if message != "" {
		c.Message = message
	}
	if templateID != "" {
		c.TemplateID = templateID
	}
	if line > 0 {
		c.Line = line
	}
	return &c
}

func newParseError(message, templateID string, line int) *Error {
	return &Error{Kind: ParseError, Message: message, TemplateID: templateID, Line: line}
}

func newRenderError(message string) *Error {
	return &Error{Kind: RenderError, Message: message}
}

func newTemplateNotFoundError(message string) *Error {
	return &Error{Kind: TemplateNotFound, Message: message}
}

func isKind(err error, kind ErrorKind) bool {
	var mErr *Error
	return errors.As(err, &mErr) && mErr.Kind == kind
}

// IsParseError reports whether err wraps an Error of kind ParseError.
func IsParseError(err error) bool {
	return isKind(err, ParseError)
}

// IsRenderError reports whether err wraps an Error of kind RenderError.
func IsRenderError(err error) bool {
	return isKind(err, RenderError)
}

// IsTemplateNotFound reports whether err wraps an Error of kind TemplateNotFound.
func IsTemplateNotFound(err error) bool {
	return isKind(err, TemplateNotFound)
}
