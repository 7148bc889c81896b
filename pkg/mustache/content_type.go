package mustache

import (
	"fmt"
	"strings"
)

// ContentType tells whether a template or a rendering is HTML or plain text.
type ContentType int

const (
	// HTML content is escaped when text is embedded into it.
	HTML ContentType = iota

	// Text content is never escaped.
	Text
)

// String returns the string representation of the content type.
func (c ContentType) String() string {
	switch c {
	case HTML:
		return "HTML"
	case Text:
		return "TEXT"
	default:
		return "unknown"
	}
}

// ParseContentType converts "html" or "text" (case-insensitive) to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HTML":
		return HTML, nil
	case "TEXT":
		return Text, nil
	default:
		return HTML, fmt.Errorf("unknown content type %q (expected html or text)", s)
	}
}

// Rendering is the output of a render function together with its content type.
type Rendering struct {
	String      string
	ContentType ContentType
}

// NewRendering returns a Text rendering of s.
func NewRendering(s string) Rendering {
	return Rendering{String: s, ContentType: Text}
}

// GoString shows the content type alongside the string, for debugging.
func (r Rendering) GoString() string {
	return fmt.Sprintf("Rendering(%s:%q)", r.ContentType, r.String)
}
