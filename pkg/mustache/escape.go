package mustache

import (
	"fmt"
	"strings"
)

var htmlReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	"'", "&apos;",
	`"`, "&quot;",
)

// EscapeHTML escapes the five XML-significant characters.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// escapeHelper is a box that escapes renderings. It works as a filter,
// {{ HTMLEscape(x) }}, and as a section that escapes every variable tag
// inside it, {{# HTMLEscape }}{{x}}{{/}}.
func escapeHelper(name string, escape func(string) string) *Box {
	filter := RenderingFilter(func(r Rendering) (Rendering, error) {
		return Rendering{String: escape(r.String), ContentType: r.ContentType}, nil
	})
	return NewBox(
		WithValue(name),
		WithFilter(filter),
		WithWillRender(func(tag *Tag, box *Box) any {
			if tag.Type == SectionTag {
				return box
			}
			return RenderFunc(func(info RenderingInfo) (Rendering, error) {
				r, err := box.Render(info)
				if err != nil {
					return Rendering{}, err
				}
				return Rendering{String: escape(r.String), ContentType: r.ContentType}, nil
			})
		}),
	)
}

// HTMLEscape escapes HTML, regardless of the content type of the template.
func HTMLEscape() *Box {
	return escapeHelper("HTMLEscape", EscapeHTML)
}

// URLEscape percent-encodes everything but the characters allowed in a
// URL query component, less ?, & and =.
func URLEscape() *Box {
	return escapeHelper("URLEscape", EscapeURL)
}

// JavascriptEscape escapes strings for embedding in JavaScript string
// literals, HTML attributes and script blocks.
func JavascriptEscape() *Box {
	return escapeHelper("JavascriptEscape", EscapeJavascript)
}

// StandardLibrary returns the escape helpers and the each and zip filters
// keyed by their template names, ready for Context.Extend or
// ConfigurationBuilder.ExtendBaseContext.
func StandardLibrary() map[string]*Box {
	return map[string]*Box{
		"HTMLEscape":       HTMLEscape(),
		"URLEscape":        URLEscape(),
		"JavascriptEscape": JavascriptEscape(),
		"each":             BoxValue(Each),
		"zip":              BoxValue(Zip),
	}
}

// urlAllowed reports bytes left as is by EscapeURL.
func urlAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$'()*+,;:@/", c) >= 0
}

// EscapeURL percent-encodes s for use as a query parameter value.
func EscapeURL(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if urlAllowed(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// EscapeJavascript replaces characters that could end a string literal or
// a script block with \uXXXX escapes.
func EscapeJavascript(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20, r == 0x2028, r == 0x2029,
			strings.ContainsRune(`\'"><&=-;`, r):
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
