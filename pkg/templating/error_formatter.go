package templating

import (
	"errors"
	"fmt"
	"strings"

	"mustache-engine/pkg/mustache"
)

// errorLocation represents the location of an error in a template.
type errorLocation struct {
	Line   int
	Column int
}

// parsedError represents a template error with structured information.
type parsedError struct {
	Kind     string
	Location *errorLocation
	Problem  string
	Tag      string
	Hints    []string
}

// FormatRenderError formats a compilation or rendering error into a
// human-readable multi-line string with:
//   - The failing template and the kind of failure
//   - The line, and the column of the failing tag when it can be found
//   - The template line with a caret under the tag
//   - Actionable hints for fixing the error
//
// templateContent is the source of templateName; it may be empty, in which
// case no template context is shown.
func FormatRenderError(err error, templateName, templateContent string) string {
	if err == nil {
		return ""
	}

	parsed := parseTemplateError(err, templateContent)

	var builder strings.Builder

	fmt.Fprintf(&builder, "Template Error: %s\n", templateName)
	builder.WriteString(strings.Repeat("─", 60))
	builder.WriteString("\n")

	if parsed.Kind != "" {
		fmt.Fprintf(&builder, "Kind:     %s\n", parsed.Kind)
	}

	if parsed.Location != nil {
		if parsed.Location.Column > 0 {
			fmt.Fprintf(&builder, "Location: Line %d, Column %d\n", parsed.Location.Line, parsed.Location.Column)
		} else {
			fmt.Fprintf(&builder, "Location: Line %d\n", parsed.Location.Line)
		}
	}

	if parsed.Tag != "" {
		fmt.Fprintf(&builder, "Tag:      %s\n", parsed.Tag)
	}

	problem := parsed.Problem
	if problem == "" {
		problem = truncate(err.Error(), 100)
	}
	fmt.Fprintf(&builder, "Problem:  %s\n", problem)

	if parsed.Location != nil && templateContent != "" {
		if context := extractTemplateContext(templateContent, parsed.Location.Line, parsed.Location.Column); context != "" {
			builder.WriteString("\nTemplate Context:\n")
			builder.WriteString(context)
		}
	}

	if len(parsed.Hints) > 0 {
		builder.WriteString("\nHint: ")
		builder.WriteString(strings.Join(parsed.Hints, "\n      "))
		builder.WriteString("\n")
	}

	return builder.String()
}

// FormatRenderErrorShort returns a shortened single-line version of the error.
// Useful for logging contexts where multi-line output isn't appropriate.
func FormatRenderErrorShort(err error, templateName string) string {
	if err == nil {
		return ""
	}

	parsed := parseTemplateError(err, "")

	parts := []string{fmt.Sprintf("Template: %s", templateName)}
	if parsed.Location != nil {
		parts = append(parts, fmt.Sprintf("Line %d", parsed.Location.Line))
	}
	if parsed.Problem != "" {
		parts = append(parts, parsed.Problem)
	} else {
		parts = append(parts, truncate(err.Error(), 60))
	}

	return strings.Join(parts, " | ")
}

// parseTemplateError extracts structured information from err. Mustache
// errors provide kind, line and message; other errors, such as those
// returned by user filters, only get generic hints.
func parseTemplateError(err error, templateContent string) parsedError {
	var parsed parsedError

	var mErr *mustache.Error
	if !errors.As(err, &mErr) {
		parsed.Hints = generateHints(err, nil)
		return parsed
	}

	parsed.Kind = mErr.Kind.String()
	parsed.Problem, parsed.Tag = splitMessage(mErr.Message)
	if mErr.Line > 0 {
		parsed.Location = &errorLocation{Line: mErr.Line}
		if parsed.Tag != "" && templateContent != "" {
			parsed.Location.Column = findColumn(templateContent, mErr.Line, parsed.Tag)
		}
	}
	parsed.Hints = generateHints(err, mErr)

	return parsed
}

// splitMessage splits "Could not evaluate {{x}} at line 2: Missing filter"
// into the problem "Missing filter" and the tag "{{x}}".
func splitMessage(message string) (problem, tag string) {
	rest, found := strings.CutPrefix(message, "Could not evaluate ")
	if !found {
		return message, ""
	}

	tag, problem, _ = strings.Cut(rest, ": ")
	if i := strings.Index(tag, " at "); i >= 0 {
		tag = tag[:i]
	}
	return problem, tag
}

// findColumn returns the 1-based column of tag on the given line, 0 when
// the tag text does not appear there verbatim.
func findColumn(templateContent string, line int, tag string) int {
	lines := strings.Split(templateContent, "\n")
	if line < 1 || line > len(lines) {
		return 0
	}
	if i := strings.Index(lines[line-1], tag); i >= 0 {
		return i + 1
	}
	return 0
}

// generateHints generates actionable hints based on common error patterns.
func generateHints(err error, mErr *mustache.Error) []string {
	var hints []string

	switch {
	case errors.Is(err, mustache.ErrMissingFilter):
		hints = append(hints,
			"The function called as a filter is not defined in the data or the base context.",
			"Register it with Options.Filters or pass it in the rendered data.")
	case errors.Is(err, mustache.ErrNotAFilter):
		hints = append(hints,
			"A value called as a filter is not a filter function.",
			"Check for a key of the data shadowing the filter name, or a filter returning a value instead of a filter.")
	case mErr == nil:
		hints = append(hints,
			"The error was returned by a filter or function called by the template.",
			"Check the arguments passed to custom filters and functions.")
	case mErr.Kind == mustache.TemplateNotFound:
		hints = append(hints,
			"A partial or parent template could not be found.",
			"Partial names are resolved relative to the including template; a leading '/' makes them absolute.")
	case strings.Contains(mErr.Message, "Content type mismatch"):
		hints = append(hints,
			"HTML and TEXT content must not be mixed: a section renders only one content type,",
			"and an inherited template must have the same content type as its parent.")
	case strings.Contains(mErr.Message, "Maximum partial depth exceeded"):
		hints = append(hints,
			"A partial includes itself without a section that stops the recursion.",
			"Make the recursion depend on the data, or raise max_depth.")
	case strings.Contains(mErr.Message, "Unclosed") || strings.Contains(mErr.Message, "Unmatched"):
		hints = append(hints,
			"Every {{#section}}, {{^inverted}}, {{$block}} and {{<parent}} needs a matching {{/name}}.",
			"Check that opening and closing tags use the same expression.")
	case strings.Contains(mErr.Message, "Too many arguments"):
		hints = append(hints,
			"This filter accepts a single argument.")
	}

	if len(hints) == 0 {
		hints = append(hints,
			"Check your template syntax and the data passed to the template.",
			"See the Mustache manual (mustache(5)) for syntax help.")
	}

	return hints
}

// extractTemplateContext extracts the template line of the error, with a
// caret under the column when it is known.
func extractTemplateContext(templateContent string, line, column int) string {
	lines := strings.Split(templateContent, "\n")

	if line < 1 || line > len(lines) {
		return ""
	}

	var builder strings.Builder
	errorLine := lines[line-1]

	fmt.Fprintf(&builder, "%d | %s\n", line, errorLine)

	if column > 0 && column <= len(errorLine)+1 {
		padding := len(fmt.Sprintf("%d", line)) + 3 + column - 1
		builder.WriteString(strings.Repeat(" ", padding))
		builder.WriteString("^\n")
	}

	return builder.String()
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit-3] + "..."
	}
	return s
}
