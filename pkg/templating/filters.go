package templating

import (
	"encoding/base64"
	"fmt"
	"path"
	"reflect"
	"strings"
)

// BuiltinFilters returns the filters registered by the command line tool.
// Callers of NewWithOptions can merge them into Options.Filters.
//
// Usage in templates:
//
//	{{ upper(name) }}
//	{{# glob_match(files, pattern) }}{{ . }}{{/}}
//	{{ join(tags, separator) }}
func BuiltinFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		"upper":      Upper,
		"lower":      Lower,
		"trim":       Trim,
		"join":       Join,
		"default":    Default,
		"glob_match": GlobMatch,
		"b64encode":  B64Encode,
		"b64decode":  B64Decode,
	}
}

// Upper converts a string to upper case.
func Upper(in interface{}, args ...interface{}) (interface{}, error) {
	str, err := stringInput("upper", in)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(str), nil
}

// Lower converts a string to lower case.
func Lower(in interface{}, args ...interface{}) (interface{}, error) {
	str, err := stringInput("lower", in)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(str), nil
}

// Trim removes leading and trailing white space.
func Trim(in interface{}, args ...interface{}) (interface{}, error) {
	str, err := stringInput("trim", in)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(str), nil
}

// Join joins the items of a list with a separator, ", " by default.
//
// Usage in templates:
//
//	{{ join(tags) }}
//	{{ join(tags, separator) }}
func Join(in interface{}, args ...interface{}) (interface{}, error) {
	list, err := listInput("join", in)
	if err != nil {
		return nil, err
	}

	separator := ", "
	if len(args) > 0 {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("join: separator must be a string, got %T", args[0])
		}
		separator = s
	}

	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, separator), nil
}

// Default returns its argument when the input is nil or the empty string.
//
// Usage in templates:
//
//	{{ default(title, siteName) }}
func Default(in interface{}, args ...interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("default: fallback argument required")
	}
	if in == nil || in == "" {
		return args[0], nil
	}
	return in, nil
}

// GlobMatch filters a list of strings by glob pattern.
//
// Usage in templates:
//
//	{{# glob_match(snippets, pattern) }}
//	  {{ . }}
//	{{/}}
//
// Parameters:
//   - in: List of strings to filter
//   - args: Single argument specifying glob pattern (supports * and ? wildcards)
//
// Returns:
//   - Filtered list containing only matching strings
//   - Error if input is not a list, pattern is missing, or pattern is invalid
func GlobMatch(in interface{}, args ...interface{}) (interface{}, error) {
	list, err := listInput("glob_match", in)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("glob_match: pattern argument required")
	}

	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("glob_match: pattern must be a string, got %T", args[0])
	}

	result := []interface{}{}
	for _, item := range list {
		str, ok := item.(string)
		if !ok {
			continue // Skip non-string items
		}

		matched, err := path.Match(pattern, str)
		if err != nil {
			return nil, fmt.Errorf("glob_match: invalid pattern %q: %w", pattern, err)
		}

		if matched {
			result = append(result, str)
		}
	}

	return result, nil
}

// B64Encode encodes a string with standard base64.
func B64Encode(in interface{}, args ...interface{}) (interface{}, error) {
	str, err := stringInput("b64encode", in)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString([]byte(str)), nil
}

// B64Decode decodes a base64-encoded string.
//
// Usage in templates:
//
//	{{ b64decode(secret.password) }}
//
// Returns:
//   - Decoded string
//   - Error if input is not a string or decoding fails
func B64Decode(in interface{}, args ...interface{}) (interface{}, error) {
	str, ok := in.(string)
	if !ok {
		return nil, fmt.Errorf("b64decode: input must be a string, got %T", in)
	}

	decoded, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("b64decode: %w", err)
	}

	return string(decoded), nil
}

func stringInput(filter string, in interface{}) (string, error) {
	switch v := in.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%s: input must be a string, got %T", filter, in)
	}
}

// listInput converts slices and arrays of any element type to []interface{}.
func listInput(filter string, in interface{}) ([]interface{}, error) {
	if list, ok := in.([]interface{}); ok {
		return list, nil
	}

	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%s: input must be a list, got %T", filter, in)
	}

	list := make([]interface{}, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, nil
}
