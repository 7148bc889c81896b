// Package datafile loads render data from JSON, YAML or HCL documents, read
// from local files or fetched over HTTP.
//
// Every format decodes into the same plain Go shapes: map[string]interface{},
// []interface{}, string, bool, float64/int64 and nil. These render with the
// usual Mustache semantics without any further conversion.
package datafile

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Format identifies a data file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl", ".tfvars":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("cannot infer data format from %q (expected .json, .yaml, .yml or .hcl)", path)
	}
}

// Load reads and decodes the file at path. The path "-" reads JSON from stdin.
func Load(path string) (interface{}, error) {
	if path == "-" {
		return Decode(os.Stdin, FormatJSON, "<stdin>")
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	return Decode(f, format, path)
}

// Decode reads a whole document from r. filename is only used in error
// messages.
func Decode(r io.Reader, format Format, filename string) (interface{}, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(src, filename)
	case FormatYAML:
		return decodeYAML(src, filename)
	case FormatHCL:
		return decodeHCL(src, filename)
	default:
		return nil, fmt.Errorf("unsupported data format %q", format)
	}
}

func decodeJSON(src []byte, filename string) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(src, &data); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", filename, err)
	}
	return data, nil
}

func decodeYAML(src []byte, filename string) (interface{}, error) {
	var data interface{}
	if err := yaml.Unmarshal(src, &data); err != nil {
		return nil, fmt.Errorf("%s: invalid YAML: %w", filename, err)
	}
	return normalizeYAML(data), nil
}

// normalizeYAML turns the map[interface{}]interface{} mappings yaml.v3
// produces for non-string keys into string-keyed maps, so that YAML data
// has the same shape as JSON data.
func normalizeYAML(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[fmt.Sprint(key)] = normalizeYAML(value)
		}
		return out
	case map[string]interface{}:
		for key, value := range v {
			v[key] = normalizeYAML(value)
		}
		return v
	case []interface{}:
		for i, value := range v {
			v[i] = normalizeYAML(value)
		}
		return v
	default:
		return v
	}
}

// decodeHCL accepts a body made of attributes only. Blocks are rejected.
func decodeHCL(src []byte, filename string) (interface{}, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	data := make(map[string]interface{}, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(&hcl.EvalContext{})
		if valDiags.HasErrors() {
			return nil, valDiags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("%s: attribute %q: %w", filename, name, err)
		}
		data[name] = native
	}
	return data, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go counterpart.
func ctyToNative(v cty.Value) (interface{}, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]interface{}, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]interface{})
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
