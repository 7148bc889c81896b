package templating

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  FilterFunc
		input   interface{}
		want    interface{}
		wantErr string
	}{
		{"upper", Upper, "Arthur", "ARTHUR", ""},
		{"lower", Lower, "Arthur", "arthur", ""},
		{"trim", Trim, "  x \n", "x", ""},
		{"nil is empty", Upper, nil, "", ""},
		{"non-string", Upper, 12, nil, "upper: input must be a string, got int"},
		{"b64encode", B64Encode, "user:pw", "dXNlcjpwdw==", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoin(t *testing.T) {
	got, err := Join([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a, b", got)

	got, err = Join([]interface{}{1, "x"}, "|")
	require.NoError(t, err)
	assert.Equal(t, "1|x", got)

	_, err = Join("nope")
	assert.Error(t, err)

	_, err = Join([]string{"a"}, 1)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	got, err := Default(nil, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	got, err = Default("", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	got, err = Default("set", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "set", got)

	_, err = Default("set")
	assert.Error(t, err)
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		pattern string
		want    []interface{}
		wantErr bool
	}{
		{
			name:    "simple wildcard match",
			input:   []interface{}{"partials/header", "partials/footer", "index"},
			pattern: "partials/*",
			want:    []interface{}{"partials/header", "partials/footer"},
		},
		{
			name:    "no matches",
			input:   []interface{}{"index", "about"},
			pattern: "partials/*",
			want:    []interface{}{},
		},
		{
			name:    "question mark wildcard",
			input:   []interface{}{"test1", "test2", "test10", "prod1"},
			pattern: "test?",
			want:    []interface{}{"test1", "test2"},
		},
		{
			name:    "star does not cross slashes",
			input:   []interface{}{"a/b", "a/b/c"},
			pattern: "a/*",
			want:    []interface{}{"a/b"},
		},
		{
			name:    "string slice input",
			input:   []string{"layout-main", "layout-print"},
			pattern: "layout-*",
			want:    []interface{}{"layout-main", "layout-print"},
		},
		{
			name:    "mixed types in list - skips non-strings",
			input:   []interface{}{"valid", 123, "another-valid", true},
			pattern: "*valid",
			want:    []interface{}{"valid", "another-valid"},
		},
		{
			name:    "non-list input",
			input:   "not-a-list",
			pattern: "*",
			wantErr: true,
		},
		{
			name:    "missing pattern argument",
			input:   []interface{}{"test"},
			pattern: "",
			wantErr: true,
		},
		{
			name:    "invalid glob pattern",
			input:   []interface{}{"test"},
			pattern: "[invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []interface{}
			if tt.pattern != "" {
				args = []interface{}{tt.pattern}
			}

			got, err := GlobMatch(tt.input, args...)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestB64Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{
			name:  "simple string",
			input: base64.StdEncoding.EncodeToString([]byte("Hello, World!")),
			want:  "Hello, World!",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "multiline",
			input: base64.StdEncoding.EncodeToString([]byte("line1\nline2")),
			want:  "line1\nline2",
		},
		{
			name:    "non-string input",
			input:   123,
			wantErr: true,
		},
		{
			name:    "invalid base64",
			input:   "not-valid-base64!!!",
			wantErr: true,
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := B64Decode(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltinFilters_InTemplates(t *testing.T) {
	engine, err := NewWithOptions(map[string]string{
		"page": "{{ upper(name) }}|{{ join(tags, sep) }}|{{#glob_match(files, pattern)}}{{.}};{{/}}|{{ default(missing, fallback) }}",
	}, Options{Filters: BuiltinFilters()})
	require.NoError(t, err)

	out, err := engine.Render("page", map[string]interface{}{
		"name":     "arthur",
		"tags":     []string{"a", "b"},
		"sep":      "+",
		"files":    []string{"x.css", "y.js", "z.css"},
		"pattern":  "*.css",
		"fallback": "none",
	})
	require.NoError(t, err)
	assert.Equal(t, "ARTHUR|a+b|x.css;z.css;|none", out)
}
