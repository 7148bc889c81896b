package mustache

import (
	"testing"

	"github.com/rekby/fixenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderNamed(t *testing.T, repo *Repository, name string, data any) string {
	t.Helper()
	tpl, err := repo.TemplateNamed(name)
	require.NoError(t, err)
	out, err := tpl.Render(data)
	require.NoError(t, err)
	return out
}

func TestPartials(t *testing.T) {
	env := fixenv.New(t)
	repo := LayoutRepository(env)

	t.Run("partial shares the context", func(t *testing.T) {
		assert.Equal(t, "<h1>T</h1>body", renderNamed(t, repo, "withHdr", map[string]any{"title": "T"}))
	})

	t.Run("recursive partial over a tree", func(t *testing.T) {
		tree := map[string]any{"children": []any{
			map[string]any{"name": "x", "children": []any{
				map[string]any{"name": "y", "children": []any{}},
			}},
		}}
		assert.Equal(t, "<x><y>", renderNamed(t, repo, "nodes", tree))
	})

	t.Run("mutually recursive partials", func(t *testing.T) {
		data := map[string]any{"b": map[string]any{"a": map[string]any{"b": false}}}
		assert.Equal(t, "aba", renderNamed(t, repo, "a", data))
	})

	t.Run("text partial in html template", func(t *testing.T) {
		tpl, err := repo.Template("{{>text}}")
		require.NoError(t, err)
		out, err := tpl.Render(map[string]any{"value": "&"})
		require.NoError(t, err)
		assert.Equal(t, "&lt;&amp;&gt;", out)
	})

	t.Run("infinite recursion hits the depth limit", func(t *testing.T) {
		tpl, err := repo.TemplateNamed("self")
		require.NoError(t, err)
		_, err = tpl.Render(nil)
		require.Error(t, err)
		assert.True(t, IsRenderError(err))
		assert.Contains(t, err.Error(), `Maximum partial depth exceeded while rendering "self"`)
	})

	t.Run("partials are cached", func(t *testing.T) {
		first, err := repo.TemplateNamed("header")
		require.NoError(t, err)
		second, err := repo.TemplateNamed("header")
		require.NoError(t, err)
		assert.Same(t, first.ast, second.ast)
	})
}

func TestPartials_ConfiguredMaxDepth(t *testing.T) {
	repo := NewRepositoryWithTemplates(map[string]string{
		"countdown": "{{#n}}.{{#next}}{{>countdown}}{{/next}}{{/n}}",
	})
	repo.Configure().MaxDepth(2)

	tpl, err := repo.Template("{{>countdown}}")
	require.NoError(t, err)

	shallow := map[string]any{"n": true, "next": map[string]any{"n": true, "next": false}}
	out, err := tpl.Render(shallow)
	require.NoError(t, err)
	assert.Equal(t, "..", out)

	deep := map[string]any{"n": true, "next": map[string]any{"n": true, "next": map[string]any{"n": true}}}
	_, err = tpl.Render(deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum partial depth exceeded")
}

func TestPartials_Reload(t *testing.T) {
	templates := map[string]string{"p": "v1"}
	repo := NewRepository(NewDictionaryDataSource(templates))

	assert.Equal(t, "v1", renderNamed(t, repo, "p", nil))

	repo.dataSource = NewDictionaryDataSource(map[string]string{"p": "v2"})
	assert.Equal(t, "v1", renderNamed(t, repo, "p", nil), "cached until reload")
	repo.Reload()
	assert.Equal(t, "v2", renderNamed(t, repo, "p", nil))
}

func TestInheritance(t *testing.T) {
	env := fixenv.New(t)
	repo := LayoutRepository(env)

	t.Run("overrides blocks", func(t *testing.T) {
		out := renderNamed(t, repo, "page", map[string]any{"name": "Arthur"})
		assert.Equal(t, "<title>Arthur</title>Hello Arthur", out)
	})

	t.Run("defaults without overrides", func(t *testing.T) {
		assert.Equal(t, "<title>Default title</title>", renderNamed(t, repo, "layout", nil))
	})

	t.Run("partial override from a string template", func(t *testing.T) {
		tpl, err := repo.Template("{{<layout}}{{$content}}body{{/content}}{{/layout}}")
		require.NoError(t, err)
		out, err := tpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "<title>Default title</title>body", out)
	})

	t.Run("text between blocks is ignored", func(t *testing.T) {
		tpl, err := repo.Template("{{<layout}}ignored{{$content}}body{{/content}}ignored{{/layout}}")
		require.NoError(t, err)
		out, err := tpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "<title>Default title</title>body", out)
	})
}

func TestInheritance_Chains(t *testing.T) {
	repo := NewRepositoryWithTemplates(map[string]string{
		"base":       "[{{$a}}base{{/a}}]",
		"mid":        "{{<base}}{{$a}}mid{{/a}}{{/base}}",
		"top":        "{{<mid}}{{$a}}top{{/a}}{{/mid}}",
		"nested":     "{{<base}}{{$a}}{{<base}}{{$a}}inner{{/a}}{{/base}}{{/a}}{{/base}}",
		"viaPartial": "{{<base}}{{$a}}{{>withBase}}{{/a}}{{/base}}",
		"withBase":   "{{<base}}{{$a}}partial{{/a}}{{/base}}",
		"htmlBase":   "<{{$a}}{{/a}}>",
		"textChild":  "{{%CONTENT_TYPE:TEXT}}{{<htmlBase}}{{$a}}x{{/a}}{{/htmlBase}}",
	})

	tests := []struct {
		name string
		want string
	}{
		{"mid", "[mid]"},
		{"top", "[top]"},
		{"nested", "[[inner]]"},
		{"viaPartial", "[[partial]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderNamed(t, repo, tt.name, nil))
		})
	}

	t.Run("content type mismatch", func(t *testing.T) {
		_, err := repo.TemplateNamed("textChild")
		require.Error(t, err)
		assert.True(t, IsParseError(err))
		assert.Contains(t, err.Error(), "Content type mismatch")
	})
}

func TestPartials_FailedCompileEvictsIncludedPartials(t *testing.T) {
	templates := map[string]string{
		"a": "{{>b}}{{/oops}}",
		"b": "[{{>a}}]",
	}

	repo := NewRepositoryWithTemplates(templates)
	_, err := repo.TemplateNamed("a")
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	_, err = repo.TemplateNamed("b")
	require.Error(t, err, "b must not be served from a half-built cache")
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "Unmatched closing tag")

	_, freshErr := NewRepositoryWithTemplates(templates).TemplateNamed("b")
	require.Error(t, freshErr)
	assert.Equal(t, freshErr.Error(), err.Error())
}

func TestPartials_FailedCompileKeepsEarlierTemplates(t *testing.T) {
	repo := NewRepositoryWithTemplates(map[string]string{
		"ok":     "fine",
		"broken": "{{>ok}}{{#x}}",
	})

	assert.Equal(t, "fine", renderNamed(t, repo, "ok", nil))
	_, err := repo.TemplateNamed("broken")
	require.Error(t, err)

	first, err := repo.TemplateNamed("ok")
	require.NoError(t, err)
	assert.Equal(t, "fine", renderNamed(t, repo, "ok", nil))
	second, err := repo.TemplateNamed("ok")
	require.NoError(t, err)
	assert.Same(t, first.ast, second.ast)
}
