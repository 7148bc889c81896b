package mustache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rekby/fixenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryDataSource(t *testing.T) {
	templates := map[string]string{"a": "A"}
	ds := NewDictionaryDataSource(templates)
	templates["b"] = "B"

	id, ok := ds.TemplateID("a", "whatever")
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = ds.TemplateID("b", "")
	assert.False(t, ok, "the map is copied")

	src, err := ds.TemplateString("a")
	require.NoError(t, err)
	assert.Equal(t, "A", src)

	_, err = ds.TemplateString("b")
	assert.Error(t, err)

	assert.Equal(t, []string{"a"}, ds.Names())
}

func TestDirectoryDataSource_TemplateID(t *testing.T) {
	env := fixenv.New(t)
	ds := NewFSDataSource(SiteFS(env), ".mustache")

	tests := []struct {
		name       string
		partial    string
		relativeTo string
		wantID     string
		wantOK     bool
	}{
		{"top level", "index", "", "index.mustache", true},
		{"nested", "partials/header", "", "partials/header.mustache", true},
		{"relative to includer", "logo", "partials/header.mustache", "partials/logo.mustache", true},
		{"parent directory", "../footer", "partials/up.mustache", "footer.mustache", true},
		{"absolute", "/footer", "partials/header.mustache", "footer.mustache", true},
		{"missing", "nope", "", "", false},
		{"directory", "partials", "", "", false},
		{"escaping the root", "../../etc/passwd", "partials/escape.mustache", "", false},
		{"empty name", "", "partials/logo.mustache", "partials/logo.mustache", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ds.TemplateID(tt.partial, tt.relativeTo)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestDirectoryDataSource_Names(t *testing.T) {
	env := fixenv.New(t)
	ds := NewFSDataSource(SiteFS(env), "mustache")

	names, err := ds.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"footer",
		"index",
		"partials/escape",
		"partials/header",
		"partials/logo",
		"partials/up",
	}, names)
}

func TestDirectoryDataSource_Render(t *testing.T) {
	env := fixenv.New(t)
	repo := NewRepository(NewFSDataSource(SiteFS(env), "mustache"))

	assert.Equal(t, "header logo|footer", renderNamed(t, repo, "index", nil))
	assert.Equal(t, "footer", renderNamed(t, repo, "partials/up", nil))

	_, err := repo.TemplateNamed("partials/escape")
	require.Error(t, err)
	assert.True(t, IsTemplateNotFound(err))
	assert.Contains(t, err.Error(), `Template not found: "../../etc/passwd" from partials/escape.mustache`)
}

func TestDirectoryDataSource_OnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shared"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("{{>shared/nav}}!"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared", "nav.html"), []byte("nav {{user}}"), 0o600))

	repo := NewRepositoryWithDirectory(dir, "html")
	assert.Equal(t, "nav ann!", renderNamed(t, repo, "page", map[string]any{"user": "ann"}))

	_, err := repo.TemplateNamed("missing")
	require.Error(t, err)
	assert.True(t, IsTemplateNotFound(err))
	assert.Equal(t, `Template not found: "missing"`, err.Error())
}
