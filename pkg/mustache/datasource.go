package mustache

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// DataSource loads template strings for a Repository.
type DataSource interface {
	// TemplateID resolves a partial name, as written in {{>name}}, into the
	// ID of a template. relativeTo is the ID of the template containing the
	// partial tag, empty for top-level lookups. It returns false when the
	// name cannot be resolved.
	TemplateID(name, relativeTo string) (string, bool)

	// TemplateString returns the source of the template with the given ID.
	TemplateString(id string) (string, error)
}

// DictionaryDataSource serves templates from a map of names to sources.
// Names are IDs: partial names are never relative.
type DictionaryDataSource struct {
	templates map[string]string
}

// NewDictionaryDataSource returns a data source over templates. The map is
// copied.
func NewDictionaryDataSource(templates map[string]string) *DictionaryDataSource {
	copied := make(map[string]string, len(templates))
	for name, src := range templates {
		copied[name] = src
	}
	return &DictionaryDataSource{templates: copied}
}

// TemplateID implements DataSource.
func (d *DictionaryDataSource) TemplateID(name, _ string) (string, bool) {
	_, ok := d.templates[name]
	return name, ok
}

// TemplateString implements DataSource.
func (d *DictionaryDataSource) TemplateString(id string) (string, error) {
	src, ok := d.templates[id]
	if !ok {
		return "", fmt.Errorf("no template %q", id)
	}
	return src, nil
}

// Names returns the names of all templates, in no particular order.
func (d *DictionaryDataSource) Names() []string {
	names := make([]string, 0, len(d.templates))
	for name := range d.templates {
		names = append(names, name)
	}
	return names
}

// DirectoryDataSource serves templates from a file system tree.
//
// Template IDs are slash-separated paths relative to the root. Partial
// names resolve relative to the directory of the including template, or
// to the root when they start with "/". Names that would leave the root do
// not resolve.
type DirectoryDataSource struct {
	fsys      fs.FS
	extension string
}

// NewDirectoryDataSource returns a data source over the directory dir.
// extension is appended to template names, without its dot; empty means
// names are file names.
func NewDirectoryDataSource(dir, extension string) *DirectoryDataSource {
	return NewFSDataSource(os.DirFS(dir), extension)
}

// NewFSDataSource returns a data source over fsys.
func NewFSDataSource(fsys fs.FS, extension string) *DirectoryDataSource {
	return &DirectoryDataSource{fsys: fsys, extension: strings.TrimPrefix(extension, ".")}
}

// TemplateID implements DataSource.
func (d *DirectoryDataSource) TemplateID(name, relativeTo string) (string, bool) {
	base := relativeTo
	if strings.HasPrefix(name, "/") {
		name = name[1:]
		base = ""
	}
	if name == "" {
		return base, base != ""
	}

	filename := name
	if d.extension != "" {
		filename += "." + d.extension
	}

	dir := "."
	if base != "" {
		dir = path.Dir(base)
	}
	id := path.Join(dir, filename)
	if !fs.ValidPath(id) {
		return "", false
	}
	info, err := fs.Stat(d.fsys, id)
	if err != nil || info.IsDir() {
		return "", false
	}
	return id, true
}

// TemplateString implements DataSource.
func (d *DirectoryDataSource) TemplateString(id string) (string, error) {
	data, err := fs.ReadFile(d.fsys, id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Names lists the templates below the root, by the names that resolve to
// them, sorted.
func (d *DirectoryDataSource) Names() ([]string, error) {
	var names []string
	suffix := ""
	if d.extension != "" {
		suffix = "." + d.extension
	}
	err := fs.WalkDir(d.fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(p, suffix) {
			return nil
		}
		names = append(names, strings.TrimSuffix(p, suffix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
