package mustache

// Template is a compiled template, ready to render.
//
// Render and RenderContext are safe for concurrent use. ExtendBaseContext
// and RegisterInBaseContext are not: call them before sharing the template.
type Template struct {
	repository  *Repository
	ast         *TemplateAST
	baseContext *Context
}

func newTemplate(repository *Repository, ast *TemplateAST, baseContext *Context) *Template {
	return &Template{repository: repository, ast: ast, baseContext: baseContext}
}

// Compile compiles a template string with the default configuration. The
// template can not include partials.
func Compile(src string) (*Template, error) {
	return NewRepository(nil).Template(src)
}

// Render compiles and renders a template string in one go.
func Render(src string, data any) (string, error) {
	tpl, err := Compile(src)
	if err != nil {
		return "", err
	}
	return tpl.Render(data)
}

// Render renders the template with data on top of the base context.
func (t *Template) Render(data any) (string, error) {
	rendering, err := t.RenderContext(t.baseContext.Extend(data))
	if err != nil {
		return "", err
	}
	return rendering.String, nil
}

// RenderContext renders the template in ctx. Render functions use it to
// render a template in the context of the tag they render.
func (t *Template) RenderContext(ctx *Context) (Rendering, error) {
	return renderAST(t.ast, ctx)
}

// ContentType returns the content type of the template and its renderings.
func (t *Template) ContentType() ContentType {
	return t.ast.contentType
}

// Repository returns the repository the template was compiled by.
func (t *Template) Repository() *Repository {
	return t.repository
}

// BaseContext returns the context renderings start from.
func (t *Template) BaseContext() *Context {
	return t.baseContext
}

// SetBaseContext replaces the context renderings start from.
func (t *Template) SetBaseContext(ctx *Context) {
	t.baseContext = ctx
}

// ExtendBaseContext pushes value on top of the base context.
func (t *Template) ExtendBaseContext(value any) {
	t.baseContext = t.baseContext.Extend(value)
}

// RegisterInBaseContext makes key resolve to value whatever the rendered
// data.
func (t *Template) RegisterInBaseContext(key string, value any) {
	t.baseContext = t.baseContext.WithRegisteredKey(key, value)
}

// MustacheBox makes templates usable as values: {{tpl}} renders like a
// partial, and {{#tpl}}...{{/tpl}} like a partial override whose blocks
// come from the section content.
func (t *Template) MustacheBox() *Box {
	return NewBox(
		WithValue(t),
		WithRender(func(info RenderingInfo) (Rendering, error) {
			if info.Tag.Type == VariableTag || info.Tag.ast == nil {
				return t.RenderContext(info.Context)
			}
			override := inheritedPartialNode{
				parent: partialNode{ast: t.ast},
				child:  info.Tag.ast,
			}
			return renderAST(newTemplateAST([]node{override}, t.ast.contentType), info.Context)
		}),
	)
}
