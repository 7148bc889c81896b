// Package mustache implements Mustache templates with filters, template
// inheritance, lambdas and render hooks.
//
// Compile a template string and render it with any Go value:
//
//	tpl, err := mustache.Compile("Hello {{name}}!")
//	if err != nil {
//		return err
//	}
//	out, err := tpl.Render(map[string]any{"name": "Arthur"})
//
// Templates that include partials come from a Repository, which loads them
// from a DataSource and caches the compiled result:
//
//	repo := mustache.NewRepositoryWithDirectory("templates", "mustache")
//	tpl, err := repo.TemplateNamed("page")
//
// Values are wrapped in a Box before rendering. Maps, slices, structs and
// scalars are boxed automatically by BoxValue; NewBox builds boxes with
// custom key lookup, render functions, filters and hooks.
//
// Supported tags:
//
//	{{name}}              escaped variable
//	{{{name}}} {{&name}}  unescaped variable
//	{{#name}}...{{/name}} section
//	{{^name}}...{{/name}} inverted section
//	{{>name}}             partial
//	{{<name}}...{{/name}} partial override
//	{{$name}}...{{/name}} block, overridable by partial overrides
//	{{! comment }}        comment
//	{{=<% %>=}}           set delimiters
//	{{%CONTENT_TYPE:TEXT}} content type pragma
//
// Expressions inside tags are identifiers (`name`), scoped lookups
// (`user.name`), the implicit iterator (`.`), and filter applications
// (`uppercase(name)`, `f(x, y)`).
package mustache
