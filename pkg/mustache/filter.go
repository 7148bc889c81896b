package mustache

// Filter returns a single-argument filter. Applying it to several
// arguments, as in {{f(x, y)}}, is a render error "Too many arguments".
func Filter(fn func(*Box) (any, error)) FilterFunc {
	return func(box *Box, partialApplication bool) (any, error) {
		if partialApplication {
			return nil, newRenderError("Too many arguments")
		}
		return fn(box)
	}
}

// VariadicFilter returns a filter accepting any number of arguments.
//
// {{f(a, b, c)}} is evaluated as f(a)(b)(c): each partial application
// returns a new filter carrying the arguments seen so far, the last one
// calls fn with all of them.
func VariadicFilter(fn func([]*Box) (any, error)) FilterFunc {
	return variadic(fn, nil)
}

func variadic(fn func([]*Box) (any, error), args []*Box) FilterFunc {
	return func(box *Box, partialApplication bool) (any, error) {
		all := make([]*Box, len(args), len(args)+1)
		copy(all, args)
		all = append(all, box)
		if partialApplication {
			return variadic(fn, all), nil
		}
		return fn(all)
	}
}

// RenderingFilter returns a filter that post-processes the rendering of
// its argument, as {{uppercase(name)}} would.
func RenderingFilter(fn func(Rendering) (Rendering, error)) FilterFunc {
	return Filter(func(box *Box) (any, error) {
		return RenderFunc(func(info RenderingInfo) (Rendering, error) {
			rendering, err := box.Render(info)
			if err != nil {
				return Rendering{}, err
			}
			return fn(rendering)
		}), nil
	})
}

// Lambda returns a render function for Mustache section lambdas: the raw
// content of {{#lambda}}...{{/lambda}} goes through fn, and the result is
// rendered as a template with the delimiters of the section. Partial tags
// in the result resolve relative to the template of the section.
//
// As a variable, {{lambda}} renders "(Lambda)".
func Lambda(fn func(string) string) RenderFunc {
	return func(info RenderingInfo) (Rendering, error) {
		tag := info.Tag
		if tag.Type == VariableTag {
			return NewRendering("(Lambda)"), nil
		}
		ast, err := tag.repository.compileDynamic(fn(tag.InnerTemplateString), tag.TemplateID(), tag.Delimiters, tag.contentType)
		if err != nil {
			return Rendering{}, err
		}
		return renderAST(ast, info.Context)
	}
}

// VariableLambda returns a render function for Mustache variable lambdas:
// {{lambda}} renders the result of fn as a text template, which the
// enclosing tag then escapes if needed.
//
// As a section, {{#lambda}}...{{/lambda}} renders its content with the
// lambda on top of the context stack.
func VariableLambda(fn func() string) RenderFunc {
	var self RenderFunc
	self = func(info RenderingInfo) (Rendering, error) {
		tag := info.Tag
		if tag.Type == SectionTag {
			return tag.Render(info.Context.Extend(self))
		}
		ast, err := tag.repository.compileDynamic(fn(), tag.TemplateID(), DefaultDelimiters(), Text)
		if err != nil {
			return Rendering{}, err
		}
		return renderAST(ast, info.Context)
	}
	return self
}
