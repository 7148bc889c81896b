package mustache

import (
	"errors"
	"fmt"

	"mustache-engine/pkg/mustache/expression"
)

var (
	// ErrMissingFilter matches render errors for filter expressions
	// whose filter resolves to nothing, as `f` in {{f(x)}} with no `f`.
	ErrMissingFilter = errors.New("missing filter")

	// ErrNotAFilter matches render errors for filter expressions
	// whose filter resolves to a value that is not a filter.
	ErrNotAFilter = errors.New("not a filter")
)

// evaluate computes the box of an expression in ctx.
func evaluate(expr expression.Expression, ctx *Context) (*Box, error) {
	switch e := expr.(type) {
	case expression.ImplicitIterator:
		return ctx.TopBox(), nil

	case expression.Identifier:
		return ctx.Lookup(e.Name), nil

	case expression.Scoped:
		base, err := evaluate(e.Base, ctx)
		if err != nil {
			return nil, err
		}
		return base.BoxForKey(e.Identifier), nil

	case expression.Filter:
		fn, err := evaluate(e.Func, ctx)
		if err != nil {
			return nil, err
		}
		if fn.filter == nil {
			if fn.IsEmpty() {
				return nil, &Error{Kind: RenderError, Message: "Missing filter", sentinel: ErrMissingFilter}
			}
			return nil, &Error{Kind: RenderError, Message: "Not a filter", sentinel: ErrNotAFilter}
		}
		arg, err := evaluate(e.Argument, ctx)
		if err != nil {
			return nil, err
		}
		result, err := fn.filter(arg, e.Curried)
		if err != nil {
			return nil, err
		}
		return BoxValue(result), nil
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}
