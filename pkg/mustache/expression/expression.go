// Package expression parses the content of Mustache tags into expression trees.
//
// Grammar:
//
//	expr := '.' | '.'? identifier ('.' identifier)* | expr '(' args ')'
//	args := expr (',' expr)*
//
// Filter application associates left: f(x)(y) is Filter(Filter(f, x), y).
// Multi-argument calls are curried: f(x, y) is Filter(Filter(f, x, curried), y).
package expression

import "strings"

// Expression is a node of a parsed tag expression.
type Expression interface {
	// Equal reports whether two expressions have the same structure.
	Equal(other Expression) bool

	// String renders the expression back to template syntax.
	String() string

	expression()
}

// ImplicitIterator is the `.` expression: the top of the context stack.
type ImplicitIterator struct{}

// Identifier looks a name up in the context stack.
type Identifier struct {
	Name string
}

// Scoped looks Identifier up in the value of Base only.
type Scoped struct {
	Base       Expression
	Identifier string
}

// Filter applies the value of Func to the value of Argument.
//
// Curried is true when more arguments follow, as for `x` in `f(x, y)`.
type Filter struct {
	Func     Expression
	Argument Expression
	Curried  bool
}

func (ImplicitIterator) expression() {}
func (Identifier) expression()       {}
func (Scoped) expression()           {}
func (Filter) expression()           {}

// Equal reports whether other is also the implicit iterator.
func (ImplicitIterator) Equal(other Expression) bool {
	_, ok := other.(ImplicitIterator)
	return ok
}

// Equal reports whether other is an identifier with the same name.
func (e Identifier) Equal(other Expression) bool {
	o, ok := other.(Identifier)
	return ok && o.Name == e.Name
}

// Equal reports whether other is the same scoped lookup.
func (e Scoped) Equal(other Expression) bool {
	o, ok := other.(Scoped)
	return ok && o.Identifier == e.Identifier && e.Base.Equal(o.Base)
}

// Equal reports whether other applies the same filter to the same argument.
func (e Filter) Equal(other Expression) bool {
	o, ok := other.(Filter)
	return ok && o.Curried == e.Curried && e.Func.Equal(o.Func) && e.Argument.Equal(o.Argument)
}

func (ImplicitIterator) String() string {
	return "."
}

func (e Identifier) String() string {
	return e.Name
}

func (e Scoped) String() string {
	if _, ok := e.Base.(ImplicitIterator); ok {
		return "." + e.Identifier
	}
	return e.Base.String() + "." + e.Identifier
}

func (e Filter) String() string {
	// Unwind the curried chain so f(a, b) prints as written.
	args := []string{e.Argument.String()}
	fn := e.Func
	for {
		inner, ok := fn.(Filter)
		if !ok || !inner.Curried {
			break
		}
		args = append([]string{inner.Argument.String()}, args...)
		fn = inner.Func
	}
	return fn.String() + "(" + strings.Join(args, ", ") + ")"
}
