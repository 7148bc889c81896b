package expression

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned by Parse for blank input such as the content of {{}}.
var ErrEmpty = errors.New("Missing expression") //nolint:staticcheck // message is user-facing

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	// Expression is the full input that failed to parse.
	Expression string

	// Description locates the problem, e.g. "Unexpected character `(` at index 3".
	Description string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Invalid expression `%s`: %s", e.Expression, e.Description)
}

type parseState int

const (
	waitingForAnyExpression parseState = iota
	leadingDot
	identifier
	scopingIdentifier
	waitingForScopingIdentifier
	doneExpression
	doneExpressionPlusWhiteSpace
	failed
)

func isWhiteSpace(r rune) bool {
	return r == ' ' || r == '\r' || r == '\n' || r == '\t'
}

// isReserved reports characters that can never start an identifier.
func isReserved(r rune) bool {
	switch r {
	case '{', '}', '&', '$', '#', '^', '/', '<', '>':
		return true
	}
	return false
}

// parser is a single-pass character state machine. filterStack holds the
// filter expressions whose argument list is currently open.
type parser struct {
	input       []rune
	state       parseState
	start       int
	base        Expression
	done        Expression
	filterStack []Expression
	failure     string
}

func (p *parser) fail(format string, args ...any) {
	p.state = failed
	p.failure = fmt.Sprintf(format, args...)
}

func (p *parser) unexpected(r rune, i int) {
	p.fail("Unexpected character `%c` at index %d", r, i)
}

// closeCall handles ')' after argument, producing a final application.
func (p *parser) closeCall(argument Expression, r rune, i int) {
	if len(p.filterStack) == 0 {
		p.unexpected(r, i)
		return
	}
	fn := p.filterStack[len(p.filterStack)-1]
	p.filterStack = p.filterStack[:len(p.filterStack)-1]
	p.done = Filter{Func: fn, Argument: argument, Curried: false}
	p.state = doneExpression
}

// nextArgument handles ',' after argument, producing a curried application.
func (p *parser) nextArgument(argument Expression, r rune, i int) {
	if len(p.filterStack) == 0 {
		p.unexpected(r, i)
		return
	}
	fn := p.filterStack[len(p.filterStack)-1]
	p.filterStack[len(p.filterStack)-1] = Filter{Func: fn, Argument: argument, Curried: true}
	p.state = waitingForAnyExpression
}

func (p *parser) openCall(fn Expression) {
	p.filterStack = append(p.filterStack, fn)
	p.state = waitingForAnyExpression
}

func (p *parser) step(i int, r rune) {
	switch p.state {
	case waitingForAnyExpression:
		switch {
		case isWhiteSpace(r):
		case r == '.':
			p.state = leadingDot
		case r == '(' || r == ')' || r == ',' || isReserved(r):
			p.unexpected(r, i)
		default:
			p.state = identifier
			p.start = i
		}

	case leadingDot:
		switch {
		case isWhiteSpace(r):
			p.done = ImplicitIterator{}
			p.state = doneExpressionPlusWhiteSpace
		case r == '.':
			p.unexpected(r, i)
		case r == '(':
			p.openCall(ImplicitIterator{})
		case r == ')':
			p.closeCall(ImplicitIterator{}, r, i)
		case r == ',':
			p.nextArgument(ImplicitIterator{}, r, i)
		case isReserved(r):
			p.unexpected(r, i)
		default:
			p.state = scopingIdentifier
			p.start = i
			p.base = ImplicitIterator{}
		}

	case identifier, scopingIdentifier:
		var current Expression
		name := string(p.input[p.start:i])
		if p.state == identifier {
			current = Identifier{Name: name}
		} else {
			current = Scoped{Base: p.base, Identifier: name}
		}

		switch {
		case isWhiteSpace(r):
			p.done = current
			p.state = doneExpressionPlusWhiteSpace
		case r == '.':
			p.base = current
			p.state = waitingForScopingIdentifier
		case r == '(':
			p.openCall(current)
		case r == ')':
			p.closeCall(current, r, i)
		case r == ',':
			p.nextArgument(current, r, i)
		}

	case waitingForScopingIdentifier:
		switch {
		case isWhiteSpace(r):
			p.fail("Unexpected white space character at index %d", i)
		case r == '.' || r == '(' || r == ')' || r == ',' || isReserved(r):
			p.unexpected(r, i)
		default:
			p.state = scopingIdentifier
			p.start = i
		}

	case doneExpression, doneExpressionPlusWhiteSpace:
		done := p.done
		switch {
		case isWhiteSpace(r):
			p.state = doneExpressionPlusWhiteSpace
		case r == '.' && p.state == doneExpression:
			p.base = done
			p.state = waitingForScopingIdentifier
		case r == '(':
			p.openCall(done)
		case r == ')':
			p.closeCall(done, r, i)
		case r == ',':
			p.nextArgument(done, r, i)
		default:
			p.unexpected(r, i)
		}
	}
}

// finish builds the result once the input is exhausted.
func (p *parser) finish() (Expression, error) {
	end := len(p.input)
	unclosed := len(p.filterStack) > 0

	var result Expression
	switch p.state {
	case failed:
		return nil, p.syntaxError(p.failure)
	case waitingForAnyExpression:
		if !unclosed {
			return nil, ErrEmpty
		}
	case leadingDot:
		result = ImplicitIterator{}
	case identifier:
		result = Identifier{Name: string(p.input[p.start:])}
	case scopingIdentifier:
		result = Scoped{Base: p.base, Identifier: string(p.input[p.start:])}
	case waitingForScopingIdentifier:
		return nil, p.syntaxError(fmt.Sprintf("Missing identifier at index %d", end))
	case doneExpression, doneExpressionPlusWhiteSpace:
		result = p.done
	}

	if unclosed {
		return nil, p.syntaxError(fmt.Sprintf("Missing `)` character at index %d", end))
	}
	return result, nil
}

func (p *parser) syntaxError(description string) error {
	return &SyntaxError{Expression: string(p.input), Description: description}
}

// Parse parses the content of a tag into an Expression.
//
// Blank input returns ErrEmpty. Malformed input returns a *SyntaxError
// whose description carries the rune index of the problem.
func Parse(input string) (Expression, error) {
	p := &parser{input: []rune(input), state: waitingForAnyExpression}
	for i, r := range p.input {
		if p.state == failed {
			break
		}
		p.step(i, r)
	}
	return p.finish()
}
