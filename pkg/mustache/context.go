package mustache

import (
	"strings"

	"mustache-engine/pkg/mustache/expression"
)

// DefaultMaxDepth bounds the nesting of partials during rendering.
const DefaultMaxDepth = 256

type frameType int

const (
	rootFrame frameType = iota
	boxFrame
	inheritedPartialFrame
)

// Context is the stack of values that tags look identifiers up in.
//
// Contexts are immutable: Extend and WithRegisteredKey return new contexts
// that share their parent.
type Context struct {
	typ    frameType
	box    *Box
	parent *Context

	inheritedPartial *inheritedPartialNode

	// registered holds keys looked up before the stack itself.
	registered *Context

	depth    int
	maxDepth int
}

// NewContext returns a context stack holding values, the last one on top.
func NewContext(values ...any) *Context {
	ctx := &Context{typ: rootFrame}
	for _, v := range values {
		ctx = ctx.Extend(v)
	}
	return ctx
}

// Extend returns a new context with value pushed on top of the stack.
func (c *Context) Extend(value any) *Context {
	return &Context{
		typ:        boxFrame,
		box:        BoxValue(value),
		parent:     c,
		registered: c.registered,
		depth:      c.depth,
		maxDepth:   c.maxDepth,
	}
}

// WithRegisteredKey returns a new context where key resolves to value
// before anything in the stack.
func (c *Context) WithRegisteredKey(key string, value any) *Context {
	registered := c.registered
	if registered == nil {
		registered = NewContext()
	}
	n := *c
	n.registered = registered.Extend(map[string]*Box{key: BoxValue(value)})
	return &n
}

func (c *Context) extendInheritedPartial(p *inheritedPartialNode) *Context {
	return &Context{
		typ:              inheritedPartialFrame,
		inheritedPartial: p,
		parent:           c,
		registered:       c.registered,
		depth:            c.depth,
		maxDepth:         c.maxDepth,
	}
}

// descend returns a copy of c one partial level deeper, or false when the
// maximum depth is reached.
func (c *Context) descend() (*Context, bool) {
	limit := c.maxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if c.depth >= limit {
		return nil, false
	}
	n := *c
	n.depth++
	return &n, true
}

func (c *Context) withMaxDepth(maxDepth int) *Context {
	n := *c
	n.maxDepth = maxDepth
	return &n
}

// TopBox returns the box rendered by {{.}}.
func (c *Context) TopBox() *Box {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		switch ctx.typ {
		case rootFrame:
			return EmptyBox()
		case boxFrame:
			return ctx.box
		}
	}
	return EmptyBox()
}

// Lookup returns the box for key: a registered key first, then the
// innermost stack value that has a non-empty box for key.
func (c *Context) Lookup(key string) *Box {
	if c.registered != nil {
		if b := c.registered.Lookup(key); !b.IsEmpty() {
			return b
		}
	}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.typ != boxFrame {
			continue
		}
		if b := ctx.box.BoxForKey(key); !b.IsEmpty() {
			return b
		}
	}
	return EmptyBox()
}

// Eval evaluates an expression such as `user.name` or `uppercase(name)`.
func (c *Context) Eval(s string) (*Box, error) {
	expr, err := expression.Parse(s)
	if err != nil {
		return nil, err
	}
	return evaluate(expr, c)
}

// willRenderStack returns willRender hooks, innermost first.
func (c *Context) willRenderStack() []WillRenderFunc {
	var hooks []WillRenderFunc
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.typ == boxFrame && ctx.box.willRender != nil {
			hooks = append(hooks, ctx.box.willRender)
		}
	}
	return hooks
}

// didRenderStack returns didRender hooks, outermost first.
func (c *Context) didRenderStack() []DidRenderFunc {
	var hooks []DidRenderFunc
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.typ == boxFrame && ctx.box.didRender != nil {
			hooks = append(hooks, ctx.box.didRender)
		}
	}
	for i, j := 0, len(hooks)-1; i < j; i, j = i+1, j-1 {
		hooks[i], hooks[j] = hooks[j], hooks[i]
	}
	return hooks
}

// inheritedPartialStack returns partial overrides, innermost first.
func (c *Context) inheritedPartialStack() []*inheritedPartialNode {
	var stack []*inheritedPartialNode
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.typ == inheritedPartialFrame {
			stack = append(stack, ctx.inheritedPartial)
		}
	}
	return stack
}

// String describes the stack for debugging, innermost first.
func (c *Context) String() string {
	var parts []string
	for ctx := c; ctx != nil; ctx = ctx.parent {
		switch ctx.typ {
		case rootFrame:
			parts = append(parts, "Context.Root")
		case boxFrame:
			parts = append(parts, "Context.Box("+ctx.box.String()+")")
		case inheritedPartialFrame:
			parts = append(parts, "Context.PartialOverride")
		}
	}
	return strings.Join(parts, ":")
}
