package mustache

import (
	"errors"
	"fmt"
	"strings"

	"mustache-engine/pkg/mustache/expression"
)

// renderingEngine renders one TemplateAST into a buffer. Nested ASTs of a
// different content type are rendered by their own engine and escaped as
// needed when appended.
type renderingEngine struct {
	target *TemplateAST
	buf    strings.Builder
}

// renderAST renders ast in ctx with a fresh engine.
func renderAST(ast *TemplateAST, ctx *Context) (Rendering, error) {
	e := &renderingEngine{target: ast}
	if err := e.renderTemplateAST(ast, ctx); err != nil {
		return Rendering{}, err
	}
	return Rendering{String: e.buf.String(), ContentType: ast.contentType}, nil
}

func (e *renderingEngine) renderTemplateAST(ast *TemplateAST, ctx *Context) error {
	if ast.contentType == e.target.contentType {
		for _, n := range ast.nodes {
			if err := e.renderNode(n, ctx); err != nil {
				return err
			}
		}
		return nil
	}

	rendering, err := renderAST(ast, ctx)
	if err != nil {
		return err
	}
	if e.target.contentType == HTML && rendering.ContentType == Text {
		e.buf.WriteString(EscapeHTML(rendering.String))
	} else {
		e.buf.WriteString(rendering.String)
	}
	return nil
}

func (e *renderingEngine) renderNode(n node, ctx *Context) error {
	switch n := n.(type) {
	case textNode:
		e.buf.WriteString(n.text)
		return nil

	case variableNode:
		return e.renderTag(n.tag, n.expr, n.escapesHTML, false, ctx)

	case sectionNode:
		return e.renderTag(n.tag, n.expr, true, n.inverted, ctx)

	case partialNode:
		deeper, err := descend(ctx, n.name)
		if err != nil {
			return err
		}
		return e.renderTemplateAST(n.ast, deeper)

	case inheritedPartialNode:
		deeper, err := descend(ctx, n.parent.name)
		if err != nil {
			return err
		}
		return e.renderTemplateAST(n.parent.ast, deeper.extendInheritedPartial(&n))

	case blockNode:
		resolved := resolveBlock(n, ctx)
		return e.renderTemplateAST(resolved.ast, ctx)
	}
	return fmt.Errorf("unsupported template node %T", n)
}

func descend(ctx *Context, name string) (*Context, error) {
	deeper, ok := ctx.descend()
	if !ok {
		return nil, newRenderError(fmt.Sprintf("Maximum partial depth exceeded while rendering %q", name))
	}
	return deeper, nil
}

func (e *renderingEngine) renderTag(tag *Tag, expr expression.Expression, escapesHTML, inverted bool, ctx *Context) error {
	box, err := evaluate(expr, ctx)
	if err != nil {
		var mErr *Error
		if errors.As(err, &mErr) {
			message := "Could not evaluate " + tag.String()
			if mErr.Message != "" {
				message += ": " + mErr.Message
			}
			return mErr.withLocation(message, tag.TemplateID(), tag.Line())
		}
		return err
	}

	for _, willRender := range ctx.willRenderStack() {
		box = BoxValue(willRender(tag, box))
	}

	var rendering Rendering
	switch {
	case tag.Type == VariableTag:
		rendering, err = box.Render(RenderingInfo{Tag: tag, Context: ctx})
	case !inverted && box.BoolValue():
		rendering, err = box.Render(RenderingInfo{Tag: tag, Context: ctx})
	case inverted && !box.BoolValue():
		rendering, err = tag.Render(ctx)
	default:
		rendering = NewRendering("")
	}
	if err != nil {
		for _, didRender := range ctx.didRenderStack() {
			didRender(tag, box, nil)
		}
		return err
	}

	s := rendering.String
	if e.target.contentType == HTML && rendering.ContentType == Text && escapesHTML {
		s = EscapeHTML(s)
	}
	e.buf.WriteString(s)

	for _, didRender := range ctx.didRenderStack() {
		didRender(tag, box, &s)
	}
	return nil
}

// resolveBlock returns the block that overrides b in the partial overrides
// of ctx, innermost first. Each parent template contributes at most once,
// so a block overridden in a template and then passed through one of its
// partials is not overridden twice.
func resolveBlock(b blockNode, ctx *Context) blockNode {
	var used []*TemplateAST
	for _, override := range ctx.inheritedPartialStack() {
		parent := override.parent.ast
		if containsAST(used, parent) {
			continue
		}
		var modified bool
		b, modified = resolveBlockInChild(b, override.child)
		if modified {
			used = append(used, parent)
		}
	}
	return b
}

func resolveBlockInChild(b blockNode, child *TemplateAST) (blockNode, bool) {
	return resolveBlockIn(b, child, map[*TemplateAST]bool{})
}

// resolveBlockIn walks ast depth first. visiting holds the ASTs on the
// current path, which stops recursive partials.
func resolveBlockIn(b blockNode, ast *TemplateAST, visiting map[*TemplateAST]bool) (blockNode, bool) {
	if visiting[ast] {
		return b, false
	}
	visiting[ast] = true
	defer delete(visiting, ast)

	modified := false
	for _, n := range ast.nodes {
		switch n := n.(type) {
		case blockNode:
			if n.name == b.name {
				b, modified = n, true
			}
		case inheritedPartialNode:
			var m1, m2 bool
			b, m1 = resolveBlockIn(b, n.parent.ast, visiting)
			b, m2 = resolveBlockIn(b, n.child, visiting)
			modified = modified || m1 || m2
		case partialNode:
			var m bool
			b, m = resolveBlockIn(b, n.ast, visiting)
			modified = modified || m
		}
	}
	return b, modified
}

func containsAST(list []*TemplateAST, ast *TemplateAST) bool {
	for _, a := range list {
		if a == ast {
			return true
		}
	}
	return false
}
