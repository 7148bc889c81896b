package mustache

import (
	"mustache-engine/pkg/mustache/expression"
)

// TemplateAST is a compiled template: a list of nodes and a content type.
//
// An AST starts undefined when the repository registers it as a placeholder
// before compiling its source. Recursive partials point at the placeholder,
// which is filled once compilation of the enclosing template completes.
type TemplateAST struct {
	defined     bool
	nodes       []node
	contentType ContentType
}

func newTemplateAST(nodes []node, contentType ContentType) *TemplateAST {
	return &TemplateAST{defined: true, nodes: nodes, contentType: contentType}
}

func newPlaceholderAST() *TemplateAST {
	return &TemplateAST{}
}

// fill turns a placeholder into a defined AST without changing its identity.
func (a *TemplateAST) fill(from *TemplateAST) {
	a.nodes = from.nodes
	a.contentType = from.contentType
	a.defined = true
}

// ContentType returns the content type the template was compiled with.
func (a *TemplateAST) ContentType() ContentType {
	return a.contentType
}

// node is one element of a TemplateAST.
type node interface {
	node()
}

type textNode struct {
	text string
}

type variableNode struct {
	expr        expression.Expression
	escapesHTML bool
	tag         *Tag
}

type sectionNode struct {
	expr     expression.Expression
	inverted bool
	tag      *Tag
}

type partialNode struct {
	name string
	ast  *TemplateAST
}

// inheritedPartialNode is {{<parent}}...{{/parent}}: the child AST holds
// the overriding blocks, the parent AST is rendered in their light.
type inheritedPartialNode struct {
	parent partialNode
	child  *TemplateAST
}

// blockNode is {{$name}}default{{/name}}.
type blockNode struct {
	name string
	ast  *TemplateAST
}

func (textNode) node()             {}
func (variableNode) node()         {}
func (sectionNode) node()          {}
func (partialNode) node()          {}
func (inheritedPartialNode) node() {}
func (blockNode) node()            {}
