package mustache

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"mustache-engine/pkg/mustache/expression"
	"mustache-engine/pkg/mustache/parser"
)

var (
	pragmaText = regexp.MustCompile(`^CONTENT_TYPE\s*:\s*TEXT$`)
	pragmaHTML = regexp.MustCompile(`^CONTENT_TYPE\s*:\s*HTML$`)
)

type scopeType int

const (
	rootScope scopeType = iota
	sectionScope
	invertedSectionScope
	inheritedPartialScope
	blockScope
)

// scope is an open tag waiting for its closing tag.
type scope struct {
	typ     scopeType
	opening parser.Token
	expr    expression.Expression
	name    string
	nodes   []node
}

// compiler builds a TemplateAST from the token stream of one template.
type compiler struct {
	repository  *Repository
	templateID  string
	contentType ContentType
	locked      bool
	scopes      []*scope
	err         error
}

func newCompiler(repository *Repository, templateID string, contentType ContentType) *compiler {
	return &compiler{
		repository:  repository,
		templateID:  templateID,
		contentType: contentType,
		scopes:      []*scope{{typ: rootScope}},
	}
}

func (c *compiler) current() *scope {
	return c.scopes[len(c.scopes)-1]
}

func (c *compiler) push(s *scope) {
	c.scopes = append(c.scopes, s)
}

func (c *compiler) pop() *scope {
	s := c.current()
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

func (c *compiler) appendNode(n node) {
	s := c.current()
	s.nodes = append(s.nodes, n)
}

// Fail implements parser.Consumer.
func (c *compiler) Fail(err error) {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		c.err = newParseError(syntaxErr.Message, syntaxErr.TemplateID, syntaxErr.Line)
		return
	}
	c.err = err
}

// Consume implements parser.Consumer.
func (c *compiler) Consume(token parser.Token) bool {
	if c.err != nil {
		return false
	}
	if err := c.consume(token); err != nil {
		c.err = err
		return false
	}
	return true
}

func (c *compiler) consume(token parser.Token) error {
	switch token.Type {
	case parser.TokenSetDelimiters, parser.TokenComment:
		return nil

	case parser.TokenPragma:
		return c.pragma(token)

	case parser.TokenText:
		if c.current().typ != inheritedPartialScope {
			c.appendNode(textNode{text: token.Content})
		}
		return nil

	case parser.TokenEscapedVariable, parser.TokenUnescapedVariable:
		if err := c.checkOverrideScope(token); err != nil {
			return err
		}
		expr, err := parseExpression(token.Content, token)
		if err != nil {
			return err
		}
		c.appendNode(variableNode{
			expr:        expr,
			escapesHTML: token.Type == parser.TokenEscapedVariable,
			tag: &Tag{
				Type:       VariableTag,
				Delimiters: token.Delimiters,
				token:      token,
				// Variables render nothing of their own; contentType is
				// what Tag.Render reports.
				contentType: c.contentType,
				repository:  c.repository,
			},
		})
		c.locked = true
		return nil

	case parser.TokenSection, parser.TokenInvertedSection:
		if err := c.checkOverrideScope(token); err != nil {
			return err
		}
		expr, err := parseExpression(token.Content, token)
		if err != nil {
			return err
		}
		typ := sectionScope
		if token.Type == parser.TokenInvertedSection {
			typ = invertedSectionScope
		}
		c.push(&scope{typ: typ, opening: token, expr: expr})
		c.locked = true
		return nil

	case parser.TokenInheritableSection:
		name, err := templateName(token.Content, token, "block")
		if err != nil {
			return err
		}
		c.push(&scope{typ: blockScope, opening: token, name: name})
		c.locked = true
		return nil

	case parser.TokenInheritedPartial:
		name, err := templateName(token.Content, token, "template")
		if err != nil {
			return err
		}
		c.push(&scope{typ: inheritedPartialScope, opening: token, name: name})
		c.locked = true
		return nil

	case parser.TokenPartial:
		name, err := templateName(token.Content, token, "template")
		if err != nil {
			return err
		}
		ast, err := c.repository.templateAST(name, c.templateID)
		if err != nil {
			return locatePartialError(err, token)
		}
		c.appendNode(partialNode{name: name, ast: ast})
		c.locked = true
		return nil

	case parser.TokenClose:
		return c.close(token)
	}
	return nil
}

func (c *compiler) pragma(token parser.Token) error {
	pragma := strings.TrimSpace(token.Content)
	var ct ContentType
	switch {
	case pragmaText.MatchString(pragma):
		ct = Text
	case pragmaHTML.MatchString(pragma):
		ct = HTML
	default:
		// Unknown pragmas are ignored.
		return nil
	}
	if c.locked {
		return newParseError(
			"CONTENT_TYPE:"+ct.String()+" pragma tag must prepend any Mustache variable, section, or partial tag.",
			token.TemplateID, token.Line)
	}
	c.contentType = ct
	return nil
}

// checkOverrideScope rejects tags that have no meaning directly inside a
// {{<parent}} tag, where only blocks and partials may appear.
func (c *compiler) checkOverrideScope(token parser.Token) error {
	if c.current().typ == inheritedPartialScope {
		return newParseError("Illegal tag inside a partial override tag: "+token.Substring(), token.TemplateID, token.Line)
	}
	return nil
}

func (c *compiler) close(token parser.Token) error {
	s := c.current()
	unmatched := newParseError("Unmatched closing tag", token.TemplateID, token.Line)

	switch s.typ {
	case rootScope:
		return unmatched

	case sectionScope, invertedSectionScope:
		if strings.TrimSpace(token.Content) != "" {
			expr, err := parseExpression(token.Content, token)
			if err != nil {
				return err
			}
			if !expr.Equal(s.expr) {
				return unmatched
			}
		}
		c.pop()
		ast := newTemplateAST(s.nodes, c.contentType)
		c.appendNode(sectionNode{
			expr:     s.expr,
			inverted: s.typ == invertedSectionScope,
			tag: &Tag{
				Type:                SectionTag,
				InnerTemplateString: token.Source[s.opening.End:token.Start],
				Delimiters:          s.opening.Delimiters,
				token:               s.opening,
				ast:                 ast,
				contentType:         c.contentType,
				repository:          c.repository,
			},
		})
		return nil

	case inheritedPartialScope:
		if err := checkClosingName(token, s.name, "template"); err != nil {
			return err
		}
		parent, err := c.repository.templateAST(s.name, c.templateID)
		if err != nil {
			return locatePartialError(err, token)
		}
		if parent.defined && parent.contentType != c.contentType {
			return newParseError("Content type mismatch", token.TemplateID, token.Line)
		}
		c.pop()
		c.appendNode(inheritedPartialNode{
			parent: partialNode{name: s.name, ast: parent},
			child:  newTemplateAST(s.nodes, c.contentType),
		})
		return nil

	case blockScope:
		if err := checkClosingName(token, s.name, "block"); err != nil {
			return err
		}
		c.pop()
		c.appendNode(blockNode{name: s.name, ast: newTemplateAST(s.nodes, c.contentType)})
		return nil
	}
	return nil
}

// templateAST returns the compiled template, or the first error.
func (c *compiler) templateAST() (*TemplateAST, error) {
	if c.err != nil {
		return nil, c.err
	}
	if s := c.current(); s.typ != rootScope {
		return nil, newParseError("Unclosed Mustache tag", s.opening.TemplateID, s.opening.Line)
	}
	return newTemplateAST(c.current().nodes, c.contentType), nil
}

// checkClosingName accepts an empty closing tag or one naming the opener.
func checkClosingName(token parser.Token, opened, kind string) error {
	name, err := templateName(token.Content, token, kind)
	if err != nil {
		if strings.TrimSpace(token.Content) == "" {
			return nil
		}
		return err
	}
	if name != opened {
		return newParseError("Unmatched closing tag", token.TemplateID, token.Line)
	}
	return nil
}

// templateName validates the name of a partial or block tag. kind is
// "template" or "block".
func templateName(content string, token parser.Token, kind string) (string, error) {
	name := strings.TrimSpace(content)
	if name == "" {
		return "", newParseError("Missing "+kind+" name", token.TemplateID, token.Line)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", newParseError("Invalid "+kind+" name", token.TemplateID, token.Line)
	}
	return name, nil
}

// parseExpression parses tag content and locates failures at the token.
func parseExpression(content string, token parser.Token) (expression.Expression, error) {
	expr, err := expression.Parse(content)
	if err == nil {
		return expr, nil
	}
	return nil, newParseError(err.Error(), token.TemplateID, token.Line)
}

// locatePartialError gives errors raised while loading a partial the
// location of the tag that referenced it, unless they already carry one.
func locatePartialError(err error, token parser.Token) error {
	var mErr *Error
	if errors.As(err, &mErr) && mErr.Kind == TemplateNotFound && mErr.Line == 0 {
		return mErr.withLocation("", token.TemplateID, token.Line)
	}
	return err
}
