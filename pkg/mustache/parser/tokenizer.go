package parser

import "strings"

// Consumer receives tokens from Tokenize.
//
// Consume returns false to stop the scan early; Tokenize then returns
// without calling Fail. Fail is called at most once, after which no more
// tokens are delivered.
type Consumer interface {
	Consume(token Token) bool
	Fail(err error)
}

type scanState int

const (
	stateStart scanState = iota
	stateText
	stateTag
	stateUnescapedTag
	stateSetDelimiters
)

// delimiterSet caches every opening and closing marker derived from a
// delimiter pair. Triple mustaches only exist with the default pair.
type delimiterSet struct {
	pair           Delimiters
	unescapedStart string
	unescapedEnd   string
	setStart       string
	setEnd         string
}

func newDelimiterSet(pair Delimiters) delimiterSet {
	set := delimiterSet{
		pair:     pair,
		setStart: pair.Start + "=",
		setEnd:   "=" + pair.End,
	}
	if pair.IsDefault() {
		set.unescapedStart = "{{{"
		set.unescapedEnd = "}}}"
	}
	return set
}

// openingAt returns the tag state starting at offset i, and the length of
// the opening marker. It returns stateText when no tag opens at i.
func (d delimiterSet) openingAt(src string, i int) (scanState, int) {
	rest := src[i:]
	switch {
	case d.unescapedStart != "" && strings.HasPrefix(rest, d.unescapedStart):
		return stateUnescapedTag, len(d.unescapedStart)
	case strings.HasPrefix(rest, d.setStart):
		return stateSetDelimiters, len(d.setStart)
	case strings.HasPrefix(rest, d.pair.Start):
		return stateTag, len(d.pair.Start)
	default:
		return stateText, 0
	}
}

// Tokenize scans src and hands each token to consumer.
//
// Line numbers count every newline, including newlines inside tags. A tag
// left open at the end of input fails with "Unclosed Mustache tag" at the
// line where the tag started.
func Tokenize(src, templateID string, delimiters Delimiters, consumer Consumer) {
	delims := newDelimiterSet(delimiters)
	state := stateStart
	line := 1
	start, startLine := 0, 1

	token := func(typ TokenType, content string, end int) Token {
		return Token{
			Type:       typ,
			Content:    content,
			Start:      start,
			End:        end,
			Line:       startLine,
			TemplateID: templateID,
			Delimiters: delims.pair,
			Source:     src,
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]

		switch state {
		case stateStart, stateText:
			if c == '\n' {
				if state == stateStart {
					state, start, startLine = stateText, i, line
				}
				line++
				i++
				continue
			}

			opening, length := delims.openingAt(src, i)
			if opening == stateText {
				if state == stateStart {
					state, start, startLine = stateText, i, line
				}
				i++
				continue
			}

			if state == stateText && start < i {
				if !consumer.Consume(token(TokenText, src[start:i], i)) {
					return
				}
			}
			state, start, startLine = opening, i, line
			i += length

		case stateTag:
			if c == '\n' {
				line++
				i++
				continue
			}
			if !strings.HasPrefix(src[i:], delims.pair.End) {
				i++
				continue
			}

			end := i + len(delims.pair.End)
			if !consumer.Consume(tagToken(token, src, start+len(delims.pair.Start), i, end)) {
				return
			}
			state = stateStart
			i = end

		case stateUnescapedTag:
			if c == '\n' {
				line++
				i++
				continue
			}
			if !strings.HasPrefix(src[i:], delims.unescapedEnd) {
				i++
				continue
			}

			end := i + len(delims.unescapedEnd)
			content := src[start+len(delims.unescapedStart) : i]
			if !consumer.Consume(token(TokenUnescapedVariable, content, end)) {
				return
			}
			state = stateStart
			i = end

		case stateSetDelimiters:
			if c == '\n' {
				line++
				i++
				continue
			}
			if !strings.HasPrefix(src[i:], delims.setEnd) {
				i++
				continue
			}

			end := i + len(delims.setEnd)
			content := src[start+len(delims.setStart) : i]
			parts := strings.Fields(content)
			if len(parts) != 2 {
				consumer.Fail(newSyntaxError("Invalid set delimiters tag", templateID, startLine))
				return
			}
			if !consumer.Consume(token(TokenSetDelimiters, content, end)) {
				return
			}
			delims = newDelimiterSet(Delimiters{Start: parts[0], End: parts[1]})
			state = stateStart
			i = end
		}
	}

	switch state {
	case stateText:
		consumer.Consume(token(TokenText, src[start:], len(src)))
	case stateTag, stateUnescapedTag, stateSetDelimiters:
		consumer.Fail(newSyntaxError("Unclosed Mustache tag", templateID, startLine))
	}
}

// tagToken classifies a regular tag by its first character.
func tagToken(token func(TokenType, string, int) Token, src string, contentStart, contentEnd, end int) Token {
	if contentStart >= contentEnd {
		return token(TokenEscapedVariable, "", end)
	}

	body := src[contentStart+1 : contentEnd]
	switch src[contentStart] {
	case '!':
		return token(TokenComment, body, end)
	case '#':
		return token(TokenSection, body, end)
	case '^':
		return token(TokenInvertedSection, body, end)
	case '$':
		return token(TokenInheritableSection, body, end)
	case '/':
		return token(TokenClose, body, end)
	case '>':
		return token(TokenPartial, body, end)
	case '<':
		return token(TokenInheritedPartial, body, end)
	case '&':
		return token(TokenUnescapedVariable, body, end)
	case '%':
		return token(TokenPragma, body, end)
	default:
		return token(TokenEscapedVariable, src[contentStart:contentEnd], end)
	}
}

// collector gathers every token into a slice.
type collector struct {
	tokens []Token
	err    error
}

func (c *collector) Consume(token Token) bool {
	c.tokens = append(c.tokens, token)
	return true
}

func (c *collector) Fail(err error) {
	c.err = err
}

// Parse tokenizes src and returns all tokens, or the first syntax error.
func Parse(src, templateID string, delimiters Delimiters) ([]Token, error) {
	c := &collector{}
	Tokenize(src, templateID, delimiters, c)
	if c.err != nil {
		return nil, c.err
	}
	return c.tokens, nil
}
